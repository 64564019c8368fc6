package domain

// Outcome is the binary result of comparing an answer with the card's back.
type Outcome string

const (
	OutcomeCorrect   Outcome = "CORRECT"
	OutcomeIncorrect Outcome = "INCORRECT"
)

func (o Outcome) String() string { return string(o) }

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeCorrect, OutcomeIncorrect:
		return true
	}
	return false
}

// SessionPhase is the state of a training session.
type SessionPhase string

const (
	SessionPhasePresenting SessionPhase = "PRESENTING"
	SessionPhaseEvaluated  SessionPhase = "EVALUATED"
	SessionPhaseCompleted  SessionPhase = "COMPLETED"
)

func (p SessionPhase) String() string { return string(p) }

func (p SessionPhase) IsValid() bool {
	switch p {
	case SessionPhasePresenting, SessionPhaseEvaluated, SessionPhaseCompleted:
		return true
	}
	return false
}

// SelectionMode chooses how the due set of a session is built.
//   - STUDY filters by due time (optionally restricted to one box).
//   - TRAINING selects every card of one box regardless of due time.
type SelectionMode string

const (
	SelectionModeStudy    SelectionMode = "STUDY"
	SelectionModeTraining SelectionMode = "TRAINING"
)

func (m SelectionMode) String() string { return string(m) }

func (m SelectionMode) IsValid() bool {
	switch m {
	case SelectionModeStudy, SelectionModeTraining:
		return true
	}
	return false
}

// OrderPolicy controls the presentation order of a due set.
type OrderPolicy string

const (
	OrderInsertion OrderPolicy = "INSERTION"
	OrderShuffle   OrderPolicy = "SHUFFLE"
)

func (o OrderPolicy) String() string { return string(o) }

func (o OrderPolicy) IsValid() bool {
	switch o {
	case OrderInsertion, OrderShuffle:
		return true
	}
	return false
}
