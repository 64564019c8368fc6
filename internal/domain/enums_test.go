package domain

import "testing"

func TestOutcome_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome Outcome
		want    bool
	}{
		{OutcomeCorrect, true},
		{OutcomeIncorrect, true},
		{Outcome("PARTIAL"), false},
		{Outcome(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			t.Parallel()
			if got := tt.outcome.IsValid(); got != tt.want {
				t.Errorf("Outcome(%q).IsValid() = %v, want %v", tt.outcome, got, tt.want)
			}
		})
	}
}

func TestSessionPhase_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase SessionPhase
		want  bool
	}{
		{SessionPhasePresenting, true},
		{SessionPhaseEvaluated, true},
		{SessionPhaseCompleted, true},
		{SessionPhase("LOADING"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			t.Parallel()
			if got := tt.phase.IsValid(); got != tt.want {
				t.Errorf("SessionPhase(%q).IsValid() = %v, want %v", tt.phase, got, tt.want)
			}
		})
	}
}

func TestSelectionMode_IsValid(t *testing.T) {
	t.Parallel()

	if !SelectionModeStudy.IsValid() || !SelectionModeTraining.IsValid() {
		t.Fatal("known modes must be valid")
	}
	if SelectionMode("BROWSE").IsValid() {
		t.Error("unknown mode must be invalid")
	}
}

func TestOrderPolicy_IsValid(t *testing.T) {
	t.Parallel()

	if !OrderInsertion.IsValid() || !OrderShuffle.IsValid() {
		t.Fatal("known policies must be valid")
	}
	if OrderPolicy("RANDOM").IsValid() {
		t.Error("unknown policy must be invalid")
	}
	if OrderShuffle.String() != "SHUFFLE" {
		t.Errorf("String() = %q", OrderShuffle.String())
	}
}
