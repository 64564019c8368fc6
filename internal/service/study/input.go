package study

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// maxAnswerLength bounds a submitted answer in bytes.
const maxAnswerLength = 1000

// StartSessionInput holds the parameters for starting a session.
type StartSessionInput struct {
	SubjectID uuid.UUID
	Mode      domain.SelectionMode
	Level     *int
	// Shuffle overrides the configured order of the mode when set.
	Shuffle *bool
}

// Validate checks all fields and collects all errors.
func (i *StartSessionInput) Validate() error {
	var errs []domain.FieldError

	if i.SubjectID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "subject_id", Message: "required"})
	}
	if !i.Mode.IsValid() {
		errs = append(errs, domain.FieldError{Field: "mode", Message: "must be STUDY or TRAINING"})
	}
	if i.Level != nil && !domain.ValidBox(*i.Level) {
		errs = append(errs, domain.FieldError{Field: "level", Message: "must be between 1 and 5"})
	}
	if i.Mode == domain.SelectionModeTraining && i.Level == nil {
		errs = append(errs, domain.FieldError{Field: "level", Message: "required in TRAINING mode"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SubmitAnswerInput holds an answer for the current card of a session.
// A blank answer is allowed and evaluates as incorrect.
type SubmitAnswerInput struct {
	SessionID uuid.UUID
	Answer    string
}

// Validate checks all fields and collects all errors.
func (i *SubmitAnswerInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if len(i.Answer) > maxAnswerLength {
		errs = append(errs, domain.FieldError{Field: "answer", Message: "max 1000 characters"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
