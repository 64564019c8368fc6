package subject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// CreateSubjectInput holds the parameters for creating a subject.
type CreateSubjectInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// Validate trims the input and checks all fields.
func (i *CreateSubjectInput) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	if i.Description != nil {
		d := strings.TrimSpace(*i.Description)
		if d == "" {
			i.Description = nil
		} else {
			i.Description = &d
		}
	}
	return validateStruct(i)
}

// CreateCardInput holds the parameters for creating one card.
type CreateCardInput struct {
	SubjectID uuid.UUID `json:"subject_id" validate:"required"`
	Front     string    `json:"front" validate:"required,max=500"`
	Back      string    `json:"back" validate:"required,max=500"`
}

// Validate trims the input and checks all fields.
func (i *CreateCardInput) Validate() error {
	i.Front = strings.TrimSpace(i.Front)
	i.Back = strings.TrimSpace(i.Back)
	return validateStruct(i)
}

// CardDraft is one card of an import.
type CardDraft struct {
	Front string `json:"front" yaml:"front" validate:"required,max=500"`
	Back  string `json:"back" yaml:"back" validate:"required,max=500"`
}

// ImportCardsInput holds a batch of cards for one subject.
type ImportCardsInput struct {
	SubjectID uuid.UUID   `json:"subject_id" validate:"required"`
	Cards     []CardDraft `json:"cards" validate:"required,min=1,max=1000,dive"`
}

// Validate trims every draft and checks all fields.
func (i *ImportCardsInput) Validate() error {
	for k := range i.Cards {
		i.Cards[k].Front = strings.TrimSpace(i.Cards[k].Front)
		i.Cards[k].Back = strings.TrimSpace(i.Cards[k].Back)
	}
	return validateStruct(i)
}

// ---------------------------------------------------------------------------
// validator/v10 glue
// ---------------------------------------------------------------------------

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// validateStruct runs the struct tags and converts failures into a
// domain.ValidationError.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return domain.NewValidationErrors(fields)
}

// fieldPath drops the struct name from the namespace: "cards[0].front".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "at most " + fe.Param() + " items"
		}
		return "max " + fe.Param() + " characters"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "at least " + fe.Param() + " items"
		}
		return "min " + fe.Param() + " characters"
	}
	return "invalid value"
}
