// Package validation checks user-supplied series and tag fields using the
// validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

// Length bounds for series text fields, in characters.
const (
	TitleMin   = 1
	TitleMax   = 255
	SummaryMax = 1250
	NotesMax   = 5000
)

// SeriesFields are the free-text fields of a series.
type SeriesFields struct {
	Title   string `json:"title" validate:"required,notblank,min=1,max=255"`
	Summary string `json:"summary" validate:"max=1250"`
	Notes   string `json:"notes" validate:"max=5000"`
}

// TagFields are the fields of a new tag.
type TagFields struct {
	Name string         `json:"name" validate:"required,notblank,max=100"`
	Kind domain.TagKind `json:"kind" validate:"required,tagkind"`
}

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("tagkind", func(fl validator.FieldLevel) bool {
		return domain.TagKind(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// ValidateSeries checks the text fields of a series.
func (v *Validator) ValidateSeries(s *domain.Series) error {
	return v.Validate(SeriesFields{Title: s.Title, Summary: s.Summary, Notes: s.Notes})
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "tagkind":
		return "must be one of: Relationship Character Freeform Fandom Rating Warning Category"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
