package utils

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/prepflow/practice-service/internal/errors"
	"github.com/prepflow/practice-service/internal/models"
)

// Validator wraps go-playground struct validation with the custom rules the
// question domain needs.
type Validator struct {
	structValidator *validator.Validate
}

// NewValidator creates the shared validator instance with all custom
// validators registered.
func NewValidator() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// Validate validates struct tags, converting failures into the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

var optionIDPattern = regexp.MustCompile(`^[A-Z][0-9]?$`)

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("option_id", validateOptionID)

	// Report field names from json tags for better error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).Valid()
}

func validateOptionID(fl validator.FieldLevel) bool {
	return optionIDPattern.MatchString(fl.Field().String())
}
