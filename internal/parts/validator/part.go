package validator

import (
	"errors"
	"fmt"
	"strings"

	"pitstop/pkg/logger"
	"pitstop/pkg/model"

	"github.com/go-playground/validator/v10"
)

type PartValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPartValidator(log *logger.Logger) *PartValidator {
	return &PartValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *PartValidator) Validate(part *model.Part) error {
	return v.translate(v.validate.Struct(part))
}

func (v *PartValidator) ValidateUpdate(updates *model.PartUpdate) error {
	return v.translate(v.validate.Struct(updates))
}

func (v *PartValidator) translate(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var messages []string
	for _, fieldErr := range validationErrs {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldErr.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", fieldErr.Field(), fieldErr.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", fieldErr.Field(), fieldErr.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", fieldErr.Field(), fieldErr.Param()))
		case "mongodb":
			messages = append(messages, fmt.Sprintf("%s must be a valid MongoDB ObjectID", fieldErr.Field()))
		default:
			messages = append(messages, fieldErr.Error())
		}
	}

	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}
