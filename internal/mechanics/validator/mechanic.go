package validator

import (
	"errors"
	"fmt"
	"strings"

	"pitstop/pkg/logger"
	"pitstop/pkg/model"

	"github.com/go-playground/validator/v10"
)

type MechanicValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewMechanicValidator(log *logger.Logger) *MechanicValidator {
	return &MechanicValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *MechanicValidator) Validate(mechanic *model.Mechanic) error {
	return v.translate(v.validate.Struct(mechanic))
}

func (v *MechanicValidator) ValidateUpdate(updates *model.MechanicUpdate) error {
	return v.translate(v.validate.Struct(updates))
}

func (v *MechanicValidator) translate(err error) error {
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
		case "mongodb":
			messages = append(messages, fmt.Sprintf("%s must be a valid MongoDB ObjectID", fieldErr.Field()))
		default:
			messages = append(messages, fieldErr.Error())
		}
	}

	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}
