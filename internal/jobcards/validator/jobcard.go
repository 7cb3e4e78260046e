package validator

import (
	"errors"
	"fmt"
	"strings"

	"pitstop/pkg/logger"
	"pitstop/pkg/model"

	"github.com/go-playground/validator/v10"
)

const maxServiceDetails = 50

type JobcardValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewJobcardValidator(log *logger.Logger) *JobcardValidator {
	return &JobcardValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *JobcardValidator) ValidateServiceDetails(details []model.ServiceDetail) error {
	if len(details) == 0 {
		return errors.New("at least one service detail is required")
	}
	if len(details) > maxServiceDetails {
		return fmt.Errorf("at most %d service details are allowed", maxServiceDetails)
	}

	var messages []string
	for i, detail := range details {
		if err := v.validate.Struct(detail); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				for _, fieldErr := range validationErrs {
					messages = append(messages, fmt.Sprintf("detail %d: %s is invalid", i, fieldErr.Field()))
				}
				continue
			}
			return err
		}
	}

	if len(messages) > 0 {
		return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
	}
	return nil
}
