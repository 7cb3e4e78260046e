package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pitstop/pkg/logger"
	"pitstop/pkg/model"

	"github.com/go-playground/validator/v10"
)

// vehicleNumberRegex matches a normalized registration number: uppercase
// alphanumerics, no separators (sanitizer.NormalizeVehicleNumber output).
var vehicleNumberRegex = regexp.MustCompile(`^[A-Z0-9]{4,15}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	slots    map[string]struct{}
	logger   *logger.Logger
}

func NewBookingValidator(timeSlots []string, log *logger.Logger) *BookingValidator {
	v := validator.New()

	slots := make(map[string]struct{}, len(timeSlots))
	for _, s := range timeSlots {
		slots[s] = struct{}{}
	}

	if err := v.RegisterValidation("vehicle_number", validateVehicleNumber); err != nil {
		log.Fatal("Failed to register 'vehicle_number' validator", "error", err)
	}
	if err := v.RegisterValidation("booking_date", validateBookingDate); err != nil {
		log.Fatal("Failed to register 'booking_date' validator", "error", err)
	}
	if err := v.RegisterValidation("time_slot", func(fl validator.FieldLevel) bool {
		_, ok := slots[fl.Field().String()]
		return ok
	}); err != nil {
		log.Fatal("Failed to register 'time_slot' validator", "error", err)
	}

	log.Info("Booking validator initialized successfully", "time_slots", len(timeSlots))

	return &BookingValidator{
		validate: v,
		slots:    slots,
		logger:   log,
	}
}

func validateVehicleNumber(fl validator.FieldLevel) bool {
	return vehicleNumberRegex.MatchString(fl.Field().String())
}

func validateBookingDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.BookingDateLayout, fl.Field().String())
	return err == nil
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if _, err := model.ParseBookingStatus(string(booking.Status)); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "Status",
				Message: err.Error(),
			},
		}
	}

	return nil
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +919876543210)", err.Field())
		case "vehicle_number":
			message = fmt.Sprintf("%s must be 4-15 uppercase letters and digits", err.Field())
		case "booking_date":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		case "time_slot":
			message = fmt.Sprintf("%s must be one of the shop's service slots", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
