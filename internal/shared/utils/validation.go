package utils

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	registerCustom(validate)

	// gin binding shares the same tags
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustom(engine)
	}
}

func registerCustom(v *validator.Validate) {
	// Use JSON tag names for validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("percent", validatePercent)
	_ = v.RegisterValidation("civildate", validateCivilDate)
}

// money: non-negative decimal string with at most two fractional digits
func validateMoney(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Exponent() >= -2
}

// percent: decimal string in [0, 100] with at most two fractional digits
func validatePercent(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100)) && d.Exponent() >= -2
}

func validateCivilDate(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	_, err := biztime.ParseDate(raw)
	return err == nil
}

// ValidateStruct validates a struct and returns a user-friendly error
func ValidateStruct(s any) error {
	return toValidationError(validate.Struct(s))
}

// BindJSON binds the request body and converts binding failures into validation errors.
func BindJSON(c *gin.Context, req any) error {
	return toValidationError(c.ShouldBindJSON(req))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return errors.NewValidationError("Invalid request body", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, getFieldErrorMessage(fieldError))
	}

	return errors.NewValidationError("Validation failed", strings.Join(messages, "; "))
}

// getFieldErrorMessage returns a user-friendly error message for a field validation error
func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "money":
		return fmt.Sprintf("%s must be a non-negative amount with at most 2 decimals", field)
	case "percent":
		return fmt.Sprintf("%s must be a percentage between 0 and 100", field)
	case "civildate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
