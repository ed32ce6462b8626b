package dto

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/candid-app/candid_api/shared"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("safe_message", validateSafeMessage)
	validate.RegisterValidation("display_name", validateDisplayName)
	validate.RegisterValidation("slug", validateSlug)
}

func GetValidator() *validator.Validate {
	return validate
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	return hasLetter && hasNumber
}

// validateSafeMessage rejects content carrying live markup. Rejection is
// the enforced policy for anything entering storage; the lenient
// shared.SanitizeMessage substitution is display-time only.
func validateSafeMessage(fl validator.FieldLevel) bool {
	return !shared.ContainsUnsafeMarkup(fl.Field().String())
}

var displayNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?]+$`)

func validateDisplayName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return displayNamePattern.MatchString(name) && !shared.ContainsHTMLTags(name)
}

func validateSlug(fl validator.FieldLevel) bool {
	return shared.ValidSlug(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errs []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "email":
				message = "Invalid email format"
			case "min":
				message = fieldError.Field() + " must be at least " + fieldError.Param() + " characters"
			case "max":
				message = fieldError.Field() + " must be at most " + fieldError.Param() + " characters"
			case "strong_password":
				message = "Password must be at least 8 characters with at least one letter and one number"
			case "safe_message":
				message = fieldError.Field() + " contains markup that is not allowed"
			case "display_name":
				message = fieldError.Field() + " contains invalid characters"
			case "slug":
				message = fieldError.Field() + " can only contain letters, numbers, hyphens, and underscores"
			default:
				message = fieldError.Field() + " is invalid"
			}

			errs = append(errs, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errs
}

// FirstValidationMessage picks the single, specific message surfaced to the
// caller for a rejected input.
func FirstValidationMessage(err error) string {
	errs := FormatValidationErrors(err)
	if len(errs) == 0 {
		return "Validation failed"
	}
	return errs[0].Message
}

type Validator interface {
	Validate() error
}

func CreateValidationErrorResponse(err error) ValidationErrorResponse {
	return ValidationErrorResponse{
		Code:    400,
		Message: "Validation failed",
		Errors:  FormatValidationErrors(err),
	}
}
