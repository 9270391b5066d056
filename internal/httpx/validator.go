package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("session_id", validateSessionID)
}

// validateSessionID accepts opaque client tokens such as UUIDs.
func validateSessionID(fl validator.FieldLevel) bool {
	return sessionIDPattern.MatchString(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateStruct checks s against its validate tags. It returns nil when s is valid.
func ValidateStruct(s any) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "max":
			if fe.Kind().String() == "string" {
				message = fmt.Sprintf("%s must be at most %s characters", field, param)
			} else {
				message = fmt.Sprintf("%s must be at most %s", field, param)
			}
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "session_id":
			message = fmt.Sprintf("%s may only contain letters, digits and . _ : -", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		out = append(out, ValidationError{
			Field:   strings.ToLower(field[:1]) + field[1:],
			Message: message,
		})
	}
	return out
}

// JSONValidationError writes a 400 listing every invalid field.
func JSONValidationError(w http.ResponseWriter, r *http.Request, errs []ValidationError) {
	JSON(w, r, http.StatusBadRequest, ErrorResponse{
		Error:     "Invalid request",
		Code:      "VALIDATION_ERROR",
		RequestID: RequestIDFrom(r),
		Details:   errs,
	})
}
