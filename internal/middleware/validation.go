package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxRequestBodyBytes caps decoded request bodies
const MaxRequestBodyBytes = 1 << 20

var (
	ErrEmptyBody = errors.New("request body is empty")
)

var validate = newValidator()

// newValidator reports fields by their JSON names so error details match the
// payload the client sent
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateRequest validates a struct against its validate tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes a JSON request body into v and validates it.
// Bodies larger than MaxRequestBodyBytes are rejected.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, MaxRequestBodyBytes)

	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to field/message pairs.
// Errors of any other kind yield nil.
func FormatValidationErrors(err error) []ValidationError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make([]ValidationError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, ValidationError{
			Field:   fieldPath(e),
			Message: getErrorMessage(e),
		})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace, so a nested
// field reads "user.email"
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "url":
		return "Invalid URL"
	case "oneof":
		return "Value must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}
