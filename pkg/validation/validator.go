package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MinPasswordLength applies to registration, reset and change-password payloads.
const MinPasswordLength = 6

// Init configures the validator behind Gin's binding: JSON names in errors and shared aliases.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Configure(v)
	}
}

func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=6,max=72")
	v.RegisterAlias("phone", "e164")
	v.RegisterAlias("code", "len=6,numeric")
}

// ToDetails converts binding errors into field -> message pairs for the error envelope.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// FirstMessage flattens details into a single "field message" line.
func FirstMessage(details map[string]string) string {
	for _, key := range []string{"email", "password", "newPassword", "code", "name"} {
		if msg, ok := details[key]; ok {
			return key + " " + msg
		}
	}
	for k, msg := range details {
		return k + " " + msg
	}
	return "invalid payload"
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be a valid phone number"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + param + " characters"
		}
		return "must be at least " + param
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + param + " characters"
		}
		return "must be at most " + param
	case "len":
		return "must be exactly " + param + " characters"
	case "numeric":
		return "must contain only digits"
	case "eqfield":
		return "must match " + param
	case "oneof":
		return "must be one of " + param
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "dive":
		return "contains an invalid item"
	default:
		return "is invalid"
	}
}
