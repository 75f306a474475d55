package supports

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type (
	XValidator struct{}

	// ValidationError reports every failed field of one struct, keyed by json name.
	ValidationError struct {
		Status  int               `json:"status"`
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
)

var validate *validator.Validate

func (g *ValidationError) Error() string {
	errorJSON, err := json.Marshal(g)
	if err != nil {
		return fmt.Sprintf("Status: %d, Message: %s, Errors: %v", g.Status, g.Message, g.Errors)
	}

	return string(errorJSON)
}

func init() {
	validate = validator.New()
	err := validate.RegisterValidation("confirmation", fieldConfirmation)
	if err != nil {
		log.Panic(err)
	}
}

func fieldConfirmation(fl validator.FieldLevel) bool {
	fieldValue := fl.Field().String()
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}

	param := fl.Param()
	confirmationField := parent.FieldByName(param)
	if !confirmationField.IsValid() {
		return false
	}

	return fieldValue == confirmationField.String()
}

func getJSONFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}

	name := strings.Split(tag, ",")[0]
	if name == "-" || name == "" {
		return field.Name
	}

	return name
}

func getFieldJSONName(structType reflect.Type, namespace string) string {
	for structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	// Namespace is "Type.Field" or "Type.Embedded.Field"; resolve the first hop.
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	field, ok := structType.FieldByName(parts[0])
	if !ok {
		return parts[len(parts)-1]
	}
	name := getJSONFieldName(field)
	if len(parts) > 1 {
		return name + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// Validate checks data's `validate` struct tags. Non-struct values are
// rejected with the validator's own error.
func (v XValidator) Validate(data any) error {
	errs := validate.Struct(data)
	if errs == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(errs, &fieldErrs) {
		return errs
	}

	errorMessages := map[string]string{}
	var errorMessage string
	for index, err := range fieldErrs {
		jsonFieldName := getFieldJSONName(reflect.TypeOf(data), err.StructNamespace())
		errorMessages[jsonFieldName] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", jsonFieldName, err.Tag())
		if index == 0 {
			errorMessage = errorMessages[jsonFieldName]
		}
	}

	return &ValidationError{
		Status:  422,
		Errors:  errorMessages,
		Message: errorMessage,
	}
}
