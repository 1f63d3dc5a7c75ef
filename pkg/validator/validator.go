package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s je obavezan", field)
	case "email":
		return fmt.Sprintf("%s mora biti valjana email adresa", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s mora imati najmanje %s znakova", field, fe.Param())
		}
		return fmt.Sprintf("%s mora biti najmanje %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s smije imati najviše %s znakova", field, fe.Param())
		}
		return fmt.Sprintf("%s smije biti najviše %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s mora biti jedno od: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s nije valjan", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Username":   "Korisničko ime",
		"Email":      "Email",
		"Password":   "Lozinka",
		"Title":      "Naslov",
		"Content":    "Sadržaj",
		"CategoryID": "Kategorija",
		"Reason":     "Razlog",
		"Hours":      "Trajanje",
		"FullName":   "Ime i prezime",
		"Bio":        "Bio",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
