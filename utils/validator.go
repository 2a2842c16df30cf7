// utils/validator.go - Input validation
package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	nikRegex = regexp.MustCompile(`^[0-9]{16}$`)

	validatorOnce sync.Once
	validate      *validator.Validate
)

// ValidateNIK checks the 16 digit national identity number.
func ValidateNIK(nik string) bool {
	return nikRegex.MatchString(nik)
}

// Validator returns the shared validator for `validate` struct tags. Field
// names in errors are the json/form wire names.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(wireName)
		_ = validate.RegisterValidation("nik", func(fl validator.FieldLevel) bool {
			return ValidateNIK(fl.Field().String())
		})
		_ = validate.RegisterValidation("date_ymd", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if value == "" {
				return true
			}
			_, err := time.Parse("2006-01-02", value)
			return err == nil
		})
	})
	return validate
}

func wireName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// ValidateStruct runs the shared validator and returns errors keyed by wire field name.
func ValidateStruct(v any) map[string][]string {
	return FieldErrors(Validator().Struct(v))
}

// FieldErrors converts validator (or gin binding) errors into a field -> messages map.
// Non-validation errors are reported under the "request" key.
func FieldErrors(err error) map[string][]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"request": {"Format permintaan tidak valid"}}
	}

	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fieldPath(fe)
		out[name] = append(out[name], fieldMessage(fe))
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	// required_documents[0] -> required_documents.0
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("Kolom %s wajib diisi.", field)
	case "max":
		return fmt.Sprintf("Kolom %s maksimal %s karakter.", field, fe.Param())
	case "min":
		return fmt.Sprintf("Kolom %s minimal %s karakter.", field, fe.Param())
	case "len":
		return fmt.Sprintf("Kolom %s harus %s karakter.", field, fe.Param())
	case "nik":
		return fmt.Sprintf("Kolom %s harus 16 digit angka.", field)
	case "email":
		return fmt.Sprintf("Kolom %s harus berupa alamat email yang valid.", field)
	case "eqfield":
		return fmt.Sprintf("Konfirmasi %s tidak cocok.", field)
	case "date_ymd":
		return fmt.Sprintf("Kolom %s harus berformat YYYY-MM-DD.", field)
	case "oneof":
		return fmt.Sprintf("Kolom %s harus salah satu dari: %s.", field, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("Kolom %s tidak valid.", field)
	default:
		return fmt.Sprintf("Kolom %s tidak valid.", field)
	}
}
