package profileapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/go-playground/validator/v10"
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFailure converts validator output into an errx.ValidationFailure.
func validationFailure(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	violations := make([]errx.Violation, 0, len(verrs))
	for _, fe := range verrs {
		path := strings.Split(fe.Namespace(), ".")
		if len(path) > 1 {
			path = path[1:]
		}
		violations = append(violations, errx.Violation{
			Path:    path,
			Message: violationMessage(fe),
			Tag:     fe.Tag(),
		})
	}
	return &errx.ValidationFailure{Violations: violations}
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "url", "http_url":
		return "Invalid url"
	case "datetime":
		return fmt.Sprintf("Invalid date, expected format %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("Failed %s validation", fe.Tag())
	}
}
