package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted on register, reset
// and profile update.
const MinPasswordLength = 6

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name so reasons line up with the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags of in and converts failures into a
// *common.ValidationError.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &common.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), reason(fe))
	}
	return ve.OrNil()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}
