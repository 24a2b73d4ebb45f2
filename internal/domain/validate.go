package domain

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// inputValidate is shared by every compute call. validator.Validate caches
// struct metadata and is safe for concurrent use.
var inputValidate *validator.Validate

func init() {
	inputValidate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so errors line up with request bodies.
	inputValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := inputValidate.RegisterValidation("finite", validateFinite); err != nil {
		panic("register finite validation: " + err.Error())
	}
}

func validateFinite(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate applies defaults (density 3000 kg/m³, target ground) and checks
// every field. It returns the normalized input or an *InvalidInputError for
// the first offending field.
func Validate(in ImpactInput) (ImpactInput, error) {
	in = in.withDefaults()

	err := inputValidate.Struct(in)
	if err == nil {
		return in, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ImpactInput{}, &InvalidInputError{Field: "input", Reason: err.Error()}
	}
	fe := verrs[0]
	return ImpactInput{}, &InvalidInputError{Field: fe.Field(), Reason: reasonFor(fe)}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than 0"
	case "finite":
		return "must be a finite number"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " check"
	}
}
