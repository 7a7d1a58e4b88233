package rest

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/abgdnv/gocatalog/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var alphaSpace = regexp.MustCompile(`^[A-Za-z\s]+$`)

// newValidator returns a validator that reports fields by their JSON name and
// understands the price and alphaspace tags.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("price", validatePrice)
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpace.MatchString(fl.Field().String())
	})
	return v
}

func validatePrice(fl validator.FieldLevel) bool {
	price, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return model.ValidatePrice(price) == nil
}

// fieldErrors converts validator failures into a field -> rule map.
// ok is false if err is not a validation failure.
func fieldErrors(err error) (map[string]string, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}
	out := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		out[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return out, true
}
