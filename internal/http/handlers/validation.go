package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"catalogapi/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("cents", hasCents)
	}
}

// hasCents accepts numbers with at most two decimal places, judged on the
// shortest decimal form that round-trips the float.
func hasCents(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Float32 && f.Kind() != reflect.Float64 {
		return false
	}
	s := strconv.FormatFloat(f.Float(), 'f', -1, 64)
	_, frac, _ := strings.Cut(s, ".")
	return len(frac) <= 2
}

// jsonFieldName makes validator report the client-facing field name.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

func translateBindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := domain.ValidationErrors{}
		for _, fe := range verrs {
			out.Add(fe.Field(), fieldMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.ValidationError{Field: typeErr.Field, Msg: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind())}
	}
	return domain.ValidationError{Field: "body", Msg: "Request body must be valid JSON", Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "cents":
		return field + " must have at most 2 decimal places"
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}
