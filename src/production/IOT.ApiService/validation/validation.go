// Package validation registers the custom binding tags used by request
// bodies and turns validator errors into field-level messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	zipcodeMin = 5
	zipcodeMax = 10
)

var (
	registerOnce sync.Once
	registerErr  error
)

// Register installs the custom tags on gin's validator. Safe to call more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected binding validator engine")
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs the custom tags on v
func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	tags := map[string]validator.Func{
		"objectid":   isObjectID,
		"status":     isStatus,
		"sensortype": isSensorType,
		"zipcode":    isZipcode,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func isObjectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

func isStatus(fl validator.FieldLevel) bool {
	return asset_models.Status(fl.Field().String()).Valid()
}

func isSensorType(fl validator.FieldLevel) bool {
	return asset_models.SensorType(fl.Field().String()).Valid()
}

// isZipcode accepts an empty value so updates can clear the field
func isZipcode(fl validator.FieldLevel) bool {
	n := len([]rune(fl.Field().String()))
	return n == 0 || (n >= zipcodeMin && n <= zipcodeMax)
}

// BindJSON decodes and validates the body into obj. On failure it writes
// the 400 response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(400, api_models.ValidationErrorResponse{
			Error:  "validation failed",
			Errors: FieldErrors(verrs),
		})
		return false
	}

	msg := "invalid request body"
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		msg = "request body is required"
	case errors.As(err, &typeErr) && typeErr.Field != "":
		msg = fmt.Sprintf("invalid request body: %s must be %s", typeErr.Field, typeErr.Type.String())
	}
	c.JSON(400, api_models.ErrorResponse{Error: msg})
	return false
}

// FieldErrors converts validator errors to API field errors
func FieldErrors(verrs validator.ValidationErrors) []api_models.FieldError {
	out := make([]api_models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe)
		out = append(out, api_models.FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s %s", field, message(fe)),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace: coordinates.latitude
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	kind := fe.Kind()
	if kind == reflect.Ptr {
		kind = fe.Type().Elem().Kind()
	}
	isString := kind == reflect.String

	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "objectid":
		return "must be a valid id"
	case "status":
		return "must be one of: " + join(asset_models.Statuses())
	case "sensortype":
		return "must be one of: " + join(asset_models.SensorTypes())
	case "zipcode":
		return fmt.Sprintf("must be between %d and %d characters", zipcodeMin, zipcodeMax)
	}
	return fmt.Sprintf("failed on the %s rule", fe.Tag())
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
