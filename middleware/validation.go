package middleware

import (
	"encoding/json"
	"errors"
	"reflect"

	"github.com/gofiber/fiber/v2"

	"projecthub/utils"
)

const bodyKey = "validatedBody"

// Validate parses the JSON body into a T, runs its validation rules and stores
// the result for Body. Nothing downstream runs when validation fails.
func Validate[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)

		if len(c.Body()) > 0 {
			if err := c.BodyParser(req); err != nil {
				var typeErr *json.UnmarshalTypeError
				if errors.As(err, &typeErr) && typeErr.Field != "" {
					return utils.NewFieldError(typeErr.Field, typeErr.Field+" must be "+kindName(typeErr.Type))
				}
				return utils.NewBadRequest("Invalid request body")
			}
		}

		if errs := utils.ValidateStruct(req); len(errs) > 0 {
			return utils.NewValidationError(errs)
		}

		c.Locals(bodyKey, req)
		return c.Next()
	}
}

// Body returns the request validated by Validate[T].
func Body[T any](c *fiber.Ctx) *T {
	req, _ := c.Locals(bodyKey).(*T)
	return req
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "a valid value"
	}
}
