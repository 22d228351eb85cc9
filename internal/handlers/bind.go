package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by the names clients send
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind decodes the JSON body into dst, rejecting unknown fields, and
// validates the result. requiredMessage is the summary used when a required
// field is missing.
func bind(c *fiber.Ctx, dst interface{}, requiredMessage string) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &HTTPError{Status: fiber.StatusBadRequest, Message: "Invalid request body", Err: err}
	}

	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &HTTPError{Status: fiber.StatusBadRequest, Message: "Invalid request body", Err: err}
	}

	message := "Validation failed"
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if e.Tag() == "required" {
			message = requiredMessage
		}
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &HTTPError{Status: fiber.StatusBadRequest, Message: message, Fields: fields}
}
