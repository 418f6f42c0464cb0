package handlers

import (
	"encoding/json"
	"strconv"

	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

// bodyFields is a decoded JSON object that remembers which keys were sent,
// so PATCH can tell an absent field from an explicit null.
type bodyFields struct {
	raw map[string]json.RawMessage
	err error
}

func parseFields(c *fiber.Ctx) (*bodyFields, error) {
	f := &bodyFields{raw: map[string]json.RawMessage{}}
	if len(c.Body()) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(c.Body(), &f.raw); err != nil {
		return nil, &services.ValidationError{Message: "request body must be a JSON object"}
	}
	return f, nil
}

func (f *bodyFields) setErr(key string) {
	if f.err == nil {
		f.err = &services.ValidationError{Message: "invalid value for " + key}
	}
}

// optional returns the value of key, or nil when it is absent or null.
func optional[T any](f *bodyFields, key string) *T {
	raw, ok := f.raw[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		f.setErr(key)
		return nil
	}
	return &v
}

// nullable returns key as a Nullable, distinguishing null from absent.
func nullable[T any](f *bodyFields, key string) services.Nullable[T] {
	raw, ok := f.raw[key]
	if !ok {
		return services.Nullable[T]{}
	}
	if string(raw) == "null" {
		return services.Null[T]()
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		f.setErr(key)
		return services.Nullable[T]{}
	}
	return services.Present(v)
}

// bind parses the request body into out.
func bind(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return &services.ValidationError{Message: "request body is required"}
	}
	if err := c.BodyParser(out); err != nil {
		return &services.ValidationError{Message: "invalid request body"}
	}
	return nil
}

func queryInt(c *fiber.Ctx, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
