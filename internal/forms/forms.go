// ABOUTME: Shared form binding and validation for console dialogs
// ABOUTME: Wraps validator/v10 and maps failures to per-field messages keyed by form name

package forms

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to the message shown beneath it.
// The "_" key holds errors that belong to no single field.
type FieldErrors map[string]string

// Has reports whether field has an error.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Get returns the message for field, or "".
func (fe FieldErrors) Get(field string) string {
	return fe[field]
}

// Any reports whether there is at least one error.
func (fe FieldErrors) Any() bool {
	return len(fe) > 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("date", isDate); err != nil {
		panic(err)
	}
	return v
}

// isDate accepts YYYY-MM-DD. Empty values are left to required/omitempty.
func isDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// messages overrides the generic wording. Keys are "field.tag" or "field".
type messages map[string]string

// base carries the raw submitted values so a failed submit can re-render
// exactly what the user typed.
type base struct {
	raw        url.Values
	bindErrors FieldErrors
}

// Value returns the submitted text for a field.
func (b *base) Value(name string) string {
	if b.raw == nil {
		return ""
	}
	return b.raw.Get(name)
}

func (b *base) remember(v url.Values) {
	b.raw = url.Values{}
	for k, vals := range v {
		b.raw[k] = append([]string(nil), vals...)
	}
	b.bindErrors = FieldErrors{}
}

func (b *base) text(v url.Values, name string) string {
	return strings.TrimSpace(v.Get(name))
}

// number parses an integer field. Empty input is zero so that range rules
// produce the field's message; anything else unparsable is a bind error.
func (b *base) number(v url.Values, name string) int {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		b.bindErrors[name] = "Must be a number"
		return 0
	}
	return n
}

// check runs struct validation on dst and merges in bind errors, which win
// over rule failures on the same field.
func check(dst any, b *base, msgs messages) FieldErrors {
	out := FieldErrors{}

	err := validate.Struct(dst)
	var ve validator.ValidationErrors
	switch {
	case err == nil:
	case errors.As(err, &ve):
		for _, fe := range ve {
			key := fieldKey(dst, fe.StructField())
			if _, seen := out[key]; seen {
				continue
			}
			out[key] = messageFor(msgs, key, fe.Tag(), fe.Param())
		}
	default:
		out["_"] = "Form data is invalid."
	}

	for k, v := range b.bindErrors {
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func fieldKey(dst any, structField string) string {
	t := reflect.TypeOf(dst)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return strings.ToLower(structField)
	}

	f, ok := t.FieldByName(structField)
	if !ok {
		return strings.ToLower(structField)
	}
	tag := f.Tag.Get("form")
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" || tag == "-" {
		return strings.ToLower(structField)
	}
	return tag
}

func messageFor(msgs messages, key, tag, param string) string {
	if m, ok := msgs[key+"."+tag]; ok {
		return m
	}
	if m, ok := msgs[key]; ok {
		return m
	}
	switch tag {
	case "required":
		return "This field is required"
	case "date":
		return "Use the YYYY-MM-DD format"
	case "url":
		return "Invalid URL format"
	case "min":
		return "Must be at least " + param
	case "max":
		return "Must be at most " + param + " characters"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(param, " ", ", ")
	default:
		return "Invalid value"
	}
}
