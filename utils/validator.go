package utils

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the 422 "errors" array.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MessageProvider lets a request type override the message of a failed rule.
// Keys have the form "<json field>.<tag>", e.g. "name.required".
type MessageProvider interface {
	ValidationMessages() map[string]string
}

// CompositeValidator is implemented by request types whose rules span
// several fields. It runs after the per-field rules.
type CompositeValidator interface {
	ValidateComposite() []FieldError
}

// Normalizer is implemented by request types that trim or canonicalize input
// before validation.
type Normalizer interface {
	Normalize()
}

var validate = newValidator()

// ISO8601Layouts are accepted for every date field.
var ISO8601Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "iso8601", func(fl validator.FieldLevel) bool {
		_, err := ParseISO8601(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "mailbox", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(fl.Field().String()) == nil
	})
	mustRegister(v, "has_lower", containsRune(unicode.IsLower))
	mustRegister(v, "has_upper", containsRune(unicode.IsUpper))
	mustRegister(v, "has_digit", containsRune(unicode.IsDigit))
	mustRegister(v, "has_special", containsRune(func(r rune) bool {
		return r == '_' || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	}))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func containsRune(pred func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), pred) >= 0
	}
}

// ParseISO8601 accepts the date and date-time forms clients send.
func ParseISO8601(s string) (time.Time, error) {
	for _, layout := range ISO8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("invalid ISO 8601 date")
}

// ValidateStruct applies the declared rules of s and returns every violation
// in field declaration order, then rule order within a field, followed by any
// composite violations. A nil result means the request is valid.
func ValidateStruct(s interface{}) []FieldError {
	if n, ok := s.(Normalizer); ok {
		n.Normalize()
	}

	var messages map[string]string
	if mp, ok := s.(MessageProvider); ok {
		messages = mp.ValidationMessages()
	}

	var out []FieldError
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []FieldError{{Field: "body", Message: err.Error()}}
		}
		for _, fe := range verrs {
			field := fe.Field()
			out = append(out, FieldError{Field: field, Message: message(messages, field, fe.Tag(), fe.Param())})
			for _, r := range remainingRules(s, fe) {
				if validate.Var(fe.Value(), r.raw) != nil {
					out = append(out, FieldError{Field: field, Message: message(messages, field, r.tag, r.param)})
				}
			}
		}
	}

	if cv, ok := s.(CompositeValidator); ok {
		out = append(out, cv.ValidateComposite()...)
	}
	return out
}

func message(overrides map[string]string, field, tag, param string) string {
	if msg, ok := overrides[field+"."+tag]; ok {
		return msg
	}
	return defaultMessage(field, tag, param)
}

type rule struct {
	raw   string
	tag   string
	param string
}

// remainingRules returns the rules declared after the one fe failed on, so a
// field reports every rule it breaks. Nothing follows a failed "required".
func remainingRules(s interface{}, fe validator.FieldError) []rule {
	if fe.Tag() == "required" {
		return nil
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	sf, ok := t.FieldByName(fe.StructField())
	if !ok {
		return nil
	}

	var out []rule
	failed := false
	for _, raw := range strings.Split(sf.Tag.Get("validate"), ",") {
		tag, param, _ := strings.Cut(raw, "=")
		if !failed {
			failed = tag == fe.Tag()
			continue
		}
		out = append(out, rule{raw: raw, tag: tag, param: param})
	}
	return out
}

func defaultMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param + " characters"
	case "max":
		return field + " must be at most " + param + " characters"
	case "email", "mailbox":
		return field + " must be a valid email"
	case "uuid", "uuid4":
		return field + " must be a valid UUID"
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "iso8601":
		return field + " must be a valid date"
	case "url":
		return field + " must be a valid URL"
	case "has_lower":
		return field + " must contain at least one lowercase letter"
	case "has_upper":
		return field + " must contain at least one uppercase letter"
	case "has_digit":
		return field + " must contain at least one number"
	case "has_special":
		return field + " must contain at least one special character"
	default:
		return field + " is invalid"
	}
}
