// Package validation wraps go-playground/validator with English messages and
// the custom rules shared by the request payloads.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// MinPasswordLength is the minimum number of characters in a password.
const MinPasswordLength = 6

// emailSpace is the whitespace set of an ECMAScript \s. RE2's \s is ASCII
// only and misses \v.
const emailSpace = `\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}`

// emailPattern accepts local@domain.tld where the last label has at least two characters.
var emailPattern = regexp.MustCompile(
	`^[^` + emailSpace + `@]+@[^` + emailSpace + `@]+\.[^` + emailSpace + `@]{2,}$`,
)

// Validator validates structs and reports failures per field.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a Validator with English translations, the "emailaddr" and
// "password" rules, and field names taken from json tags (or the lower-cased
// field name when there is none).
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return lowerFirst(field.Name)
		}
		return name
	})

	if err := validate.RegisterValidation("emailaddr", validateEmail); err != nil {
		return nil, err
	}
	if err := validate.RegisterValidation("password", validatePassword); err != nil {
		return nil, err
	}

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, err
	}

	custom := map[string]string{
		"emailaddr": "{0} must be a valid email address",
		"password":  "{0} must have at least 6 characters and contain at least one number, one lowercase and one uppercase letter",
	}
	for tag, text := range custom {
		if err := registerTranslation(validate, translator, tag, text); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: validate, translator: translator}, nil
}

// Struct validates s. It returns nil, or a map of field name to message.
// Errors unrelated to field rules (e.g. a non-struct argument) are returned
// as the second value.
func (v *Validator) Struct(s any) (map[string]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fe.Translate(v.translator)
	}

	return fields, nil
}

// IsEmail reports whether s is shaped like local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsStrongPassword reports whether s has at least MinPasswordLength characters
// including an ASCII digit, an ASCII lowercase letter and an ASCII uppercase
// letter.
func IsStrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return false
	}

	var digit, lower, upper bool
	for _, r := range s {
		switch {
		case '0' <= r && r <= '9':
			digit = true
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		}
	}

	return digit && lower && upper
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func validateEmail(fl validator.FieldLevel) bool {
	return IsEmail(fl.Field().String())
}

func validatePassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) error {
	return validate.RegisterTranslation(tag, translator,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}
