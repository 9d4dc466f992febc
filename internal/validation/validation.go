// Package validation registers the application's request rules on a
// go-playground validator and renders violations as readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// PasswordMinLength is the minimum password length.
const PasswordMinLength = 8

// Password policy failures.
var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", PasswordMinLength)
	ErrPasswordWeak     = errors.New("password must contain at least one uppercase letter, one lowercase letter and one number")
)

var (
	mu         sync.RWMutex
	translator ut.Translator
)

// Translator returns the English translator installed by the most recent
// Register call, or nil before any.
func Translator() ut.Translator {
	mu.RLock()
	defer mu.RUnlock()
	return translator
}

func newTranslator() ut.Translator {
	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	return trans
}

// Register installs the custom rules, JSON/query field naming and English
// messages on v. It is called once on gin's binding engine at startup.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	if err := v.RegisterValidation("password", validatePassword); err != nil {
		return fmt.Errorf("failed to register password rule: %w", err)
	}

	// Translations cannot be added twice to one translator
	trans := newTranslator()
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return fmt.Errorf("failed to register translations: %w", err)
	}

	overrides := map[string]string{
		"password": "{0} must be at least 8 characters and contain an uppercase letter, a lowercase letter and a number",
		"latitude": "{0} must be a valid latitude between -90 and 90",
		"uuid":     "{0} must be a valid UUID",
	}
	for tag, text := range overrides {
		if err := registerMessage(v, trans, tag, text); err != nil {
			return err
		}
	}

	mu.Lock()
	translator = trans
	mu.Unlock()
	return nil
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) error {
	err := v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, err := ut.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
	if err != nil {
		return fmt.Errorf("failed to register %s message: %w", tag, err)
	}
	return nil
}

// fieldName reports the name the client used: json, then form, then uri.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form", "uri"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func validatePassword(fl validator.FieldLevel) bool {
	return CheckPassword(fl.Field().String()) == nil
}

// CheckPassword enforces the password policy: at least eight characters
// with an upper-case letter, a lower-case letter and a digit.
func CheckPassword(password string) error {
	if len(password) < PasswordMinLength {
		return ErrPasswordTooShort
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrPasswordWeak
	}
	return nil
}

// Message renders fe for clients. Errors from a validator without
// registered translations fall back to built-in templates.
func Message(fe validator.FieldError) string {
	if trans := Translator(); trans != nil {
		if msg := fe.Translate(trans); msg != "" && msg != fe.Error() {
			return msg
		}
	}
	return fallbackMessage(fe)
}

var messageTemplates = map[string]string{
	"required":  "%s is required",
	"email":     "%s must be a valid email address",
	"uuid":      "%s must be a valid UUID",
	"latitude":  "%s must be a valid latitude between -90 and 90",
	"longitude": "%s must be a valid longitude between -180 and 180",
	"password":  "%s must be at least 8 characters and contain an uppercase letter, a lowercase letter and a number",
}

var paramTemplates = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"len":   "%s must have length of %s",
}

func fallbackMessage(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if tmpl, ok := messageTemplates[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := paramTemplates[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
