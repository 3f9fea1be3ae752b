package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	dayOfWeekTag  = "dayofweek"
	dayOfWeekText = "{0} must be a day of the week between 1 (Monday) and 7 (Sunday)"

	clockTimeTag   = "clocktime"
	clockTimeText  = "{0} must be a time of day formatted as HH:MM or HH:MM:SS"
	clockTimeRegex = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

	requiredTag  = "required"
	requiredText = "this field is required"
)

// ClockLayouts are the accepted time-of-day layouts, the first one being canonical.
var ClockLayouts = []string{"15:04:05", "15:04"}

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(dayOfWeekTag, dayOfWeekValidation)
	RegisterCustomTranslation(validate, translator, dayOfWeekTag, dayOfWeekText)

	_ = validate.RegisterValidation(clockTimeTag, clockTimeValidation)
	RegisterCustomTranslation(validate, translator, clockTimeTag, clockTimeText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// NormalizeClock parses a time of day and formats it as HH:MM:SS.
func NormalizeClock(s string) (string, bool) {
	s = CleanString(s)
	for _, layout := range ClockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ClockLayouts[0]), true
		}
	}
	return "", false
}

// Custom Global Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// dayOfWeekValidation only allows ISO weekdays, Monday being 1.
func dayOfWeekValidation(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		day := fl.Field().Int()
		return day >= 1 && day <= 7
	default:
		return false
	}
}

func clockTimeValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !clockTimeRegex.MatchString(s) {
		return false
	}
	_, ok := NormalizeClock(s)
	return ok
}
