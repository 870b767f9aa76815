package store

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/services"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags & texts
	phoneTag    = "phone"
	phoneText   = "{0} must be a phone number"
	isoDateTag  = "isodate"
	isoDateText = "{0} must be a date (YYYY-MM-DD or ISO timestamp)"

	requiredTag  = "required"
	requiredText = "{0} is required"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	registerTranslation(phoneTag, phoneText)
	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	registerTranslation(isoDateTag, isoDateText)
	registerTranslation(requiredTag, requiredText, true)
}

func registerTranslation(tag, text string, override ...bool) {
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

// phoneValidation accepts anything that normalizes to digits. The 10-digit
// minimum applies to self check-in only.
func phoneValidation(fl validator.FieldLevel) bool {
	return services.DigitsOnly(services.NormPhone(fl.Field().String())) != ""
}

func isoDateValidation(fl validator.FieldLevel) bool {
	_, ok := models.ParseDate(strings.TrimSpace(fl.Field().String()))
	return ok
}

// Validate checks in against its validate tags.
func Validate(in interface{}) error {
	if err := validate.Struct(in); err != nil {
		return fromValidator(err)
	}
	return nil
}
