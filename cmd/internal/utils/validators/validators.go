package validators

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// Validate reports JSON field names and knows the project's custom tags.
	// It is safe for concurrent use.
	Validate *validator.Validate

	// Translator renders Validate's errors in English.
	Translator ut.Translator
)

func init() {
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	Validate = newValidate()
}

func newValidate() *validator.Validate {
	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, Translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	register(validate, "iso8601", IsIso8601, "{0} must be an RFC3339 timestamp")
	register(validate, "notblank", NotBlank, "{0} cannot be blank")
	return validate
}

func register(validate *validator.Validate, tag string, fn validator.Func, text string) {
	_ = validate.RegisterValidation(tag, fn)
	_ = validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// IsIso8601 accepts RFC3339 timestamps such as 2026-05-04T14:00:00Z.
func IsIso8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
