// Package form turns submitted form values into typed inputs and checks
// them with go-playground/validator.  Every message is in Russian because
// it is shown next to the offending field.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Award years accepted by the award form.
const (
	MinAwardYear = 1900
	MaxAwardYear = 2026
)

// Messages reused outside of validator tags.
const (
	MsgRequired      = "Обязательное поле."
	MsgInteger       = "Введите целое число."
	MsgDate          = "Введите правильную дату."
	MsgInvalidChoice = "Выберите корректный вариант. Вашего варианта нет среди допустимых значений."
	MsgAwardYear     = "Год должен быть от 1900 до 2026."
	MsgImage         = "Загрузите правильное изображение. Файл, который вы загрузили, поврежден или не является изображением."
	MsgFileTooLarge  = "Файл слишком большой. Максимальный размер 10 МБ."
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// messageTemplates maps validation tags to messages without parameters.
var messageTemplates = map[string]string{
	"required":   MsgRequired,
	"url":        "Введите правильный URL.",
	"award_year": MsgAwardYear,
}

// messageWithParam maps validation tags to messages taking the tag param.
var messageWithParam = map[string]string{
	"max": "Убедитесь, что это значение содержит не более %s символов.",
	"min": "Убедитесь, что это значение больше либо равно %s.",
	"gte": "Убедитесь, что это значение больше либо равно %s.",
	"lte": "Убедитесь, что это значение меньше либо равно %s.",
}

// Validator returns the shared validator instance with the custom tags
// registered.  Field names in errors are taken from the `form` tag.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("award_year", func(fl validator.FieldLevel) bool {
			y := fl.Field().Int()
			return y >= MinAwardYear && y <= MaxAwardYear
		})
	})
	return validate
}

// check validates s and adds one message per failed field to errs.  A
// field that already carries a parse error keeps it.
func check(s any, errs Errors) {
	err := Validator().Struct(s)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(NonFieldKey, err.Error())
		return
	}
	for _, fe := range verrs {
		if errs.Has(fe.Field()) {
			continue
		}
		errs.Add(fe.Field(), translate(fe))
	}
}

func translate(fe validator.FieldError) string {
	if t, ok := messageTemplates[fe.Tag()]; ok {
		return t
	}
	if t, ok := messageWithParam[fe.Tag()]; ok {
		if fe.Tag() == "max" && fe.Kind() != reflect.String {
			return fmt.Sprintf("Убедитесь, что это значение меньше либо равно %s.", fe.Param())
		}
		return fmt.Sprintf(t, fe.Param())
	}
	return fmt.Sprintf("Недопустимое значение (%s).", fe.Tag())
}
