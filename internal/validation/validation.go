package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"storybook-server/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// engine возвращает валидатор gin с зарегистрированными дополнительными правилами.
// Один и тот же экземпляр используется и при биндинге запросов в хендлерах, и в сервисах.
func engine() *validator.Validate {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		// gin всегда использует go-playground/validator, сюда попасть невозможно
		panic("validation: unexpected gin validator engine")
	}
	registerOnce.Do(func() {
		// notblank: строка не пустая и не состоит из одних пробелов
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		// nonnegative: строковое число не меньше нуля (сумма заказа)
		_ = v.RegisterValidation("nonnegative", nonNegative)
		// В сообщениях используем имена полей из json-тегов
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return v
}

func nonNegative(fl validator.FieldLevel) bool {
	value, err := strconv.ParseFloat(fl.Field().String(), 64)
	return err == nil && value >= 0
}

// Register подготавливает валидатор gin. Вызывается до регистрации маршрутов.
func Register() {
	engine()
}

// ValidateBookRequest проверяет запрос на генерацию книги.
func ValidateBookRequest(req *models.BookRequest) error {
	return validateStruct(req)
}

// ValidateCheckoutRequest проверяет запрос на оформление заказа.
func ValidateCheckoutRequest(req *models.CheckoutRequest) error {
	return validateStruct(req)
}

func validateStruct(obj interface{}) error {
	if err := engine().Struct(obj); err != nil {
		return fmt.Errorf("%w: %s", models.ErrValidation, Message(err))
	}
	return nil
}

// Message превращает ошибку биндинга или валидации в человекочитаемое сообщение
// о первом (основном) нарушении.
func Message(err error) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		return fieldMessage(vErrs[0])
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "invalid request body: malformed JSON"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("invalid request body: field %s has wrong type", typeErr.Field)
	}
	if err.Error() == "EOF" {
		return "invalid request body: empty body"
	}
	return "invalid request body: " + err.Error()
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be empty"
	case "min":
		if isList {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		if isList {
			return fmt.Sprintf("%s must contain at most %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return field + " must be a valid email address"
	case "numeric":
		return field + " must be a number"
	case "nonnegative":
		return field + " must not be negative"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
