// Package validation registers the custom struct tags used by request payloads
// and turns validator errors into field -> message maps.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	personNameRe = regexp.MustCompile(`^[а-яА-ЯёЁa-zA-Z -]+$`)
	usernameRe   = regexp.MustCompile(`^[\w.@+-]+$`)

	// letters of any script, digits and the punctuation found in product names
	ingredientNameRe = regexp.MustCompile(`^[\p{L}\p{N} %,.()'-]+$`)

	setupOnce sync.Once
	setupErr  error
)

// Register adds the json tag name func and the custom tags to v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return personNameRe.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("ingredient_name", func(fl validator.FieldLevel) bool {
		return ValidIngredientName(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
}

// Setup registers the custom tags on gin's binding validator. Safe to call repeatedly.
func Setup() error {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = errors.New("gin binding validator is not go-playground/validator")
			return
		}
		setupErr = Register(v)
	})
	return setupErr
}

// ValidUsername reports whether s is an allowed username. "me" is reserved for /users/me.
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s) && !strings.EqualFold(s, "me")
}

// ValidIngredientName reports whether s may name a catalog ingredient.
func ValidIngredientName(s string) bool {
	return strings.TrimSpace(s) != "" && ingredientNameRe.MatchString(s)
}

// Fields converts a binding error into field-level messages.
// It returns nil when err is not a validation or decoding error.
func Fields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldPath(fe)] = message(fe)
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		return map[string]string{field: fmt.Sprintf("expected %s", typeErr.Type)}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return map[string]string{"non_field_errors": "malformed JSON"}
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "person_name":
		return "enter a valid name"
	case "username":
		return "enter a valid username"
	case "ingredient_name":
		return "enter a valid ingredient name"
	case "uuid", "uuid4":
		return "must be a valid id"
	case "min", "gte":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "dive":
		return "is invalid"
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}
