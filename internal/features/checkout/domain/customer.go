package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrEmptyCart is returned when checkout is attempted without items.
var ErrEmptyCart = errors.New("cart is empty")

var (
	personName    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	streetAddress = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)
	digitsOnly    = regexp.MustCompile(`^[0-9]+$`)

	validate = newValidator()
)

// CustomerInfo is the shipping information collected at checkout.
type CustomerInfo struct {
	Name    string `json:"name" form:"name" validate:"required,personname"`
	Address string `json:"address" form:"address" validate:"required,streetaddress"`
	Phone   string `json:"phone" form:"phone" validate:"required,digits"`
}

// messages maps field and failed rule to the text shown next to the input.
var messages = map[string]map[string]string{
	"name": {
		"required":   "Name cannot be empty",
		"personname": "Name can only contain letters and spaces",
	},
	"address": {
		"required":      "Address cannot be empty",
		"streetaddress": "Address can only contain letters, numbers and spaces",
	},
	"phone": {
		"required": "Phone number cannot be empty",
		"digits":   "Phone number can only contain numbers",
	},
}

// ValidationError holds one message per invalid field, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid customer info: " + strings.Join(parts, "; ")
}

// Validate checks the shipping information. It returns a *ValidationError listing every invalid field.
func (c CustomerInfo) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		if msg, ok := messages[field][fe.Tag()]; ok {
			out.Fields[field] = msg
		} else {
			out.Fields[field] = fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return out
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	register := func(tag string, re *regexp.Regexp) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	register("personname", personName)
	register("streetaddress", streetAddress)
	register("digits", digitsOnly)
	return v
}
