package form

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"clementus360/taskboard/types"

	"github.com/go-playground/validator/v10"
)

var personNamePattern = regexp.MustCompile(`^[\p{L}\s]+$`)

var messages = map[string]string{
	"required":   "%s is required",
	"notblank":   "%s is required",
	"max":        "%s must be at most %s characters",
	"min":        "%s must be at least %s characters",
	"email":      "%s must be a valid email address",
	"eqfield":    "%s must match %s",
	"priority":   "%s must be one of low, medium, high, urgent",
	"status":     "%s must be one of pending, in_progress, completed, cancelled",
	"datestr":    "%s must be a date in YYYY-MM-DD format",
	"notpast":    "%s cannot be in the past",
	"personname": "%s must contain only letters",
}

// ValidationError carries one message per offending field, keyed by the
// field's JSON name.
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
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks forms before they are dispatched to the service.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator builds a validator. now is used for the "not in the past"
// rule; nil means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	must(v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.validate.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return slices.Contains(types.Priorities, types.Priority(fl.Field().String()))
	}))
	must(v.validate.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return slices.Contains(types.Statuses, types.Status(fl.Field().String()))
	}))
	must(v.validate.RegisterValidation("datestr", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	}))
	must(v.validate.RegisterValidation("notpast", v.notPast))
	must(v.validate.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	}))

	return v
}

// notPast accepts today and any later day, compared in the clock's location.
func (v *Validator) notPast(fl validator.FieldLevel) bool {
	now := v.now()
	due, err := time.ParseInLocation(dateLayout, fl.Field().String(), now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !due.Before(today)
}

// Task validates a task form. It returns nil or a *ValidationError.
func (v *Validator) Task(f TaskForm) error {
	return v.check(f)
}

// Register validates a registration request.
func (v *Validator) Register(r types.RegisterRequest) error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return v.check(r)
}

func (v *Validator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	if strings.Count(msg, "%s") == 2 {
		param := fe.Param()
		if fe.Tag() == "eqfield" {
			param = "password"
		}
		return fmt.Sprintf(msg, fe.Field(), param)
	}
	return fmt.Sprintf(msg, fe.Field())
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
