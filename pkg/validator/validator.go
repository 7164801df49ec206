package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var (
	hhmmPattern          = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	bloodPressurePattern = regexp.MustCompile(`^[0-9]{2,3}/[0-9]{2,3}$`)
	weekdays             = map[string]bool{
		"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
		"friday": true, "saturday": true, "sunday": true,
	}
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
	Engine() *playground.Validate
}

type validator struct {
	engine *playground.Validate
}

func New() Validator {
	v := playground.New()
	configure(v)
	return &validator{engine: v}
}

func (v *validator) Engine() *playground.Validate {
	return v.engine
}

// Validate runs the struct rules and returns an AppError carrying the
// field -> messages map on failure.
func (v *validator) Validate(obj interface{}) error {
	if err := v.engine.Struct(obj); err != nil {
		return Translate(err)
	}
	return nil
}

var ginOnce sync.Once

// RegisterGin installs the same tag name function and custom rules on gin's
// binding validator so ShouldBindJSON enforces them.
func RegisterGin() {
	ginOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*playground.Validate); ok {
			configure(v)
		}
	})
}

func configure(v *playground.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]playground.Func{
		"hhmm":           isHHMM,
		"weekday":        isWeekday,
		"blood_pressure": isBloodPressure,
		"ymd":            isDate,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

func isHHMM(fl playground.FieldLevel) bool {
	return IsTimeOfDay(fl.Field().String())
}

func isWeekday(fl playground.FieldLevel) bool {
	return IsWeekday(fl.Field().String())
}

func isBloodPressure(fl playground.FieldLevel) bool {
	return bloodPressurePattern.MatchString(fl.Field().String())
}

func isDate(fl playground.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// IsTimeOfDay reports whether s is a 24h "HH:MM" string.
func IsTimeOfDay(s string) bool {
	return hhmmPattern.MatchString(s)
}

// IsWeekday reports whether s is a lowercase English weekday name.
func IsWeekday(s string) bool {
	return weekdays[s]
}

// Translate converts binding or validation errors into a validation AppError.
func Translate(err error) error {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.BadRequest("invalid request body", err)
	}

	fields := make(map[string][]string)
	for _, fe := range verrs {
		name := fieldPath(fe)
		fields[name] = append(fields[name], message(fe))
	}
	return apperrors.Validation(fields)
}

// fieldPath drops the root struct name from the namespace so nested fields
// read like the JSON body, e.g. items[0].quantity.
func fieldPath(fe playground.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe playground.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min", "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("The %s must not be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("The %s must be a valid identifier.", field)
	case "hhmm":
		return fmt.Sprintf("The %s must be a time in HH:MM format.", field)
	case "weekday":
		return fmt.Sprintf("The %s must be a day of the week.", field)
	case "blood_pressure":
		return fmt.Sprintf("The %s must look like 120/80.", field)
	case "ymd":
		return fmt.Sprintf("The %s must be a date in YYYY-MM-DD format.", field)
	}
	return fmt.Sprintf("The %s is invalid.", field)
}
