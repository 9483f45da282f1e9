// Package form validates user submissions before they reach storage.
// Errors are reported per field as message keys (see domain.Msg*) so the
// transport layer can localize them.
package form

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/tracker/domain"
)

// Getter reads one submitted value; absent keys return "".
type Getter func(key string) string

// Values adapts a plain map, mostly for tests and JSON bodies.
func Values(m map[string]string) Getter {
	return func(key string) string { return m[key] }
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
	return v
}

var tagMessages = map[string]string{
	"required": domain.MsgRequired,
	"max":      domain.MsgMaxLength,
	"email":    domain.MsgInvalidEmail,
	"oneof":    domain.MsgInvalidChoice,
	"username": domain.MsgInvalidUsername,
	"datetime": domain.MsgInvalidDate,
}

// check runs the struct tags of s and collects one message per field.
func check(s any) domain.FieldErrors {
	errs := domain.FieldErrors{}
	err := validate.Struct(s)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(domain.NonField, domain.MsgInvalidChoice)
		return errs
	}
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = domain.MsgInvalidChoice
		}
		errs.Add(fe.Field(), msg)
	}
	return errs
}

// Struct validates any struct tagged with form and validate tags.
func Struct(s any) domain.FieldErrors {
	return check(s)
}

// attach moves an entity Clean error onto its form field.
func attach(errs domain.FieldErrors, err error) {
	if err == nil {
		return
	}
	if fe, ok := domain.AsFieldErrors(err); ok {
		for field, msgs := range fe {
			for _, msg := range msgs {
				errs.Add(field, msg)
			}
		}
		return
	}
	errs.Add(domain.NonField, err.Error())
}

func trim(get Getter, key string) string {
	if get == nil {
		return ""
	}
	return strings.TrimSpace(get(key))
}

// Choice is one option of a select field. LabelKey is set for enum
// options whose label is a message key.
type Choice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	LabelKey string `json:"-"`
}

type Field struct {
	Name    string   `json:"name"`
	Value   string   `json:"value"`
	Choices []Choice `json:"choices,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// View is the renderable state of a form.
type View struct {
	Fields         []Field  `json:"fields"`
	NonFieldErrors []string `json:"non_field_errors,omitempty"`
	Valid          bool     `json:"valid"`
}

// Localize replaces message keys with text produced by translate.
func (v *View) Localize(translate func(key string) string) {
	if v == nil || translate == nil {
		return
	}
	for i := range v.Fields {
		for j, key := range v.Fields[i].Errors {
			v.Fields[i].Errors[j] = translate(key)
		}
		for j, c := range v.Fields[i].Choices {
			if c.LabelKey != "" {
				v.Fields[i].Choices[j].Label = translate(c.LabelKey)
			}
		}
	}
	for i, key := range v.NonFieldErrors {
		v.NonFieldErrors[i] = translate(key)
	}
}

func field(name, value string, errs domain.FieldErrors, choices ...Choice) Field {
	return Field{Name: name, Value: value, Choices: choices, Errors: cloneMessages(errs[name])}
}

func buildView(errs domain.FieldErrors, fields ...Field) View {
	return View{Fields: fields, NonFieldErrors: cloneMessages(errs[domain.NonField]), Valid: errs.Empty()}
}

// cloneMessages keeps Localize from rewriting the form's own errors.
func cloneMessages(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	return append([]string(nil), keys...)
}

func statusChoices() []Choice {
	out := make([]Choice, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		out = append(out, Choice{Value: string(s), LabelKey: s.Label()})
	}
	return out
}

func priorityChoices() []Choice {
	out := make([]Choice, 0, len(domain.Priorities))
	for _, p := range domain.Priorities {
		out = append(out, Choice{Value: string(p), LabelKey: p.Label()})
	}
	return out
}

func parseDate(errs domain.FieldErrors, name, value string) *time.Time {
	if value == "" || errs.Has(name) {
		return nil
	}
	parsed, err := domain.ParseDate(value)
	if err != nil {
		errs.Add(name, domain.MsgInvalidDate)
		return nil
	}
	return &parsed
}
