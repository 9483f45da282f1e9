// Package i18n renders message keys in the language negotiated from an
// Accept-Language header.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/fastygo/tracker/domain"
)

var supported = []language.Tag{language.Spanish, language.English}

var spanish = map[string]string{
	domain.MsgRequired:        "Este campo es obligatorio.",
	domain.MsgMaxLength:       "El valor es demasiado largo.",
	domain.MsgInvalidChoice:   "Seleccione una opción válida.",
	domain.MsgInvalidDate:     "Introduzca una fecha válida (AAAA-MM-DD).",
	domain.MsgInvalidEmail:    "Introduzca una dirección de correo electrónico válida.",
	domain.MsgInvalidUsername: "Introduzca un nombre de usuario válido. Solo letras, números y los caracteres @/./+/-/_.",

	domain.MsgEndBeforeStart: "La fecha de finalización no puede ser anterior a la fecha de inicio.",
	domain.MsgDueInPast:      "La fecha de vencimiento no puede ser en el pasado.",

	domain.MsgEmailTaken:         "Este correo electrónico ya está registrado.",
	domain.MsgUsernameTaken:      "Ya existe un usuario con este nombre.",
	domain.MsgPasswordMismatch:   "Los dos campos de contraseña no coinciden.",
	domain.MsgPasswordTooShort:   "La contraseña es demasiado corta. Debe contener al menos 8 caracteres.",
	domain.MsgPasswordNumeric:    "La contraseña no puede ser completamente numérica.",
	domain.MsgPasswordSimilar:    "La contraseña es demasiado similar al nombre de usuario.",
	domain.MsgInvalidCredentials: "Usuario o contraseña incorrectos.",

	domain.MsgAccountCreated: "Cuenta creada para %s! Ahora puedes iniciar sesión.",
	domain.MsgProjectCreated: "Proyecto creado exitosamente!",
	domain.MsgProjectUpdated: "Proyecto actualizado exitosamente!",
	domain.MsgProjectDeleted: "Proyecto eliminado exitosamente!",
	domain.MsgTaskCreated:    "Tarea creada exitosamente!",
	domain.MsgTaskUpdated:    "Tarea actualizada exitosamente!",
	domain.MsgTaskDeleted:    "Tarea eliminada exitosamente!",
	domain.MsgLoggedOut:      "Has cerrado sesión.",
	domain.MsgAdminSaved:     "El objeto %s se guardó correctamente.",
	domain.MsgAdminDeleted:   "El objeto %s se eliminó correctamente.",

	"status.pending":     "Pendiente",
	"status.in_progress": "En progreso",
	"status.completed":   "Completado",
	"status.cancelled":   "Cancelado",
	"priority.low":       "Baja",
	"priority.medium":    "Media",
	"priority.high":      "Alta",
	"priority.urgent":    "Urgente",
}

var english = map[string]string{
	domain.MsgRequired:        "This field is required.",
	domain.MsgMaxLength:       "Ensure this value is not too long.",
	domain.MsgInvalidChoice:   "Select a valid choice.",
	domain.MsgInvalidDate:     "Enter a valid date (YYYY-MM-DD).",
	domain.MsgInvalidEmail:    "Enter a valid email address.",
	domain.MsgInvalidUsername: "Enter a valid username. Only letters, numbers and @/./+/-/_ characters.",

	domain.MsgEndBeforeStart: "The end date cannot be earlier than the start date.",
	domain.MsgDueInPast:      "The due date cannot be in the past.",

	domain.MsgEmailTaken:         "This email address is already registered.",
	domain.MsgUsernameTaken:      "A user with that username already exists.",
	domain.MsgPasswordMismatch:   "The two password fields didn't match.",
	domain.MsgPasswordTooShort:   "This password is too short. It must contain at least 8 characters.",
	domain.MsgPasswordNumeric:    "This password is entirely numeric.",
	domain.MsgPasswordSimilar:    "The password is too similar to the username.",
	domain.MsgInvalidCredentials: "Invalid username or password.",

	domain.MsgAccountCreated: "Account created for %s! You can now log in.",
	domain.MsgProjectCreated: "Project created successfully!",
	domain.MsgProjectUpdated: "Project updated successfully!",
	domain.MsgProjectDeleted: "Project deleted successfully!",
	domain.MsgTaskCreated:    "Task created successfully!",
	domain.MsgTaskUpdated:    "Task updated successfully!",
	domain.MsgTaskDeleted:    "Task deleted successfully!",
	domain.MsgLoggedOut:      "You have been logged out.",
	domain.MsgAdminSaved:     "The object %s was saved successfully.",
	domain.MsgAdminDeleted:   "The object %s was deleted successfully.",

	"status.pending":     "Pending",
	"status.in_progress": "In progress",
	"status.completed":   "Completed",
	"status.cancelled":   "Cancelled",
	"priority.low":       "Low",
	"priority.medium":    "Medium",
	"priority.high":      "High",
	"priority.urgent":    "Urgent",
}

// Translator owns the message catalog and language negotiation.
type Translator struct {
	catalog  catalog.Catalog
	matcher  language.Matcher
	ordered  []language.Tag
	fallback language.Tag
}

// New builds the catalog. defaultLang is used when negotiation finds no
// match; an unknown value falls back to Spanish.
func New(defaultLang string) (*Translator, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for key, msg := range spanish {
		if err := b.SetString(language.Spanish, key, msg); err != nil {
			return nil, err
		}
	}
	for key, msg := range english {
		if err := b.SetString(language.English, key, msg); err != nil {
			return nil, err
		}
	}

	fallback := language.Spanish
	if tag, err := language.Parse(defaultLang); err == nil {
		_, idx, conf := language.NewMatcher(supported).Match(tag)
		if conf != language.No {
			fallback = supported[idx]
		}
	}

	ordered := []language.Tag{fallback}
	for _, tag := range supported {
		if tag != fallback {
			ordered = append(ordered, tag)
		}
	}

	return &Translator{
		catalog:  b,
		matcher:  language.NewMatcher(ordered),
		ordered:  ordered,
		fallback: fallback,
	}, nil
}

// Negotiate picks the best supported language for an Accept-Language
// header value.
func (t *Translator) Negotiate(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return t.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.fallback
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.fallback
	}
	if idx < 0 || idx >= len(t.ordered) {
		return t.fallback
	}
	return t.ordered[idx]
}

// Printer returns a printer for the negotiated language.
func (t *Translator) Printer(acceptLanguage string) *message.Printer {
	return message.NewPrinter(t.Negotiate(acceptLanguage), message.Catalog(t.catalog))
}

// Translate renders key with args for the given Accept-Language value.
func (t *Translator) Translate(acceptLanguage, key string, args ...any) string {
	return t.Printer(acceptLanguage).Sprintf(key, args...)
}
