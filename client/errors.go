package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/validation"
)

var (
	ErrNetwork      = errors.New("no se pudo conectar con el servidor")
	ErrUnauthorized = errors.New("la sesión expiró, volvé a iniciar sesión")
	ErrServer       = errors.New("error del servidor, intentá más tarde")
	ErrNoSession    = errors.New("no hay una sesión activa")
)

// APIError is a 4xx answer other than 401: either a message or a field->message map.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		return strings.Join(fieldMessages(e.Fields), "; ")
	}
	return strings.ToLower(http.StatusText(e.Status))
}

func newAPIError(status int, body string) *APIError {
	apiErr := &APIError{Status: status}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		apiErr.Message = strings.TrimSpace(body)
		return apiErr
	}
	if msg, ok := raw["error"].(string); ok && len(raw) == 1 {
		apiErr.Message = msg
		return apiErr
	}

	apiErr.Fields = make(map[string]string, len(raw))
	for field, v := range raw {
		if msg, ok := v.(string); ok {
			apiErr.Fields[field] = msg
		}
	}
	return apiErr
}

// Messages turns any error returned by this package into user-visible lines.
func Messages(err error, translator ut.Translator) []string {
	if err == nil {
		return nil
	}
	if fields, ok := validation.Errors(errors.Cause(err), translator); ok {
		return fieldMessages(fields)
	}

	switch e := errors.Cause(err).(type) {
	case *core.ValidationError:
		if len(e.Fields) == 0 {
			return []string{e.Error()}
		}
		fields := make(map[string]string, len(e.Fields))
		for _, f := range e.Fields {
			fields[f.Field] = f.Error
		}
		return fieldMessages(fields)
	case *APIError:
		if len(e.Fields) > 0 {
			return fieldMessages(e.Fields)
		}
		return []string{e.Error()}
	}

	switch errors.Cause(err) {
	case ErrNetwork, ErrUnauthorized, ErrServer, ErrNoSession, ErrInvalidTheme:
		return []string{errors.Cause(err).Error()}
	}
	return []string{"ocurrió un error inesperado"}
}

func fieldMessages(fields map[string]string) []string {
	msgs := make([]string, 0, len(fields))
	for field, msg := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return msgs
}
