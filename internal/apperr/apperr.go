// Package apperr defines the failure taxonomy shared by the resolvers,
// the climate client and the API layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindUnknown              Kind = "unknown"
	KindNotFound             Kind = "not_found"
	KindUnauthorized         Kind = "unauthorized"
	KindNetworkFailure       Kind = "network_failure"
	KindUpstreamError        Kind = "upstream_error"
	KindConfigurationMissing Kind = "configuration_missing"
	KindValidation           Kind = "validation_error"
)

// Error is a typed failure. Status and Body are only set for upstream HTTP failures.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Status == 0 && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrNetworkFailure       = &Error{Kind: KindNetworkFailure}
	ErrUpstream             = &Error{Kind: KindUpstreamError}
	ErrConfigurationMissing = &Error{Kind: KindConfigurationMissing}
	ErrValidation           = &Error{Kind: KindValidation}
)

// New builds an Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation builds a ValidationError with a plain message.
func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: errors.New(msg)}
}

// ConfigurationMissing reports an absent credential or endpoint setting.
func ConfigurationMissing(op, setting string) *Error {
	return &Error{Kind: KindConfigurationMissing, Op: op, Err: fmt.Errorf("%s not configured", setting)}
}

// Upstream reports a non-2xx upstream response that has no more specific kind.
func Upstream(op string, status int, body string) *Error {
	return &Error{Kind: KindUpstreamError, Op: op, Status: status, Body: body}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether retrying the same request may succeed.
func Retryable(kind Kind) bool {
	return kind == KindNetworkFailure || kind == KindUpstreamError
}

// Message returns the user-facing pt-BR text for kind.
func Message(kind Kind) string {
	switch kind {
	case KindNotFound:
		return "Cidade não encontrada no Brasil. Verifique o nome da cidade."
	case KindUnauthorized:
		return "Chave de API inválida. Verifique sua configuração."
	case KindNetworkFailure:
		return "Erro de conexão: não foi possível contatar o serviço de clima."
	case KindUpstreamError:
		return "O serviço de clima retornou um erro. Tente novamente em instantes."
	case KindConfigurationMissing:
		return "Funcionalidade indisponível: credencial não configurada."
	case KindValidation:
		return "Dados inválidos. Verifique os campos informados."
	default:
		return "Ocorreu um erro inesperado."
	}
}
