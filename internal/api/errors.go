package api

import (
	"errors"
	"net/http"

	"github.com/neexbeast/clima-rs/internal/apperr"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Detail    string `json:"detail,omitempty"`
}

// statusFor maps an error kind to the HTTP status returned to clients.
// Unauthorized means the service's own upstream credential was rejected,
// so it is reported as a bad gateway.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized, apperr.KindUpstreamError:
		return http.StatusBadGateway
	case apperr.KindNetworkFailure, apperr.KindConfigurationMissing:
		return http.StatusServiceUnavailable
	case apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the JSON error body.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		h.log.Warn("request failed", "path", r.URL.Path, "kind", kind, "err", err)
	}

	body := errorBody{
		Error:     string(kind),
		Message:   apperr.Message(kind),
		Retryable: apperr.Retryable(kind),
	}
	var e *apperr.Error
	if kind == apperr.KindValidation && errors.As(err, &e) && e.Err != nil {
		body.Detail = e.Err.Error()
	}
	writeJSON(w, status, body)
}

func writeSuperseded(w http.ResponseWriter) {
	writeJSON(w, http.StatusConflict, errorBody{
		Error:   "superseded",
		Message: "Uma consulta mais recente substituiu esta requisição.",
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorBody{
		Error:   "unauthorized",
		Message: "Acesso não autorizado.",
	})
}
