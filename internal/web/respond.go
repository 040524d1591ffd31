package web

import (
	"encoding/json"
	"errors"
	"net/http"

	sentry "github.com/getsentry/sentry-go"

	"github.com/justestif/audiox-backend/internal/metadata"
)

// handlerFunc is an HTTP handler that reports failures by returning them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// handle adapts a handlerFunc, turning returned errors into JSON responses.
func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var e *metadata.Error
		if !errors.As(err, &e) {
			e = &metadata.Error{Kind: metadata.KindInternal, Message: "Internal server error", Err: err}
		}

		logger := loggerFrom(r.Context()).WithField("kind", e.Kind.String())
		if e.Kind == metadata.KindInternal {
			logger.WithError(err).Error("request failed")
			if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
				hub.CaptureException(err)
			}
		} else {
			logger.WithError(err).Debug("request rejected")
		}

		writeJSON(w, r, e.Kind.HTTPStatus(), errorBody{Error: e.Message, Message: e.Detail})
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFrom(r.Context()).WithError(err).Warn("writing JSON response")
	}
}

// writeRaw writes an already encoded JSON body unchanged.
func writeRaw(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		loggerFrom(r.Context()).WithError(err).Warn("writing JSON response")
	}
}
