package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/observability"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status and a {code, message} body. Errors without
// a code are reported as internal and their text is not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	status := errors.HTTPStatus(code)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		code, status = errors.ErrCodeInvalidInput, http.StatusRequestEntityTooLarge
		msg = "request body too large"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, routeOf(r), err)
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
