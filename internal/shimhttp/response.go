package shimhttp

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	apperrors "github.com/practicearena/coachcore/internal/errors"
)

// bufferedResponseWriter captures a handler's response so gzipMiddleware
// can decide, after the fact, whether the body cleared the compression
// threshold.
type bufferedResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
	wrote  bool
}

func (b *bufferedResponseWriter) WriteHeader(status int) {
	if !b.wrote {
		b.status = status
		b.wrote = true
	}
}

func (b *bufferedResponseWriter) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON body returned for any AppError. Message and
// Details are both sanitized before encoding; StatusCode is handled by the
// caller separately.
type errorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type"`
	Details string `json:"details,omitempty"`
}

// writeError translates err into a sanitized JSON error response. It logs
// the unsanitized message and details at Debug level for operators, and
// never returns the underlying cause to the caller.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		appErr = apperrors.NewInternalError(err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestIDFromContext(r.Context()),
		"error_type": appErr.Type,
		"status":     appErr.StatusCode,
	}).Debug(appErr.Error())

	writeJSON(w, appErr.StatusCode, errorResponse{
		Error:   defaultSanitizer.Sanitize(appErr.Message),
		Type:    string(appErr.Type),
		Details: defaultSanitizer.Sanitize(appErr.Details),
	})
}
