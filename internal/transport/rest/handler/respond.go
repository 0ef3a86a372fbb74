package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"cnmaturity/internal/service"
	"cnmaturity/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var notEligible *session.QuestionNotEligibleError
	var badOption *session.InvalidOptionValueError
	switch {
	case errors.Is(err, session.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, service.ErrResultNotFound),
		service.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &notEligible), errors.Is(err, session.ErrQuestionNotAnswered),
		errors.Is(err, session.ErrVersionConflict):
		return http.StatusConflict
	case errors.As(err, &badOption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrArchiveDisabled):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err with its mapped status; internal errors are
// not echoed to the client
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// lang reads the ?lang= override
func lang(r *http.Request) string {
	return r.URL.Query().Get("lang")
}
