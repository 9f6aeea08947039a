package api

import (
	"encoding/json"
	"net/http"

	"github.com/coderr-app/backend/internal/validate"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

// writeDetail emits the simple error shape {"detail": "..."} used for all
// non-validation failures.
func writeDetail(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, map[string]string{"detail": msg}, status)
}

// writeFieldErrors emits a 400 with field-keyed messages so clients can
// render them inline.
func writeFieldErrors(w http.ResponseWriter, fe validate.FieldErrors) {
	writeJSON(w, fe, http.StatusBadRequest)
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeDetail(w, msg, http.StatusUnauthorized)
}

func forbidden(w http.ResponseWriter) {
	writeDetail(w, "you do not have permission to perform this action", http.StatusForbidden)
}

func notFound(w http.ResponseWriter) {
	writeDetail(w, "not found", http.StatusNotFound)
}

func serverError(w http.ResponseWriter, msg string) {
	writeDetail(w, msg, http.StatusInternalServerError)
}
