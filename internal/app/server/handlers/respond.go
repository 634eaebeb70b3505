package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DaniRico987/Sagittarius/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{
		"code":    string(errors.CodeOf(err)),
		"message": err.Error(),
	})
}

func statusOf(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeInvalidArgument:
		return http.StatusBadRequest
	case errors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case errors.CodePermissionDenied:
		return http.StatusForbidden
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
