package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
	"github.com/gyaneshwarpardhi/lineage/internal/query"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps a query error to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, query.ErrUnknownLineage), errors.Is(err, lineage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, query.ErrUnknownOp), errors.Is(err, query.ErrInvalidArgs):
		return http.StatusBadRequest
	case errors.Is(err, lineage.ErrNoCommonAncestor):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
