package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"famledger/internal/core"
	"famledger/internal/log"
	"famledger/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	// Plan is sent with 409 so the client can ask the user and retry with confirm=true.
	Plan *services.DeletePlan `json:"plan,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code. Store failures are logged and reported
// with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "record not found"})
	case errors.Is(err, core.ErrStaleView):
		// The client is gone; nothing to write.
		log.FromContext(r.Context()).DebugContext(r.Context(), "Dropping stale result", log.FieldOperation, op)
	default:
		log.FromContext(r.Context()).LogError(r.Context(), "Request failed", err, op, nil)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeNotConfirmed(w http.ResponseWriter, plan services.DeletePlan) {
	writeJSON(w, http.StatusConflict, errorResponse{
		Error: "delete not confirmed: repeat with confirm=true",
		Plan:  &plan,
	})
}
