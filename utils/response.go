package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"albaceo/apperr"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"message": msg})
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithAppError maps an apperr value onto the wire. StateConflict
// errors carry the itemized removedItems list so the client can show it.
func RespondWithAppError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}
	body := map[string]any{"message": ae.Message}
	if len(ae.RemovedItems) > 0 {
		body["removedItems"] = ae.RemovedItems
	}
	RespondWithJSON(w, ae.Status(), body)
}

type M map[string]interface{}
