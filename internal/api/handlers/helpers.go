package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"tour-itinerary-service/internal/domain"
	"tour-itinerary-service/internal/ports"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON decodes a single strict JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Input errors
// carry their message to the caller; everything else logs the detail and
// returns a generic body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, r, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
			"kind":  "invalid_input",
		})
	case errors.Is(err, ports.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, map[string]string{
			"error": "not found",
			"kind":  "not_found",
		})
	case errors.Is(err, domain.ErrTravelLookup):
		log.Printf("travel lookup failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeJSON(w, r, http.StatusBadGateway, map[string]string{
			"error": "travel time lookup failed",
			"kind":  "travel_lookup_failed",
		})
	case errors.Is(err, domain.ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"error": "another generation run is in progress for this tour",
			"kind":  "lock_timeout",
		})
	default:
		log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
