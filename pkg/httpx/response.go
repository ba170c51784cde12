package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the payload of the "error" member of a failed response.
type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes v inside the success envelope: {"data": v}.
func WriteData(w http.ResponseWriter, code int, v any) {
	WriteJSON(w, code, map[string]any{"data": v})
}

// WriteError writes the failure envelope: {"error": {"message": ..., "status": ...}}.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, map[string]ErrorBody{
		"error": {Message: message, Status: code},
	})
}

// WriteNoContent answers 204 without a body.
func WriteNoContent(w http.ResponseWriter) {
	NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
