package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/cabinet-be/internal/apperr"
	"github.com/isdelr/cabinet-be/internal/validation"
)

// Decoder validates a raw body against a named schema and decodes it into dst.
type Decoder interface {
	Decode(name string, body []byte, dst any) error
}

var _ Decoder = (*validation.Validator)(nil)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decodeBody reads the request body and runs it through the schema.
func decodeBody(r *http.Request, dec Decoder, schema string, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return dec.Decode(schema, body, dst)
}

// handleError maps service errors onto status codes. Anything that is not a
// known kind becomes a 500 with fallback as the message.
func handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var maxBytes *http.MaxBytesError
	var invalid *apperr.ValidationError

	switch {
	case errors.As(err, &maxBytes):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": invalid.Errors})
	case errors.Is(err, apperr.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, apperr.Message(err, "Invalid input."))
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, apperr.Message(err, "Login required."))
	case errors.Is(err, apperr.ErrForbidden):
		writeError(w, http.StatusForbidden, apperr.Message(err, "Unauthorized"))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, apperr.Message(err, "Not found."))
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, apperr.Message(err, "Already exists."))
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// NotFound answers unknown API paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found.")
}

// MethodNotAllowed answers known paths requested with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
}

// RateLimited answers clients that exceeded the request budget.
func RateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
}

// Health reports that the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
