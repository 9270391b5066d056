package httpx

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"booksearch/internal/logging"
)

var errTrailingData = errors.New("unexpected data after JSON body")

// ErrorResponse is the body of every non-search error reply.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Details   []ValidationError `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("encode response")
	}
}

// JSONError writes an ErrorResponse tagged with the request id.
func JSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	JSON(w, r, status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: RequestIDFrom(r),
	})
}

// DecodeJSON decodes the request body into v, rejecting unknown trailing data.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}
