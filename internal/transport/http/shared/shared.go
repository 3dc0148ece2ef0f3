package shared

import (
	"encoding/json"
	"net/http"

	dErrors "panchayat/pkg/domain-errors"
)

// WriteJSON writes v as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders a domain error as the {"detail": ...} envelope every
// endpoint uses. Unclassified errors become a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, dErrors.ToHTTPStatus(err), map[string]string{
		"detail": dErrors.Detail(err),
	})
}

// Decode parses the JSON request body into T. On failure it writes a 400 and
// returns false.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return v, false
	}
	return v, true
}
