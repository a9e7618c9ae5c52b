// Package response writes JSON API responses.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"opnskin/pkg/apierror"
)

// JSON sends v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// Error sends an error response. *apierror.Error keeps its status and body;
// anything else becomes a generic 500.
func Error(w http.ResponseWriter, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierror.InternalError("")
	}
	if apiErr.RetryAfterSec > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(apiErr.RetryAfterSec))
	}
	JSON(w, apiErr.StatusCode, apiErr)
}
