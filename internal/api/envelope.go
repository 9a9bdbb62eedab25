package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is bumped whenever the envelope shape changes.
const EnvelopeVersion = 1

// APIEnvelope wraps every JSON response body.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer wrapping bodies in APIEnvelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)
	if code < http.StatusBadRequest {
		return APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
	}
	return errorEnvelope(v), nil
}

func errorEnvelope(v any) APIEnvelope {
	env := APIEnvelope{Version: EnvelopeVersion}
	switch e := v.(type) {
	case *APIError:
		env.Error = e.Message
		env.Code = e.Code
		env.Details = e.Details
	case error:
		env.Error = e.Error()
	default:
		env.Error = http.StatusText(http.StatusInternalServerError)
	}
	return env
}

// writeError renders an APIError outside of huma, for middleware.
func writeError(w http.ResponseWriter, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.status)
	//nolint:errcheck // nothing useful to do if the client went away
	_ = json.NewEncoder(w).Encode(errorEnvelope(apiErr))
}
