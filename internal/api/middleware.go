package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped only on breaking envelope changes.
const envelopeVersion = 1

// Envelope is the consistent JSON shape every API response uses.
type Envelope struct {
	V       int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload on success"`
	Error   any    `json:"error,omitempty" doc:"Error message or object on failure"`
	Code    string `json:"code,omitempty" doc:"Machine-readable error code on failure"`
}

// EnvelopeTransformer wraps every response body, success or error, in the
// shared envelope so view clients parse one shape.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		env := &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
		}
		if apiErr.Details != nil {
			// Detailed errors carry the full object instead of a string.
			env.Error = apiErr
		}
		return env, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: strings.HasPrefix(status, "2"),
		Data:    v,
	}, nil
}
