// File: internal/common/envelope.go
package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Envelope is the uniform wrapper around every backend response:
// {success, message, data, errors}.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    json.RawMessage     `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// DecodeEnvelope parses a raw response body into the envelope and classifies
// failures. The returned AppError is nil exactly when the envelope reports
// success on a non-error HTTP status.
//
// Message preference on failure: field-level validation errors > envelope
// message > raw error body > generic "operation failed (HTTP <code>)".
func DecodeEnvelope(statusCode int, body []byte) (*Envelope, *AppError) {
	if LooksLikeHTML(body) {
		return nil, NewAppError(KindServerMisconfigured, MsgServerMisconfigured).WithStatus(statusCode)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		raw := strings.TrimSpace(string(body))
		if raw == "" {
			raw = genericHTTPMessage(statusCode)
		}
		return nil, NewAppError(KindHTTPError, raw).WithStatus(statusCode)
	}

	if env.Success && statusCode < http.StatusBadRequest {
		return &env, nil
	}

	return &env, classifyEnvelopeFailure(statusCode, &env, body)
}

// DecodeData unmarshals the envelope's data payload into T. A missing or
// null data field on a success envelope is still a failure: the repository
// contract requires the payload to be present.
func DecodeData[T any](env *Envelope) (T, *AppError) {
	var out T
	if env == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return out, NewAppError(KindHTTPError, "Respons server tidak lengkap (data kosong).")
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, NewAppError(KindHTTPError, "Respons server tidak dapat dibaca.").WithDetails(err.Error())
	}
	return out, nil
}

func classifyEnvelopeFailure(statusCode int, env *Envelope, body []byte) *AppError {
	message := FormatFieldErrors(env.Errors)
	if message == "" {
		message = strings.TrimSpace(env.Message)
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = genericHTTPMessage(statusCode)
	}

	// Business-rule markers win over status-based classification: the backend
	// is not consistent about which 4xx it attaches to a rule rejection.
	var kind ErrorKind
	switch {
	case MatchesBusinessRule(env.Message):
		kind = KindBusinessRuleViolation
	case len(env.Errors) > 0 || statusCode == http.StatusUnprocessableEntity:
		kind = KindValidationFailed
	case statusCode == http.StatusUnauthorized:
		kind = KindUnauthenticated
	case statusCode == http.StatusNotFound:
		kind = KindNotFound
	default:
		kind = KindHTTPError
	}

	return NewAppError(kind, message).WithStatus(statusCode)
}

func genericHTTPMessage(statusCode int) string {
	return fmt.Sprintf("Operasi gagal (HTTP %d).", statusCode)
}
