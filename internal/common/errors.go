// File: internal/common/errors.go
package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"syscall"
)

// ErrorKind classifies a failure into the category the UI reacts to.
type ErrorKind string

const (
	KindUnauthenticated       ErrorKind = "UNAUTHENTICATED"
	KindValidationFailed      ErrorKind = "VALIDATION_FAILED"
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindHTTPError             ErrorKind = "HTTP_ERROR"
	KindNetworkUnreachable    ErrorKind = "NETWORK_UNREACHABLE"
	KindConnectionRefused     ErrorKind = "CONNECTION_REFUSED"
	KindTimeout               ErrorKind = "TIMEOUT"
	KindServerMisconfigured   ErrorKind = "SERVER_MISCONFIGURED"
	KindBusinessRuleViolation ErrorKind = "BUSINESS_RULE_VIOLATION"
	KindCancelled             ErrorKind = "CANCELLED"
)

// AppError represents a standard structure for client-side errors.
// Message is always safe to show to the user.
type AppError struct {
	Kind       ErrorKind   `json:"kind"`
	StatusCode int         `json:"-"` // HTTP status where applicable, 0 otherwise
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("AppError: Kind=%s, StatusCode=%d, Message=%s", e.Kind, e.StatusCode, e.Message)
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// WithStatus returns a copy carrying the given HTTP status code.
func (e *AppError) WithStatus(statusCode int) *AppError {
	clone := *e
	clone.StatusCode = statusCode
	return &clone
}

// WithDetails returns a copy carrying extra diagnostic details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// Retryable reports whether the failure is a transient network condition
// the user may reasonably retry.
func (e *AppError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindNetworkUnreachable, KindConnectionRefused:
		return true
	}
	return false
}

// User-facing guidance strings. The backend and its users are Indonesian,
// so the canned messages are too.
const (
	MsgUnauthenticated     = "Sesi Anda telah berakhir. Silakan masuk kembali."
	MsgNetworkUnreachable  = "Tidak dapat terhubung ke server. Periksa koneksi internet Anda."
	MsgConnectionRefused   = "Server sedang tidak dapat dihubungi. Coba beberapa saat lagi."
	MsgTimeout             = "Permintaan melebihi batas waktu. Silakan coba lagi."
	MsgServerMisconfigured = "Terjadi kesalahan pada server. Periksa konfigurasi backend atau migrasi database."
)

var (
	ErrUnauthenticated = NewAppError(KindUnauthenticated, MsgUnauthenticated)
)

// UserMessage returns the user-facing message for an error: the AppError
// message when available, otherwise the error's own description.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := IsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// IsAppError unwraps err into an *AppError if possible.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Kind == kind
	}
	return false
}

// ClassifyTransportFault maps a transport-level failure (the error returned
// by the HTTP client itself, not an HTTP status) to an AppError. Typed checks
// run first; substring matching of the fault description is the best-effort
// fallback the wire contract forces on us. All call sites go through here;
// never match fault strings elsewhere.
func ClassifyTransportFault(err error) *AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return NewAppError(KindCancelled, "Permintaan dibatalkan.")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewAppError(KindTimeout, MsgTimeout)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewAppError(KindTimeout, MsgTimeout)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewAppError(KindNetworkUnreachable, MsgNetworkUnreachable)
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return NewAppError(KindConnectionRefused, MsgConnectionRefused)
	}
	if errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return NewAppError(KindNetworkUnreachable, MsgNetworkUnreachable)
	}

	desc := strings.ToLower(err.Error())
	switch {
	case strings.Contains(desc, "timeout"), strings.Contains(desc, "deadline exceeded"):
		return NewAppError(KindTimeout, MsgTimeout)
	case strings.Contains(desc, "no such host"), strings.Contains(desc, "network is unreachable"):
		return NewAppError(KindNetworkUnreachable, MsgNetworkUnreachable)
	case strings.Contains(desc, "connection refused"):
		return NewAppError(KindConnectionRefused, MsgConnectionRefused)
	}

	// Unrecognized fault: surface its own description.
	return NewAppError(KindHTTPError, err.Error())
}

// Backend marker substrings for the "cannot favorite your own product" class
// of rejections. The wire contract carries no structured code for these.
var businessRuleMarkers = []string{"tidak bisa", "produk sendiri"}

// MatchesBusinessRule reports whether a backend failure message represents a
// business-rule violation rather than a transient fault.
func MatchesBusinessRule(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range businessRuleMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// LooksLikeHTML reports whether an error body is an HTML document (a backend
// crash page) rather than the structured JSON envelope.
func LooksLikeHTML(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

// FormatFieldErrors joins per-field validation messages into the canonical
// display form: one "field: msg1, msg2" line per field, newline-separated.
// Fields are sorted so the output is stable.
func FormatFieldErrors(fieldErrors map[string][]string) string {
	if len(fieldErrors) == 0 {
		return ""
	}
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s", field, strings.Join(fieldErrors[field], ", ")))
	}
	return strings.Join(lines, "\n")
}
