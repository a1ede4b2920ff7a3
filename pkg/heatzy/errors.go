package heatzy

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorKind represents the category of error that occurred
type ErrorKind int

const (
	// ErrKindNetwork indicates a transport-level failure (DNS, connection, timeout, TLS)
	ErrKindNetwork ErrorKind = iota
	// ErrKindAuth indicates the login endpoint rejected the request
	ErrKindAuth
	// ErrKindAPI indicates any other endpoint returned a non-2xx status
	ErrKindAPI
	// ErrKindNotFound indicates the target device does not exist
	ErrKindNotFound
	// ErrKindInvalidMode indicates a mode value outside the six known modes
	ErrKindInvalidMode
	// ErrKindNoToken indicates an authenticated call was made without a token
	ErrKindNoToken
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
	NetworkErrorTLS
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrKindNetwork:
		return "Network error"
	case ErrKindAuth:
		return "Authentication failed"
	case ErrKindAPI:
		return "API error"
	case ErrKindNotFound:
		return "Not found"
	case ErrKindInvalidMode:
		return "Invalid mode"
	case ErrKindNoToken:
		return "No authentication token set"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is returned by every Client operation and by the mode decoders.
type Error struct {
	Kind           ErrorKind           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (Auth and API errors)
	Body           string              // Response body text (Auth and API errors)
	Value          string              // Offending value (InvalidMode errors)
	ValidValues    []string            // Accepted values (InvalidMode errors from CLI input)
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
}

// ErrNoToken is returned when an authenticated operation is attempted before
// a token has been installed. Compare with errors.Is.
var ErrNoToken = &Error{Kind: ErrKindNoToken}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Kind == ErrKindNoToken && e.Message == "" {
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches NoToken errors against ErrNoToken.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t == ErrNoToken && e.Kind == ErrKindNoToken
}

// ClassifyNetworkError wraps a transport error and records its subtype
func ClassifyNetworkError(err error) *Error {
	if err == nil {
		return nil
	}

	classified := &Error{
		Kind:           ErrKindNetwork,
		Message:        "network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var recordErr tls.RecordHeaderError

	switch {
	case os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded):
		classified.Message = "request timed out"
		classified.NetworkSubtype = NetworkErrorTimeout
	case errors.As(err, &dnsErr):
		classified.Message = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)
		classified.NetworkSubtype = NetworkErrorDNS
	case errors.As(err, &certErr), errors.As(err, &unknownAuthority),
		errors.As(err, &hostnameErr), errors.As(err, &recordErr):
		classified.Message = "TLS handshake failed"
		classified.NetworkSubtype = NetworkErrorTLS
	case errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED):
		classified.Message = "connection refused"
		classified.NetworkSubtype = NetworkErrorConnectionRefused
	case errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.EHOSTUNREACH):
		classified.Message = "host unreachable"
		classified.NetworkSubtype = NetworkErrorHostUnreachable
	case errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ENETUNREACH):
		classified.Message = "network unreachable"
		classified.NetworkSubtype = NetworkErrorNetworkUnreachable
	}

	return classified
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *Error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	classified := ClassifyNetworkError(err)
	if classified == nil {
		return &Error{Kind: ErrKindNetwork, Message: message}
	}
	if classified.NetworkSubtype == NetworkErrorGeneral {
		classified.Message = message
	} else {
		classified.Message = message + ": " + classified.Message
	}
	return classified
}

// NewAuthError creates an error for a rejected login
func NewAuthError(statusCode int, body string) *Error {
	return &Error{
		Kind:       ErrKindAuth,
		Message:    fmt.Sprintf("login failed with status %d: %s", statusCode, body),
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewAPIError creates an error for a non-2xx response from any endpoint but login
func NewAPIError(operation string, statusCode int, body string) *Error {
	return &Error{
		Kind:       ErrKindAPI,
		Message:    fmt.Sprintf("failed to %s with status %d: %s", operation, statusCode, body),
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewNotFoundError creates an error naming the missing device
func NewNotFoundError(message string) *Error {
	return &Error{
		Kind:       ErrKindNotFound,
		Message:    message,
		StatusCode: 404,
	}
}

// NewInvalidModeError creates an error for a mode value outside the known set
func NewInvalidModeError(value, message string, valid []string) *Error {
	return &Error{
		Kind:        ErrKindInvalidMode,
		Message:     message,
		Value:       value,
		ValidValues: valid,
	}
}

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func isKind(err error, kind ErrorKind) bool {
	k, ok := kindOf(err)
	return ok && k == kind
}

// IsNetworkError checks if an error is a transport-level error
func IsNetworkError(err error) bool { return isKind(err, ErrKindNetwork) }

// IsAuthError checks if an error is a login failure
func IsAuthError(err error) bool { return isKind(err, ErrKindAuth) }

// IsAPIError checks if an error is a non-2xx API response
func IsAPIError(err error) bool { return isKind(err, ErrKindAPI) }

// IsNotFoundError checks if an error is a missing device
func IsNotFoundError(err error) bool { return isKind(err, ErrKindNotFound) }

// IsInvalidModeError checks if an error is an invalid mode value
func IsInvalidModeError(err error) bool { return isKind(err, ErrKindInvalidMode) }

// IsNoTokenError checks if an error is a missing token
func IsNoTokenError(err error) bool { return isKind(err, ErrKindNoToken) }

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}

	switch e.Kind {
	case ErrKindNoToken:
		return strings.Join([]string{
			"No token is available.",
			"Troubleshooting:",
			"  • Run 'heatzy login -u <email> --save' to store a token",
			"  • Or pass --token / set HEATZY_TOKEN",
		}, "\n")

	case ErrKindAuth:
		return strings.Join([]string{
			"The Heatzy cloud rejected the credentials.",
			"Troubleshooting:",
			"  • Use the e-mail address and password of the Heatzy mobile app",
			"  • Check the account is not locked in the app",
		}, "\n")

	case ErrKindNotFound:
		return strings.Join([]string{
			"The device was not found on this account.",
			"Troubleshooting:",
			"  • Run 'heatzy devices' to list names and IDs",
			"  • Names are matched exactly, including case",
		}, "\n")

	case ErrKindInvalidMode:
		if len(e.ValidValues) > 0 {
			return "Names are case-insensitive; frost, comfort-minus-1 and comfort-minus-2 are also accepted."
		}
		return "The device reported a mode this client does not know."

	case ErrKindAPI:
		if e.StatusCode == 400 || e.StatusCode == 401 || e.StatusCode == 403 {
			return "The API refused the request. The token may have expired; log in again."
		}
		return fmt.Sprintf("The Heatzy API returned HTTP %d. Try again later.", e.StatusCode)

	case ErrKindNetwork:
		switch e.NetworkSubtype {
		case NetworkErrorTimeout:
			return "The Heatzy API did not respond in time. Check your connection and try again."
		case NetworkErrorDNS:
			return "Could not resolve the Heatzy API host. Check your DNS settings."
		case NetworkErrorTLS:
			return "TLS verification failed. Check the system clock and CA certificates."
		default:
			return "Could not reach the Heatzy API. Check your internet connection."
		}
	}
	return ""
}

// ShortErrorMessage returns a concise, user-friendly error message
func ShortErrorMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Kind {
	case ErrKindNetwork:
		switch e.NetworkSubtype {
		case NetworkErrorTimeout:
			return "Heatzy API not responding (timeout)"
		case NetworkErrorDNS:
			return "Cannot resolve Heatzy API host"
		case NetworkErrorTLS:
			return "TLS error talking to Heatzy API"
		default:
			return "Network error - check connection"
		}
	case ErrKindAuth:
		return "Authentication failed - check credentials"
	case ErrKindAPI:
		return fmt.Sprintf("API error (HTTP %d)", e.StatusCode)
	case ErrKindNoToken:
		return e.Kind.String()
	default:
		return e.Message
	}
}
