package errors

import (
	"crypto/tls"
	"crypto/x509"
	stderrors "errors"
	"fmt"
	"net"
	"os"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConnection indicates a dial or socket failure
	ErrorTypeConnection ErrorType = "Connection"

	// ErrorTypeTimeout indicates a read deadline expired
	ErrorTypeTimeout ErrorType = "Timeout"

	// ErrorTypeCertificate indicates the server certificate failed verification
	ErrorTypeCertificate ErrorType = "Certificate"

	// ErrorTypeProtocol indicates the server sent something we can't work with
	ErrorTypeProtocol ErrorType = "Protocol"

	// ErrorTypeHandler indicates a protocol handler failed
	ErrorTypeHandler ErrorType = "Handler"

	// ErrorTypeNotConnected indicates a write was attempted without a socket
	ErrorTypeNotConnected ErrorType = "NotConnected"
)

var (
	// ErrNotConnected is returned when sending on a closed connection
	ErrNotConnected = stderrors.New("not connected")

	// ErrMalformedLine is returned by the parser when a line has no command
	ErrMalformedLine = stderrors.New("malformed line")

	// ErrArity is returned when a handler receives fewer arguments than it needs
	ErrArity = stderrors.New("not enough arguments")
)

// ConnError is a typed failure raised by the connection layer
type ConnError struct {
	Type ErrorType
	Op   string // dial, tls, read, write, handler
	Err  error
}

// Error implements the error interface
func (e *ConnError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *ConnError) Unwrap() error {
	return e.Err
}

// New wraps err with a type and operation
func New(t ErrorType, op string, err error) *ConnError {
	return &ConnError{Type: t, Op: op, Err: err}
}

// NewHandlerError creates an error for a failed or panicking handler
func NewHandlerError(command string, err error) *ConnError {
	return &ConnError{Type: ErrorTypeHandler, Op: command, Err: err}
}

// NewArityError creates an error for a message with too few arguments
func NewArityError(command string, want, got int) *ConnError {
	return &ConnError{
		Type: ErrorTypeProtocol,
		Op:   command,
		Err:  fmt.Errorf("%w: want %d, got %d", ErrArity, want, got),
	}
}

// AsConnError attempts to convert an error to a ConnError
func AsConnError(err error) (*ConnError, bool) {
	var connErr *ConnError
	ok := stderrors.As(err, &connErr)
	return connErr, ok
}

// IsTimeout reports whether err is a read deadline expiry
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if connErr, ok := AsConnError(err); ok && connErr.Type == ErrorTypeTimeout {
		return true
	}
	if stderrors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// IsCertificate reports whether err comes from TLS certificate verification
func IsCertificate(err error) bool {
	if err == nil {
		return false
	}
	if connErr, ok := AsConnError(err); ok && connErr.Type == ErrorTypeCertificate {
		return true
	}
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		invalid          x509.CertificateInvalidError
		verification     *tls.CertificateVerificationError
	)
	return stderrors.As(err, &unknownAuthority) ||
		stderrors.As(err, &hostname) ||
		stderrors.As(err, &invalid) ||
		stderrors.As(err, &verification)
}

// Is forwards to the standard library so callers need only one errors import
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
