package errors

import (
	"github.com/yourusername/pesterlink/internal/output"
)

// ErrorHandler records connection failures to the terminal and the error log
type ErrorHandler struct {
	output *output.Output
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(output *output.Output) *ErrorHandler {
	return &ErrorHandler{
		output: output,
	}
}

// Handle logs a connection stop and returns the text to show the user
func (h *ErrorHandler) Handle(sessionID, reason string, err error) string {
	if reason == "" && err == nil {
		return ""
	}
	if reason == "" {
		reason = Describe(err)
	}
	h.output.LogStopReason(sessionID, reason, err)
	return reason
}

// Describe turns a connection error into a short human-readable stop reason
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if IsCertificate(err) {
		return "The server's certificate could not be verified."
	}
	if IsTimeout(err) {
		return "Connection timed out."
	}
	if Is(err, ErrNotConnected) {
		return "Not connected."
	}
	if connErr, ok := AsConnError(err); ok {
		switch connErr.Type {
		case ErrorTypeConnection:
			return "Could not connect: " + errText(connErr.Err)
		case ErrorTypeProtocol:
			return "Protocol error: " + errText(connErr.Err)
		}
	}
	return err.Error()
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
