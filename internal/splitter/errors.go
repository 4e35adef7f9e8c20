package splitter

import "fmt"

// SplitError represents a failure while sending the chunks of a split message
type SplitError struct {
	Code    string
	Message string
	Details string
	Err     error
}

// Error implements the error interface
func (e *SplitError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the error of the chunk that failed
func (e *SplitError) Unwrap() error {
	return e.Err
}

// NewPartialSendFailure creates a new partial send failure error
func NewPartialSendFailure(partsSent, totalParts int, lastErr error) *SplitError {
	return &SplitError{
		Code:    "PARTIAL_SEND_FAILURE",
		Message: "message split partially sent before failure",
		Details: fmt.Sprintf("sent %d of %d parts, last error: %v", partsSent, totalParts, lastErr),
		Err:     lastErr,
	}
}

// NewAllPartsFailed creates a new all parts failed error
func NewAllPartsFailed(totalParts int, firstErr error) *SplitError {
	return &SplitError{
		Code:    "ALL_PARTS_FAILED",
		Message: "all parts of split message failed to send",
		Details: fmt.Sprintf("total parts: %d, first error: %v", totalParts, firstErr),
		Err:     firstErr,
	}
}
