package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeProvisioning   = "BROWSER_PROVISIONING_FAILED"
	ErrCodeNavigation     = "NAVIGATION_FAILED"
	ErrCodeElementTimeout = "ELEMENT_TIMEOUT"
	ErrCodeExtraction     = "TABLE_EXTRACTION_FAILED"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
//
// Trace is only filled for the ErrCodeInternal fallback when the failure
// carries diagnostics that the wrapped chain cannot express (a recovered
// panic's stack, for instance).
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
	Trace   string
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// NewInternalError builds the catch-all variant with an explicit trace.
func NewInternalError(message string, err error, trace string) *ScrapeError {
	return &ScrapeError{Code: ErrCodeInternal, Message: message, Err: err, Trace: trace}
}

// AsScrapeError returns the first ScrapeError in err's chain, or wraps err
// in the ErrCodeInternal fallback.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewInternalError("unclassified scrape failure", err, "")
}

// ErrorChain lists err and everything it wraps, indenting each level.
func ErrorChain(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		fmt.Fprintf(&b, "%s%T: %v\n", strings.Repeat("  ", depth), err, err)
		err = errors.Unwrap(err)
	}
	return b.String()
}

// NewErrorResponse builds the 500 body for err. The traceback is the
// explicit Trace of the underlying ScrapeError (if any) followed by the
// full wrapped chain starting at err.
func NewErrorResponse(err error) ErrorResponse {
	se := AsScrapeError(err)

	var b strings.Builder
	if se.Trace != "" {
		b.WriteString(strings.TrimRight(se.Trace, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(ErrorChain(err))

	return ErrorResponse{
		Error:     "An error occurred: " + err.Error(),
		Code:      se.Code,
		Traceback: b.String(),
	}
}
