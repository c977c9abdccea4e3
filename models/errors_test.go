package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsScrapeError_FindsWrapped(t *testing.T) {
	inner := NewScrapeError(ErrCodeElementTimeout, "expand control never became clickable", context.DeadlineExceeded)
	wrapped := fmt.Errorf("balance sheet: %w", inner)

	se := AsScrapeError(wrapped)

	assert.Same(t, inner, se)
	assert.True(t, errors.Is(se, context.DeadlineExceeded))
}

func TestAsScrapeError_FallsBackToInternal(t *testing.T) {
	se := AsScrapeError(errors.New("boom"))

	assert.Equal(t, ErrCodeInternal, se.Code)
	assert.EqualError(t, se.Err, "boom")
}

func TestNewErrorResponse_IncludesTraceAndChain(t *testing.T) {
	se := NewInternalError("panic during extraction", errors.New("nil element"), "goroutine 7 [running]:\nmain.go:12\n")
	wrapped := fmt.Errorf("cash_flow: %w", se)

	resp := NewErrorResponse(wrapped)

	assert.Equal(t, ErrCodeInternal, resp.Code)
	assert.Equal(t, "An error occurred: cash_flow: INTERNAL_ERROR: panic during extraction: nil element", resp.Error)
	assert.True(t, strings.HasPrefix(resp.Traceback, "goroutine 7 [running]:\nmain.go:12\n"), resp.Traceback)
	assert.Contains(t, resp.Traceback, "*fmt.wrapError: cash_flow: INTERNAL_ERROR")
	assert.Contains(t, resp.Traceback, "  *models.ScrapeError: INTERNAL_ERROR: panic during extraction: nil element")
	assert.Contains(t, resp.Traceback, "    *errors.errorString: nil element")
}

func TestNewErrorResponse_Provisioning(t *testing.T) {
	se := NewScrapeError(ErrCodeProvisioning, "failed to launch browser", errors.New("exec: chrome not found"))

	resp := NewErrorResponse(se)

	require.NotEmpty(t, resp.Traceback)
	assert.Equal(t, ErrCodeProvisioning, resp.Code)
	assert.Equal(t, "An error occurred: BROWSER_PROVISIONING_FAILED: failed to launch browser: exec: chrome not found", resp.Error)
}
