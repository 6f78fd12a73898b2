package assistant

import "errors"

// ErrQuotaExceeded indicates the chat provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("assistant quota exceeded")

// ErrNotConfigured indicates no provider API key was configured.
var ErrNotConfigured = errors.New("assistant not configured")
