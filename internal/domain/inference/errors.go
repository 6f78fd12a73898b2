package inference

import "errors"

// ErrUnavailable indicates the inference service could not be reached
// (connection refused, timeout) or answered with a 5xx status.
var ErrUnavailable = errors.New("inference service unavailable")

// ErrInference indicates the service answered but the analysis itself failed
// (error field set, non-2xx status, malformed body).
var ErrInference = errors.New("inference failed")
