// internal/errors/types.go - Error taxonomy for fetching, extraction and input handling
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies an error for batch handling, HTTP mapping and exit codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindHTTPStatus
	KindExtractionMiss
	KindInput
	KindCanceled
	KindConfig
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindExtractionMiss:
		return "extraction_miss"
	case KindInput:
		return "input"
	case KindCanceled:
		return "canceled"
	case KindConfig:
		return "config"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// ErrPriceNotFound is returned when no extraction strategy produced a candidate.
var ErrPriceNotFound = stderrors.New("no price found with any detection strategy")

// ErrEmptyBatch is returned when a batch contains no products.
var ErrEmptyBatch = &InputError{Field: "products", Message: "products must be a non-empty array"}

// HTTPError is a non-2xx response from a product page.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	text := e.Status
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, text)
}

// TimeoutError means the page did not respond within the fetch timeout.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.Timeout)
}

// NetworkError wraps DNS, connection and TLS failures.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// InputError is a malformed request rejected before any fetch.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// NewInputError builds an InputError for field.
func NewInputError(field, format string, args ...interface{}) *InputError {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BatchSizeError is returned when a batch exceeds the configured maximum.
type BatchSizeError struct {
	Size int
	Max  int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("batch of %d products exceeds the maximum of %d", e.Size, e.Max)
}

// ConfigError is a configuration that could not be read, parsed or validated.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// OutputError is a failure writing results to their destination.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, looking through wrapped errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var (
		httpErr    *HTTPError
		timeoutErr *TimeoutError
		netErr     *NetworkError
		inputErr   *InputError
		sizeErr    *BatchSizeError
		configErr  *ConfigError
		outputErr  *OutputError
	)

	switch {
	case stderrors.As(err, &configErr):
		return KindConfig
	case stderrors.As(err, &outputErr):
		return KindOutput
	case stderrors.Is(err, ErrPriceNotFound):
		return KindExtractionMiss
	case stderrors.As(err, &timeoutErr), stderrors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case stderrors.As(err, &httpErr):
		return KindHTTPStatus
	case stderrors.As(err, &netErr):
		return KindNetwork
	case stderrors.As(err, &inputErr), stderrors.As(err, &sizeErr):
		return KindInput
	case stderrors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindUnknown
}

// IsInput reports whether err should be answered with a 400.
func IsInput(err error) bool {
	return KindOf(err) == KindInput
}

// IsRetryable reports whether a transport error is worth another attempt.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindNetwork:
		return true
	case KindHTTPStatus:
		var httpErr *HTTPError
		stderrors.As(err, &httpErr)
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return false
}

// HTTPStatus maps err to the status code the API answers with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if IsInput(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// StatusCode returns the upstream status of an HTTPError, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// Is and As re-export the standard library helpers so callers need only one import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }
