package error

import (
	"fmt"
	"net/http"
)

// UpstreamNetworkError wraps a transport failure, timeout or non-2xx answer
// from any of the third-party APIs. Single attempt, no retries; the cause is
// kept for server-side logging only.
type upstreamNetworkError struct {
	message string
	cause   error
}

func UpstreamNetworkError(message string, cause error) error {
	return &upstreamNetworkError{message: message, cause: cause}
}

func (err *upstreamNetworkError) Error() string {
	if err.cause != nil {
		return fmt.Sprintf("%s: %v", err.message, err.cause)
	}
	return err.message
}

func (err *upstreamNetworkError) ErrCode() string {
	return "NETWORK_OR_UPSTREAM_ERROR"
}

func (err *upstreamNetworkError) StatusCode() int {
	return http.StatusBadGateway
}

func (err *upstreamNetworkError) Unwrap() error {
	return err.cause
}

// UpstreamProcessingError is returned when the video-resolution API answers
// with a non-success status; it carries the upstream-provided message when
// present so the workflow can show it to the user.
type UpstreamProcessingError string

func (err UpstreamProcessingError) Error() string {
	return string(err)
}

func (err UpstreamProcessingError) ErrCode() string {
	return "UPSTREAM_PROCESSING_FAILED"
}

func (err UpstreamProcessingError) StatusCode() int {
	return http.StatusBadGateway
}

// UpstreamFormatError is returned when an upstream body does not look like
// what we agreed on (e.g. an unlock link outside the configured prefix).
// This is a trust boundary, not a format validation.
type UpstreamFormatError string

func (err UpstreamFormatError) Error() string {
	return string(err)
}

func (err UpstreamFormatError) ErrCode() string {
	return "UNEXPECTED_UPSTREAM_FORMAT"
}

func (err UpstreamFormatError) StatusCode() int {
	return http.StatusBadGateway
}
