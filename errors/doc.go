// Package errors provides the application error type shared by every layer:
// machine-readable codes, an HTTP status mapping, retryable detection, and
// the JSON envelope sent to clients.
package errors
