// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes the symbolic error code constants mapped to HTTP
// responses via the `fail()` helper. The codes give clients a stable,
// machine-readable taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless noted.
//   - Generic codes mirror common HTTP status semantics.
//   - Domain-specific codes (submit_failed, no_data, export_failed) carry
//     business outcomes a status alone cannot convey.

package handlers

const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeRateLimited     = "too_many_requests"
	ErrCodeInternal        = "internal_error"
	ErrCodeUnauthenticated = "unauthenticated"

	// Domain-specific:
	ErrCodeSubmitFailed     = "submit_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeNoData           = "no_data"
	ErrCodeExportFailed     = "export_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
