// Package services defines the business logic for feedback submission, the
// dashboard aggregation pipeline, exports, and authentication. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrInvalidRating is returned when a submitted star rating is outside
	// the allowed 1..5 domain.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidRatingType is returned when a submitted sentiment label is
	// not one of loved, okay, not_good.
	ErrInvalidRatingType = errors.New("invalid rating type")

	// ErrInvalidCredentials is returned by sign-in when the email is
	// unknown or the password does not match. The two cases are
	// indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoSession is returned when a session token is absent, unknown, or
	// expired. A failed session probe is treated identically to no session.
	ErrNoSession = errors.New("no active session")
)
