// Package services defines the business logic for the course marketplace:
// catalog reads, checkout, entitlement grants, and progress tracking. This
// file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrCourseNotFound indicates that the referenced course does not exist.
	// It is always resolved before any entitlement check, so a request for a
	// nonexistent course never leaks whether anyone owns it.
	ErrCourseNotFound = errors.New("course not found")

	// ErrLessonNotFound indicates that the referenced lesson does not exist
	// or does not belong to the course named in the request.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrCourseNotPurchased is returned when a content or progress operation
	// is attempted without an entitlement for the course. Distinct from
	// ErrCourseNotFound, which is checked first.
	ErrCourseNotPurchased = errors.New("course not purchased")

	// ErrInvalidPrice is returned when a checkout session is requested for a
	// course whose price does not convert to a positive cent amount.
	ErrInvalidPrice = errors.New("invalid course price")
)
