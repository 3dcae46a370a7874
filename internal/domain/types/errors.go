package types

import "errors"

var (
	// ErrSeatsUnavailable is the capacity conflict: the conditional seat
	// decrement matched no row because fewer seats were left than asked.
	// An expected outcome, not a system failure.
	ErrSeatsUnavailable = errors.New("seats no longer available")

	ErrRouteNotFound    = errors.New("route not found")
	ErrRouteNotBookable = errors.New("route is not open for booking")
	ErrRouteFinalized   = errors.New("route is completed or cancelled")

	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingFinalized  = errors.New("booking is already in a terminal state")
	ErrBookingNotPending = errors.New("booking is no longer pending")
	ErrInvalidTransition = errors.New("invalid booking status transition")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotRouteOwner    = errors.New("route belongs to another driver")
	ErrNotBookingOwner  = errors.New("booking belongs to another passenger")

	ErrNoLocation = errors.New("no position reported for this trip yet")

	ErrNotFound = errors.New("requested item not found")
)
