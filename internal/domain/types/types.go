package types

// Route lifecycle. Cancellation is irreversible; COMPLETED and CANCELLED
// are terminal.
type RouteStatus string

const (
	RouteUpcoming  RouteStatus = "UPCOMING"
	RouteOngoing   RouteStatus = "ONGOING"
	RouteCompleted RouteStatus = "COMPLETED"
	RouteCancelled RouteStatus = "CANCELLED"
)

func (s RouteStatus) Terminal() bool {
	return s == RouteCompleted || s == RouteCancelled
}

// Booking lifecycle: PENDING -> {ACCEPTED, CANCELLED}; ACCEPTED -> {COMPLETED, CANCELLED}.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingAccepted  BookingStatus = "ACCEPTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// CanTransition reports whether the state machine allows s -> next.
// Payment status is orthogonal and not part of this check.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingAccepted || next == BookingCancelled
	case BookingAccepted:
		return next == BookingCompleted || next == BookingCancelled
	default:
		return false
	}
}

// Payment sub-state, independent of the booking status.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "CASH"
	PaymentOther PaymentMethod = "OTHER"
)

// Enum для роли пользователя
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RolePassenger UserRole = "PASSENGER"
	RoleDriver    UserRole = "DRIVER"
)

// Change-feed event kinds. The topic key scopes a subscription to one
// entity: a route (new booking requests), a booking (status changes),
// or a trip (position updates).
const (
	KindBookingRequested = "booking.requested"
	KindBookingStatus    = "booking.status"
	KindTripLocation     = "trip.location"
)
