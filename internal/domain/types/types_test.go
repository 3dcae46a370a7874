package types

import "testing"

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPending, BookingAccepted, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingAccepted, BookingCompleted, true},
		{BookingAccepted, BookingCancelled, true},
		{BookingAccepted, BookingPending, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingAccepted, false},
		{BookingCompleted, BookingCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if BookingPending.Terminal() || BookingAccepted.Terminal() {
		t.Error("active booking statuses must not be terminal")
	}
	if !BookingCancelled.Terminal() || !BookingCompleted.Terminal() {
		t.Error("CANCELLED and COMPLETED must be terminal")
	}

	if RouteUpcoming.Terminal() || RouteOngoing.Terminal() {
		t.Error("active route statuses must not be terminal")
	}
	if !RouteCompleted.Terminal() || !RouteCancelled.Terminal() {
		t.Error("COMPLETED and CANCELLED routes must be terminal")
	}
}
