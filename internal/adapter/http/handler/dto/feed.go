package dto

import (
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/validator"
)

const (
	StreamDriverRequests = "driver_requests"
	StreamBookingStatus  = "booking_status"
	StreamTripLocation   = "trip_location"
)

// FeedRequest is a client control message on the feed websocket:
// subscribe to or unsubscribe from one stream. Subscribing to a stream
// that is already active replaces it.
type FeedRequest struct {
	Action string `json:"action"` // subscribe | unsubscribe
	Stream string `json:"stream"`
	ID     string `json:"id"` // booking or trip id; unused for driver_requests
}

func (r *FeedRequest) Validate(v *validator.Validator) {
	v.Check(validator.PermittedValue(r.Action, "subscribe", "unsubscribe"), "action", "must be subscribe or unsubscribe")
	v.Check(validator.PermittedValue(r.Stream, StreamDriverRequests, StreamBookingStatus, StreamTripLocation), "stream", "unknown stream")

	if r.Stream == StreamBookingStatus || r.Stream == StreamTripLocation {
		v.Check(r.ID != "", "id", "must be provided")
		if r.ID != "" {
			_, err := uuid.Parse(r.ID)
			v.Check(err == nil, "id", "must be a valid UUID")
		}
	}
}
