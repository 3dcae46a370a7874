package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/http/handler/dto"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/feed"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/metrics"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/validator"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/wshub"
)

const streamService = "stream"

// FeedSources builds a change-feed source per topic.
type FeedSources interface {
	DriverSource(driverID uuid.UUID) feed.Source
	PassengerSource(passengerID uuid.UUID) feed.Source
	TripSource(tripID uuid.UUID) feed.Source
}

// Stream serves the feed websocket. One connection is one session: it
// owns a subscription manager keyed by stream kind, so switching a
// screen's entity (booking Y to booking Z) replaces the old subscription
// instead of stacking a second one. Every subscribe answers with a
// synchronous snapshot before events start: streams begin at "now" and
// never replay history.
type Stream struct {
	hub     *wshub.ConnectionHub
	sources FeedSources

	routes    RouteService
	bookings  BookingService
	locations LocationService

	l logger.Logger
}

func NewStream(hub *wshub.ConnectionHub, sources FeedSources, routes RouteService, bookings BookingService, locations LocationService, l logger.Logger) *Stream {
	return &Stream{
		hub:       hub,
		sources:   sources,
		routes:    routes,
		bookings:  bookings,
		locations: locations,
		l:         l,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleFeed godoc
//
//	@Summary	Realtime feed websocket
//	@Tags		streams
//	@Router		/ws/feed [get]
func (h *Stream) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "feed_websocket")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to upgrade connection", err)
		return
	}

	conn := wshub.NewConn(ctx, user.ID, wsConn)
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register connection", err)
		conn.Close()
		return
	}

	metrics.WebSocketConnectionsGauge.WithLabelValues(streamService).Inc()
	defer metrics.WebSocketConnectionsGauge.WithLabelValues(streamService).Dec()

	mgr := feed.NewManager(h.l)
	defer func() {
		mgr.Close()
		metrics.ActiveSubscriptionsGauge.WithLabelValues(streamService).Set(0)
		// Remove, not Delete: a reconnect may already have displaced this
		// connection, and the replacement belongs to the new session.
		h.hub.Remove(conn)
	}()

	h.l.Info(ctx, "feed session opened")

	err = conn.Listen(func(msg any) error {
		raw, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		var req dto.FeedRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			h.sendError(conn, "malformed feed request")
			return nil
		}

		v := validator.New()
		req.Validate(v)
		if !v.Valid() {
			conn.SendJSON(envelope{"type": "error", "errors": v.Errors})
			return nil
		}

		switch req.Action {
		case "unsubscribe":
			mgr.Unsubscribe(req.Stream)
		case "subscribe":
			if err := h.subscribe(ctx, conn, mgr, user, req); err != nil {
				h.sendError(conn, err.Error())
			}
		}

		metrics.ActiveSubscriptionsGauge.WithLabelValues(streamService).Set(float64(mgr.Len()))
		return nil
	})
	if err != nil {
		h.l.Debug(ctx, "feed session closed", "reason", err.Error())
	}
}

func (h *Stream) subscribe(ctx context.Context, conn *wshub.Conn, mgr *feed.Manager, user *models.User, req dto.FeedRequest) error {
	switch req.Stream {
	case dto.StreamDriverRequests:
		if user.Role != types.RoleDriver {
			return types.ErrNotRouteOwner
		}

		// Snapshot first: the stream starts from now.
		views, err := h.routes.ActiveForDriver(ctx)
		if err != nil {
			return err
		}
		h.sendSnapshot(conn, req.Stream, views)

		return mgr.Subscribe(conn.Context(), req.Stream, h.sources.DriverSource(user.ID), h.deliver(conn, req.Stream, nil))

	case dto.StreamBookingStatus:
		bookingID, err := uuid.Parse(req.ID)
		if err != nil {
			return err
		}

		// Ownership is enforced by the booking read.
		booking, err := h.bookings.Get(ctx, bookingID)
		if err != nil {
			return err
		}
		h.sendSnapshot(conn, req.Stream, booking)

		// The passenger topic carries every booking of that passenger;
		// keep only the one this screen watches.
		filter := func(body json.RawMessage) bool {
			var probe struct {
				BookingID uuid.UUID `json:"booking_id"`
			}
			if err := json.Unmarshal(body, &probe); err != nil {
				return false
			}
			return probe.BookingID == bookingID
		}
		return mgr.Subscribe(conn.Context(), req.Stream, h.sources.PassengerSource(booking.PassengerID), h.deliver(conn, req.Stream, filter))

	case dto.StreamTripLocation:
		tripID, err := uuid.Parse(req.ID)
		if err != nil {
			return err
		}

		loc, err := h.locations.Latest(ctx, tripID)
		if err != nil {
			return err
		}
		h.sendSnapshot(conn, req.Stream, loc)

		return mgr.Subscribe(conn.Context(), req.Stream, h.sources.TripSource(tripID), h.deliver(conn, req.Stream, nil))
	}

	return nil
}

func (h *Stream) deliver(conn *wshub.Conn, stream string, filter func(json.RawMessage) bool) func(feed.Event) {
	return func(ev feed.Event) {
		if filter != nil && !filter(ev.Body) {
			return
		}
		msg := envelope{
			"type":   "event",
			"stream": stream,
			"kind":   ev.Kind,
			"data":   ev.Body,
			"at":     ev.At,
		}
		if err := conn.SendJSON(msg); err != nil {
			// Dead socket: end the whole session, Close cancels the
			// connection context and with it every subscription.
			conn.Close()
		}
	}
}

func (h *Stream) sendSnapshot(conn *wshub.Conn, stream string, data any) {
	conn.SendJSON(envelope{
		"type":   "snapshot",
		"stream": stream,
		"data":   data,
	})
}

func (h *Stream) sendError(conn *wshub.Conn, message string) {
	conn.SendJSON(envelope{"type": "error", "error": message})
}
