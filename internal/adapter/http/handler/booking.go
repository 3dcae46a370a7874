package handler

import (
	"context"
	"net/http"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/http/handler/dto"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/validator"
)

type Booking struct {
	service BookingService
	l       logger.Logger
}

type BookingService interface {
	Create(ctx context.Context, routeID uuid.UUID, seats int, method types.PaymentMethod) (*models.Booking, error)
	Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	Accept(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	Decline(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	Complete(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	MarkPaid(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	UpdateSeats(ctx context.Context, bookingID uuid.UUID, newSeats int) (*models.Booking, error)
	ListForPassenger(ctx context.Context) ([]models.PassengerBookingView, error)
}

func NewBooking(service BookingService, l logger.Logger) *Booking {
	return &Booking{
		service: service,
		l:       l,
	}
}

// Create godoc
//
//	@Summary	Book seats on a route
//	@Tags		bookings
//	@Router		/bookings [post]
func (h *Booking) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_booking")

	var createReq dto.CreateBookingRequest
	if err := readJSON(w, r, &createReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	createReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	routeID, err := uuid.Parse(createReq.RouteID)
	if err != nil {
		badRequestResponse(w, "invalid route uuid format")
		return
	}
	ctx = wrap.WithRouteID(ctx, routeID.String())

	booking, err := h.service.Create(ctx, routeID, createReq.Seats, types.PaymentMethod(createReq.PaymentMethod))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create booking", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"booking": booking}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithBookingID(ctx, booking.ID.String()), "booking created successfully", "booking_ref", booking.BookingRef)
}

// Get godoc
//
//	@Summary	Get one booking
//	@Tags		bookings
//	@Router		/bookings/{booking_id} [get]
func (h *Booking) Get(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "get_booking", h.service.Get)
}

// List godoc
//
//	@Summary	List the caller's bookings with route, driver and vehicle
//	@Tags		bookings
//	@Router		/bookings [get]
func (h *Booking) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_passenger_bookings")

	views, err := h.service.ListForPassenger(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list bookings", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"bookings": views}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Accept godoc
//
//	@Summary	Driver accepts a pending booking
//	@Tags		bookings
//	@Router		/bookings/{booking_id}/accept [post]
func (h *Booking) Accept(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "accept_booking", h.service.Accept)
}

// Decline godoc
//
//	@Summary	Driver declines a pending booking, seats return to the ledger
//	@Tags		bookings
//	@Router		/bookings/{booking_id}/decline [post]
func (h *Booking) Decline(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "decline_booking", h.service.Decline)
}

// Cancel godoc
//
//	@Summary	Cancel an active booking
//	@Tags		bookings
//	@Router		/bookings/{booking_id}/cancel [post]
func (h *Booking) Cancel(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "cancel_booking", h.service.Cancel)
}

// Complete godoc
//
//	@Summary	Driver completes an accepted booking
//	@Tags		bookings
//	@Router		/bookings/{booking_id}/complete [post]
func (h *Booking) Complete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "complete_booking", h.service.Complete)
}

// MarkPaid godoc
//
//	@Summary	Driver confirms cash receipt
//	@Tags		bookings
//	@Router		/bookings/{booking_id}/paid [post]
func (h *Booking) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "mark_booking_paid", h.service.MarkPaid)
}

// UpdateSeats godoc
//
//	@Summary	Edit the seat count of a pending booking
//	@Tags		bookings
//	@Router		/bookings/{booking_id}/seats [patch]
func (h *Booking) UpdateSeats(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "update_booking_seats")

	bookingID, err := uuid.Parse(r.PathValue("booking_id"))
	if err != nil {
		badRequestResponse(w, "invalid booking uuid format")
		return
	}
	ctx = wrap.WithBookingID(ctx, bookingID.String())

	var seatsReq dto.UpdateSeatsRequest
	if err := readJSON(w, r, &seatsReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	seatsReq.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	booking, err := h.service.UpdateSeats(ctx, bookingID, seatsReq.Seats)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update booking seats", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"booking": booking}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "booking seats updated successfully", "seats", booking.Seats)
}

func (h *Booking) act(w http.ResponseWriter, r *http.Request, action string, op func(context.Context, uuid.UUID) (*models.Booking, error)) {
	ctx := wrap.WithAction(r.Context(), action)

	bookingID, err := uuid.Parse(r.PathValue("booking_id"))
	if err != nil {
		badRequestResponse(w, "invalid booking uuid format")
		return
	}
	ctx = wrap.WithBookingID(ctx, bookingID.String())

	booking, err := op(ctx, bookingID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "booking operation failed", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"booking": booking}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
