package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

// bookingServiceStub returns canned results per method.
type bookingServiceStub struct {
	booking *models.Booking
	err     error
}

func (s *bookingServiceStub) Create(ctx context.Context, routeID uuid.UUID, seats int, method types.PaymentMethod) (*models.Booking, error) {
	return s.booking, s.err
}
func (s *bookingServiceStub) Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.booking, s.err
}
func (s *bookingServiceStub) Accept(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.booking, s.err
}
func (s *bookingServiceStub) Decline(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.booking, s.err
}
func (s *bookingServiceStub) Cancel(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.booking, s.err
}
func (s *bookingServiceStub) Complete(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.booking, s.err
}
func (s *bookingServiceStub) MarkPaid(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.booking, s.err
}
func (s *bookingServiceStub) UpdateSeats(ctx context.Context, bookingID uuid.UUID, newSeats int) (*models.Booking, error) {
	return s.booking, s.err
}
func (s *bookingServiceStub) ListForPassenger(ctx context.Context) ([]models.PassengerBookingView, error) {
	return nil, s.err
}

func newBookingMux(svc BookingService) *http.ServeMux {
	h := NewBooking(svc, logger.InitLogger("handler-test", logger.LevelError))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /bookings", h.Create)
	mux.HandleFunc("POST /bookings/{booking_id}/accept", h.Accept)
	mux.HandleFunc("POST /bookings/{booking_id}/cancel", h.Cancel)
	return mux
}

func TestBookingCreate(t *testing.T) {
	want := &models.Booking{ID: uuid.New(), Status: types.BookingPending, BookingRef: "PR-20260828-001"}
	mux := newBookingMux(&bookingServiceStub{booking: want})

	body := fmt.Sprintf(`{"route_id": %q, "seats": 2, "payment_method": "CASH"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Booking.BookingRef != want.BookingRef {
		t.Errorf("booking ref = %q, want %q", resp.Booking.BookingRef, want.BookingRef)
	}
}

func TestBookingCreate_Validation(t *testing.T) {
	mux := newBookingMux(&bookingServiceStub{})

	body := `{"route_id": "nope", "seats": 0, "payment_method": "CARD"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body: %s", rec.Code, rec.Body)
	}
}

func TestBookingCreate_UnknownField(t *testing.T) {
	mux := newBookingMux(&bookingServiceStub{})

	body := fmt.Sprintf(`{"route_id": %q, "seats": 1, "payment_method": "CASH", "extra": true}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", rec.Code, rec.Body)
	}
}

func TestBookingCreate_CapacityConflict(t *testing.T) {
	mux := newBookingMux(&bookingServiceStub{err: types.ErrSeatsUnavailable})

	body := fmt.Sprintf(`{"route_id": %q, "seats": 3, "payment_method": "CASH"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body: %s", rec.Code, rec.Body)
	}
}

func TestBookingAccept_BadID(t *testing.T) {
	mux := newBookingMux(&bookingServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/bookings/not-a-uuid/accept", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", rec.Code, rec.Body)
	}
}

func TestBookingCancel_Finalized(t *testing.T) {
	mux := newBookingMux(&bookingServiceStub{err: types.ErrBookingFinalized})

	req := httptest.NewRequest(http.MethodPost, "/bookings/"+uuid.New().String()+"/cancel", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body: %s", rec.Code, rec.Body)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrNotAuthenticated, http.StatusUnauthorized},
		{types.ErrNotRouteOwner, http.StatusForbidden},
		{types.ErrNotBookingOwner, http.StatusForbidden},
		{types.ErrRouteNotFound, http.StatusNotFound},
		{types.ErrBookingNotFound, http.StatusNotFound},
		{types.ErrSeatsUnavailable, http.StatusConflict},
		{types.ErrRouteNotBookable, http.StatusConflict},
		{types.ErrInvalidTransition, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := GetCode(tt.err); got != tt.want {
			t.Errorf("GetCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
