package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

// txStub runs the closure directly. The fakes are their own source of
// truth, there is nothing to commit or roll back.
type txStub struct{}

func (txStub) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// routeLedger mimics the conditional seat updates of the postgres repo.
type routeLedger struct {
	mu     sync.Mutex
	routes map[uuid.UUID]*models.Route
}

func newRouteLedger(routes ...*models.Route) *routeLedger {
	l := &routeLedger{routes: make(map[uuid.UUID]*models.Route)}
	for _, r := range routes {
		l.routes[r.ID] = r
	}
	return l
}

func (l *routeLedger) Get(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.routes[routeID]
	if !ok {
		return nil, types.ErrRouteNotFound
	}
	cp := *r
	return &cp, nil
}

func (l *routeLedger) ReserveSeats(ctx context.Context, routeID uuid.UUID, seats int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.routes[routeID]
	if !ok {
		return types.ErrRouteNotFound
	}
	if r.Status != types.RouteUpcoming || r.SeatsLeft < seats {
		return types.ErrSeatsUnavailable
	}
	r.SeatsLeft -= seats
	return nil
}

func (l *routeLedger) RestoreSeats(ctx context.Context, routeID uuid.UUID, seats int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.routes[routeID]
	if !ok {
		return types.ErrRouteNotFound
	}
	r.SeatsLeft += seats
	if r.SeatsLeft > r.SeatsTotal {
		r.SeatsLeft = r.SeatsTotal
	}
	return nil
}

func (l *routeLedger) AdjustSeats(ctx context.Context, routeID uuid.UUID, delta int) error {
	switch {
	case delta > 0:
		return l.ReserveSeats(ctx, routeID, delta)
	case delta < 0:
		return l.RestoreSeats(ctx, routeID, -delta)
	}
	return nil
}

func (l *routeLedger) seatsLeft(routeID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.routes[routeID].SeatsLeft
}

// bookingStore mirrors the guarded status updates of the postgres repo:
// every transition pins the expected current status.
type bookingStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Booking

	// viewRoute stands in for the joined route row in ListByPassenger.
	viewRoute models.Route
}

func newBookingStore() *bookingStore {
	return &bookingStore{byID: make(map[uuid.UUID]*models.Booking)}
}

func (s *bookingStore) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *booking
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	s.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *bookingStore) CountByDate(ctx context.Context, date time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID), nil
}

func (s *bookingStore) Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[bookingID]
	if !ok {
		return nil, types.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *bookingStore) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]models.PassengerBookingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views []models.PassengerBookingView
	for _, b := range s.byID {
		if b.PassengerID == passengerID {
			views = append(views, models.PassengerBookingView{Booking: *b, Route: s.viewRoute})
		}
	}
	return views, nil
}

func (s *bookingStore) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to types.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[bookingID]
	if !ok {
		return types.ErrBookingNotFound
	}
	if b.Status != from {
		return types.ErrInvalidTransition
	}
	b.Status = to
	return nil
}

func (s *bookingStore) CancelActive(ctx context.Context, bookingID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[bookingID]
	if !ok {
		return types.ErrBookingNotFound
	}
	if b.Status != types.BookingPending && b.Status != types.BookingAccepted {
		return types.ErrBookingFinalized
	}
	b.Status = types.BookingCancelled
	return nil
}

func (s *bookingStore) UpdateSeats(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[booking.ID]
	if !ok {
		return types.ErrBookingNotFound
	}
	if b.Status != types.BookingPending {
		return types.ErrBookingNotPending
	}
	b.Seats = booking.Seats
	b.TotalFare = booking.TotalFare
	b.ServiceFee = booking.ServiceFee
	b.GrandTotal = booking.GrandTotal
	return nil
}

func (s *bookingStore) MarkPaid(ctx context.Context, bookingID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[bookingID]
	if !ok {
		return types.ErrBookingNotFound
	}
	if b.PaymentStatus != types.PaymentPending {
		return nil
	}
	b.PaymentStatus = types.PaymentPaid
	return nil
}

type profileStub struct {
	mu sync.Mutex

	// exists is consumed front to back; the last value repeats.
	exists []bool
	lookups int

	drivers  map[uuid.UUID]models.DriverProfile
	vehicles map[uuid.UUID]models.Vehicle

	driverQueries [][]uuid.UUID
}

func (p *profileStub) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookups++
	if len(p.exists) == 0 {
		return true, nil
	}
	v := p.exists[0]
	if len(p.exists) > 1 {
		p.exists = p.exists[1:]
	}
	return v, nil
}

func (p *profileStub) DriversByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.DriverProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.driverQueries = append(p.driverQueries, ids)
	out := make(map[uuid.UUID]models.DriverProfile)
	for _, id := range ids {
		if d, ok := p.drivers[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (p *profileStub) VehiclesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Vehicle, error) {
	out := make(map[uuid.UUID]models.Vehicle)
	for _, id := range ids {
		if v, ok := p.vehicles[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

type notifierSpy struct {
	mu        sync.Mutex
	requested []models.BookingRequestedMessage
	statuses  []models.BookingStatusMessage
}

func (n *notifierSpy) PublishBookingRequested(ctx context.Context, driverID uuid.UUID, msg models.BookingRequestedMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requested = append(n.requested, msg)
	return nil
}

func (n *notifierSpy) PublishBookingStatus(ctx context.Context, passengerID uuid.UUID, msg models.BookingStatusMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, msg)
	return nil
}

func (n *notifierSpy) statusCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.statuses)
}

type fixture struct {
	svc      *BookingService
	routes   *routeLedger
	bookings *bookingStore
	profiles *profileStub
	notify   *notifierSpy

	driver    *models.User
	passenger *models.User
	route     *models.Route
}

func newFixture(t *testing.T, seatsTotal int) *fixture {
	t.Helper()

	driver := &models.User{ID: uuid.New(), Role: types.RoleDriver}
	passenger := &models.User{ID: uuid.New(), Role: types.RolePassenger}

	route := &models.Route{
		ID:          uuid.New(),
		DriverID:    driver.ID,
		SeatsTotal:  seatsTotal,
		SeatsLeft:   seatsTotal,
		FarePerSeat: 500,
		Status:      types.RouteUpcoming,
	}

	routes := newRouteLedger(route)
	bookings := newBookingStore()
	profiles := &profileStub{}
	notify := &notifierSpy{}

	svc := NewBookingService(
		bookings, routes, profiles, notify,
		Options{ServiceFeePercent: 5, UserRowAttempts: 3, UserRowDelay: time.Millisecond},
		logger.InitLogger("booking-test", logger.LevelError),
		txStub{},
	)

	return &fixture{
		svc:       svc,
		routes:    routes,
		bookings:  bookings,
		profiles:  profiles,
		notify:    notify,
		driver:    driver,
		passenger: passenger,
		route:     route,
	}
}

func asUser(u *models.User) context.Context {
	return models.WithUser(context.Background(), u)
}

func TestFareBreakdown(t *testing.T) {
	total, fee, grand := fareBreakdown(2, 500, 5)
	if total != 1000 || fee != 50 || grand != 1050 {
		t.Fatalf("got total=%d fee=%d grand=%d, want 1000/50/1050", total, fee, grand)
	}

	// Integer division truncates the fee.
	total, fee, grand = fareBreakdown(1, 333, 5)
	if total != 333 || fee != 16 || grand != 349 {
		t.Fatalf("got total=%d fee=%d grand=%d, want 333/16/349", total, fee, grand)
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 2, types.PaymentCash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != types.BookingPending {
		t.Errorf("status = %s, want PENDING", booking.Status)
	}
	if booking.TotalFare != 1000 || booking.ServiceFee != 50 || booking.GrandTotal != 1050 {
		t.Errorf("fares = %d/%d/%d, want 1000/50/1050", booking.TotalFare, booking.ServiceFee, booking.GrandTotal)
	}
	if !strings.HasPrefix(booking.BookingRef, "PR-") || !strings.HasSuffix(booking.BookingRef, "-001") {
		t.Errorf("booking ref %q does not match PR-<date>-001", booking.BookingRef)
	}
	if left := f.routes.seatsLeft(f.route.ID); left != 2 {
		t.Errorf("seats left = %d, want 2", left)
	}
	if len(f.notify.requested) != 1 {
		t.Fatalf("driver notifications = %d, want 1", len(f.notify.requested))
	}
	if f.notify.requested[0].BookingID != booking.ID {
		t.Errorf("notification carries booking %s, want %s", f.notify.requested[0].BookingID, booking.ID)
	}
}

func TestCreate_InsufficientSeats(t *testing.T) {
	f := newFixture(t, 4)

	if _, err := f.svc.Create(asUser(f.passenger), f.route.ID, 5, types.PaymentCash); !errors.Is(err, types.ErrSeatsUnavailable) {
		t.Fatalf("err = %v, want ErrSeatsUnavailable", err)
	}

	// Nothing committed: ledger untouched, no booking, no notification.
	if left := f.routes.seatsLeft(f.route.ID); left != 4 {
		t.Errorf("seats left = %d, want 4", left)
	}
	if len(f.bookings.byID) != 0 {
		t.Errorf("bookings stored = %d, want 0", len(f.bookings.byID))
	}
	if len(f.notify.requested) != 0 {
		t.Errorf("notifications = %d, want 0", len(f.notify.requested))
	}
}

func TestCreate_RouteNotBookable(t *testing.T) {
	f := newFixture(t, 4)
	f.routes.routes[f.route.ID].Status = types.RouteOngoing

	if _, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash); !errors.Is(err, types.ErrRouteNotBookable) {
		t.Fatalf("err = %v, want ErrRouteNotBookable", err)
	}
}

func TestCreate_Anonymous(t *testing.T) {
	f := newFixture(t, 4)

	ctx := models.WithUser(context.Background(), models.AnonymousUser)
	if _, err := f.svc.Create(ctx, f.route.ID, 1, types.PaymentCash); !errors.Is(err, types.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestCreate_WaitsForUserRow(t *testing.T) {
	f := newFixture(t, 4)
	f.profiles.exists = []bool{false, true}

	if _, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.profiles.lookups != 2 {
		t.Errorf("user lookups = %d, want 2", f.profiles.lookups)
	}
}

func TestCreate_UserRowNeverArrives(t *testing.T) {
	f := newFixture(t, 4)
	f.profiles.exists = []bool{false}

	if _, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash); err == nil {
		t.Fatal("expected error when user row never materialises")
	}
	if f.profiles.lookups != 3 {
		t.Errorf("user lookups = %d, want 3 (attempt budget)", f.profiles.lookups)
	}
}

func TestCreate_NoOversell(t *testing.T) {
	const seats = 3
	f := newFixture(t, seats)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			passenger := &models.User{ID: uuid.New(), Role: types.RolePassenger}
			_, err := f.svc.Create(asUser(passenger), f.route.ID, 1, types.PaymentCash)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, types.ErrSeatsUnavailable):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ok != seats {
		t.Errorf("successful bookings = %d, want %d", ok, seats)
	}
	if conflicts != 10-seats {
		t.Errorf("capacity conflicts = %d, want %d", conflicts, 10-seats)
	}
	if left := f.routes.seatsLeft(f.route.ID); left != 0 {
		t.Errorf("seats left = %d, want 0", left)
	}
}

func TestAcceptAndComplete(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 2, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	accepted, err := f.svc.Accept(asUser(f.driver), booking.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != types.BookingAccepted {
		t.Errorf("status = %s, want ACCEPTED", accepted.Status)
	}

	// PENDING -> COMPLETED is not a legal edge.
	other, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Complete(asUser(f.driver), other.ID); !errors.Is(err, types.ErrInvalidTransition) {
		t.Fatalf("complete pending: err = %v, want ErrInvalidTransition", err)
	}

	completed, err := f.svc.Complete(asUser(f.driver), booking.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != types.BookingCompleted {
		t.Errorf("status = %s, want COMPLETED", completed.Status)
	}

	// Completion does not give seats back.
	if left := f.routes.seatsLeft(f.route.ID); left != 1 {
		t.Errorf("seats left = %d, want 1", left)
	}
}

func TestAccept_NotRouteOwner(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := &models.User{ID: uuid.New(), Role: types.RoleDriver}
	if _, err := f.svc.Accept(asUser(stranger), booking.ID); !errors.Is(err, types.ErrNotRouteOwner) {
		t.Fatalf("err = %v, want ErrNotRouteOwner", err)
	}
}

func TestDecline_RestoresSeats(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 3, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if left := f.routes.seatsLeft(f.route.ID); left != 1 {
		t.Fatalf("seats left = %d, want 1", left)
	}

	declined, err := f.svc.Decline(asUser(f.driver), booking.ID)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != types.BookingCancelled {
		t.Errorf("status = %s, want CANCELLED", declined.Status)
	}
	if left := f.routes.seatsLeft(f.route.ID); left != 4 {
		t.Errorf("seats left = %d, want 4", left)
	}
	if f.notify.statusCount() != 1 {
		t.Errorf("status notifications = %d, want 1", f.notify.statusCount())
	}
}

func TestCancel_Idempotent(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 2, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Cancel(asUser(f.passenger), booking.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if left := f.routes.seatsLeft(f.route.ID); left != 4 {
		t.Fatalf("seats left after cancel = %d, want 4", left)
	}

	// Book the freed seats away, then cancel again: the no-op must not
	// credit the ledger a second time.
	if _, err := f.svc.Create(asUser(f.passenger), f.route.ID, 4, types.PaymentCash); err != nil {
		t.Fatalf("rebook: %v", err)
	}

	again, err := f.svc.Cancel(asUser(f.passenger), booking.ID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.Status != types.BookingCancelled {
		t.Errorf("status = %s, want CANCELLED", again.Status)
	}
	if left := f.routes.seatsLeft(f.route.ID); left != 0 {
		t.Errorf("seats left = %d, want 0 (double cancel must not restore twice)", left)
	}
	if f.notify.statusCount() != 1 {
		t.Errorf("status notifications = %d, want 1 (no-op cancel stays silent)", f.notify.statusCount())
	}
}

func TestCancel_ByDriver(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Cancel(asUser(f.driver), booking.ID); err != nil {
		t.Fatalf("driver cancel: %v", err)
	}
}

func TestCancel_Stranger(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := &models.User{ID: uuid.New(), Role: types.RolePassenger}
	if _, err := f.svc.Cancel(asUser(stranger), booking.ID); !errors.Is(err, types.ErrNotBookingOwner) {
		t.Fatalf("err = %v, want ErrNotBookingOwner", err)
	}
}

func TestCancel_Completed(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Accept(asUser(f.driver), booking.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.svc.Complete(asUser(f.driver), booking.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := f.svc.Cancel(asUser(f.passenger), booking.ID); !errors.Is(err, types.ErrBookingFinalized) {
		t.Fatalf("err = %v, want ErrBookingFinalized", err)
	}
}

func TestMarkPaid(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	paid, err := f.svc.MarkPaid(asUser(f.driver), booking.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.PaymentStatus != types.PaymentPaid {
		t.Errorf("payment status = %s, want PAID", paid.PaymentStatus)
	}

	// Second confirmation is a no-op, not an error, and announces nothing.
	before := f.notify.statusCount()
	if _, err := f.svc.MarkPaid(asUser(f.driver), booking.ID); err != nil {
		t.Fatalf("second mark paid: %v", err)
	}
	if got := f.notify.statusCount(); got != before {
		t.Errorf("status notifications = %d after no-op confirmation, want %d", got, before)
	}

	if _, err := f.svc.MarkPaid(asUser(f.passenger), booking.ID); !errors.Is(err, types.ErrNotRouteOwner) {
		t.Fatalf("passenger mark paid: err = %v, want ErrNotRouteOwner", err)
	}
}

func TestMarkPaid_Cancelled(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Cancel(asUser(f.passenger), booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.svc.MarkPaid(asUser(f.driver), booking.ID); !errors.Is(err, types.ErrBookingFinalized) {
		t.Fatalf("err = %v, want ErrBookingFinalized", err)
	}
}

func TestUpdateSeats_NetDelta(t *testing.T) {
	f := newFixture(t, 4)

	mine, err := f.svc.Create(asUser(f.passenger), f.route.ID, 2, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other := &models.User{ID: uuid.New(), Role: types.RolePassenger}
	if _, err := f.svc.Create(asUser(other), f.route.ID, 2, types.PaymentCash); err != nil {
		t.Fatalf("create other: %v", err)
	}

	// 0 seats left; growing 2 -> 5 needs 3 more.
	if _, err := f.svc.UpdateSeats(asUser(f.passenger), mine.ID, 5); !errors.Is(err, types.ErrSeatsUnavailable) {
		t.Fatalf("err = %v, want ErrSeatsUnavailable", err)
	}
	got, err := f.svc.Get(asUser(f.passenger), mine.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Seats != 2 {
		t.Errorf("seats = %d, want 2 after rejected edit", got.Seats)
	}

	// Shrinking 2 -> 1 frees one seat and reprices.
	updated, err := f.svc.UpdateSeats(asUser(f.passenger), mine.ID, 1)
	if err != nil {
		t.Fatalf("update seats: %v", err)
	}
	if updated.Seats != 1 {
		t.Errorf("seats = %d, want 1", updated.Seats)
	}
	if updated.TotalFare != 500 || updated.ServiceFee != 25 || updated.GrandTotal != 525 {
		t.Errorf("fares = %d/%d/%d, want 500/25/525", updated.TotalFare, updated.ServiceFee, updated.GrandTotal)
	}
	if left := f.routes.seatsLeft(f.route.ID); left != 1 {
		t.Errorf("seats left = %d, want 1", left)
	}
}

func TestUpdateSeats_NotPending(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Accept(asUser(f.driver), booking.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := f.svc.UpdateSeats(asUser(f.passenger), booking.ID, 2); !errors.Is(err, types.ErrBookingNotPending) {
		t.Fatalf("err = %v, want ErrBookingNotPending", err)
	}
}

func TestGet_Ownership(t *testing.T) {
	f := newFixture(t, 4)

	booking, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Get(asUser(f.passenger), booking.ID); err != nil {
		t.Errorf("passenger get: %v", err)
	}
	if _, err := f.svc.Get(asUser(f.driver), booking.ID); err != nil {
		t.Errorf("driver get: %v", err)
	}

	stranger := &models.User{ID: uuid.New(), Role: types.RolePassenger}
	if _, err := f.svc.Get(asUser(stranger), booking.ID); !errors.Is(err, types.ErrNotBookingOwner) {
		t.Errorf("stranger get: err = %v, want ErrNotBookingOwner", err)
	}
}

func TestListForPassenger_StitchesDriver(t *testing.T) {
	f := newFixture(t, 4)
	f.bookings.viewRoute = *f.route
	f.profiles.drivers = map[uuid.UUID]models.DriverProfile{
		f.driver.ID: {ID: f.driver.ID, Name: "Suresh"},
	}

	if _, err := f.svc.Create(asUser(f.passenger), f.route.ID, 1, types.PaymentCash); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Create(asUser(f.passenger), f.route.ID, 2, types.PaymentCash); err != nil {
		t.Fatalf("create: %v", err)
	}

	views, err := f.svc.ListForPassenger(asUser(f.passenger))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	for _, v := range views {
		if v.Driver.Name != "Suresh" {
			t.Errorf("driver name = %q, want Suresh", v.Driver.Name)
		}
	}

	// Both bookings share the driver: one batch lookup with one id.
	if len(f.profiles.driverQueries) != 1 || len(f.profiles.driverQueries[0]) != 1 {
		t.Errorf("driver queries = %v, want a single query with one id", f.profiles.driverQueries)
	}
}
