package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
	"github.com/google/uuid"
)

// MockStore is an in-memory ports.Store. WithTx runs transactions one at a
// time and rolls back every write when fn fails.
type MockStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	bookings      map[int64]*domain.Booking
	payments      map[uuid.UUID]*domain.Payment
	customers     map[int64]*domain.Customer
	events        map[uuid.UUID]*domain.OutboxEvent
	passengers    map[int64]*domain.Passenger
	nextBookingID int64
	nextPaxID     int64

	CreatePaymentFn       func(ctx context.Context, payment *domain.Payment) error
	UpdatePaymentFn       func(ctx context.Context, payment *domain.Payment) error
	UpdateBookingStatusFn func(ctx context.Context, id int64, status domain.BookingStatus) error
	InsertEventFn         func(ctx context.Context, event *domain.OutboxEvent) error
	UpdateEventFn         func(ctx context.Context, event *domain.OutboxEvent) error
	FindIntegrityGapsFn   func(ctx context.Context, limit int) ([]*domain.IntegrityGap, error)
	WithTxFn              func(ctx context.Context, fn func(tx ports.Store) error) error
}

func NewMockStore() *MockStore {
	return &MockStore{
		bookings:   make(map[int64]*domain.Booking),
		payments:   make(map[uuid.UUID]*domain.Payment),
		customers:  make(map[int64]*domain.Customer),
		events:     make(map[uuid.UUID]*domain.OutboxEvent),
		passengers: make(map[int64]*domain.Passenger),
	}
}

func (m *MockStore) Bookings() ports.BookingRepository     { return m }
func (m *MockStore) Payments() ports.PaymentRepository     { return m }
func (m *MockStore) Customers() ports.CustomerRepository   { return m }
func (m *MockStore) Passengers() ports.PassengerRepository { return m }
func (m *MockStore) Outbox() ports.OutboxRepository        { return m }

func (m *MockStore) WithTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if m.WithTxFn != nil {
		return m.WithTxFn(ctx, fn)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type mockSnapshot struct {
	bookings   map[int64]*domain.Booking
	payments   map[uuid.UUID]*domain.Payment
	events     map[uuid.UUID]*domain.OutboxEvent
	passengers map[int64]*domain.Passenger
	nextID     int64
	nextPaxID  int64
}

func (m *MockStore) snapshot() mockSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := mockSnapshot{
		bookings:   make(map[int64]*domain.Booking, len(m.bookings)),
		payments:   make(map[uuid.UUID]*domain.Payment, len(m.payments)),
		events:     make(map[uuid.UUID]*domain.OutboxEvent, len(m.events)),
		passengers: make(map[int64]*domain.Passenger, len(m.passengers)),
		nextID:     m.nextBookingID,
		nextPaxID:  m.nextPaxID,
	}
	for k, v := range m.passengers {
		cp := *v
		s.passengers[k] = &cp
	}
	for k, v := range m.bookings {
		s.bookings[k] = cloneBooking(v)
	}
	for k, v := range m.payments {
		s.payments[k] = clonePayment(v)
	}
	for k, v := range m.events {
		s.events[k] = cloneEvent(v)
	}
	return s
}

func (m *MockStore) restore(s mockSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = s.bookings
	m.payments = s.payments
	m.events = s.events
	m.passengers = s.passengers
	m.nextBookingID = s.nextID
	m.nextPaxID = s.nextPaxID
}

// Seeding and inspection helpers for tests.

func (m *MockStore) AddCustomer(c *domain.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.customers[c.ID] = &cp
}

func (m *MockStore) AddBooking(b *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == 0 {
		m.nextBookingID++
		b.ID = m.nextBookingID
	} else if b.ID > m.nextBookingID {
		m.nextBookingID = b.ID
	}
	m.bookings[b.ID] = cloneBooking(b)
}

func (m *MockStore) AddPayment(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = clonePayment(p)
}

func (m *MockStore) AddEvent(e *domain.OutboxEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = cloneEvent(e)
}

func (m *MockStore) PaymentsForBooking(bookingID int64) []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *MockStore) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// BookingRepository

func (m *MockStore) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	m.AddBooking(booking)
	return nil
}

func (m *MockStore) FindBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	return nil, domain.NewBookingNotFoundError(id)
}

func (m *MockStore) FindBookingByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.FindBookingByID(ctx, id)
}

func (m *MockStore) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	if m.UpdateBookingStatusFn != nil {
		return m.UpdateBookingStatusFn(ctx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return domain.NewBookingNotFoundError(id)
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}

func (m *MockStore) CountBookings(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.bookings)), nil
}

// PaymentRepository

func (m *MockStore) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	if m.CreatePaymentFn != nil {
		return m.CreatePaymentFn(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TransactionRef == payment.TransactionRef {
			return domain.NewDuplicateTransactionRefError(payment.TransactionRef, nil)
		}
	}
	m.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (m *MockStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		return clonePayment(p), nil
	}
	return nil, domain.NewPaymentNotFoundError(id.String())
}

func (m *MockStore) FindByTransactionRef(ctx context.Context, ref string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.TransactionRef == ref {
			return clonePayment(p), nil
		}
	}
	return nil, domain.NewPaymentNotFoundError(ref)
}

func (m *MockStore) FindByOrderRefForUpdate(ctx context.Context, orderRef string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.GatewayOrderID == orderRef || p.TransactionRef == orderRef {
			return clonePayment(p), nil
		}
	}
	return nil, domain.NewPaymentNotFoundError(orderRef)
}

func (m *MockStore) FindByBookingAndStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.BookingID == bookingID && p.Status == status {
			return clonePayment(p), nil
		}
	}
	return nil, domain.NewPaymentNotFoundError(fmt.Sprintf("for booking %d with status %s", bookingID, status))
}

func (m *MockStore) ExistsByBookingAndStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) (bool, error) {
	_, err := m.FindByBookingAndStatus(ctx, bookingID, status)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MockStore) UpdatePayment(ctx context.Context, payment *domain.Payment) error {
	if m.UpdatePaymentFn != nil {
		return m.UpdatePaymentFn(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.ID]; !ok {
		return domain.NewPaymentNotFoundError(payment.ID.String())
	}
	m.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (m *MockStore) FindIntegrityGaps(ctx context.Context, limit int) ([]*domain.IntegrityGap, error) {
	if m.FindIntegrityGapsFn != nil {
		return m.FindIntegrityGapsFn(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var gaps []*domain.IntegrityGap
	for _, p := range m.payments {
		if p.Status != domain.StatusSuccess {
			continue
		}
		b, ok := m.bookings[p.BookingID]
		if !ok || b.Status == domain.BookingConfirmed {
			continue
		}
		gaps = append(gaps, &domain.IntegrityGap{
			BookingID:      b.ID,
			BookingStatus:  b.Status,
			PaymentID:      p.ID,
			TransactionRef: p.TransactionRef,
			PaidAt:         p.PaidAt,
		})
		if len(gaps) == limit {
			break
		}
	}
	return gaps, nil
}

// CustomerRepository

func (m *MockStore) FindCustomerByID(ctx context.Context, id int64) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.customers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.NewCustomerNotFoundError(id)
}

// OutboxRepository

func (m *MockStore) CreatePassenger(ctx context.Context, p *domain.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPaxID++
	p.ID = m.nextPaxID
	cp := *p
	m.passengers[p.ID] = &cp
	return nil
}

func (m *MockStore) FindPassengerByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.passengers[id]
	if !ok {
		return nil, domain.NewPassengerNotFoundError(id)
	}
	cp := *p
	return &cp, nil
}

func (m *MockStore) ListPassengersByBooking(ctx context.Context, bookingID int64) ([]*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.Passenger{}
	for _, p := range m.passengers {
		if p.BookingID == bookingID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockStore) InsertEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if m.InsertEventFn != nil {
		return m.InsertEventFn(ctx, event)
	}
	m.AddEvent(event)
	return nil
}

func (m *MockStore) ClaimPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	var due []*domain.OutboxEvent
	for _, e := range m.events {
		if e.Status == domain.OutboxPending && !e.NextAttemptAt.After(now) {
			due = append(due, cloneEvent(e))
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *MockStore) UpdateEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if m.UpdateEventFn != nil {
		return m.UpdateEventFn(ctx, event)
	}
	m.AddEvent(event)
	return nil
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	cp := *b
	return &cp
}

func clonePayment(p *domain.Payment) *domain.Payment {
	cp := *p
	return &cp
}

func cloneEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	cp := *e
	return &cp
}

// MockGateway
type MockGateway struct {
	mu    sync.Mutex
	calls map[string]int
	seq   int
	Delay time.Duration

	CreateRemoteOrderFn func(ctx context.Context, minorAmount int64, currency, receipt string) (string, error)
	VerifySignatureFn   func(payload []byte, signature string) bool
	ParseWebhookEventFn func(payload []byte) (*domain.WebhookEvent, error)
}

func (m *MockGateway) inc(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
	return m.calls[method]
}

func (m *MockGateway) GetCalls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockGateway) CreateRemoteOrder(ctx context.Context, minorAmount int64, currency, receipt string) (string, error) {
	n := m.inc("CreateRemoteOrder")
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.CreateRemoteOrderFn != nil {
		return m.CreateRemoteOrderFn(ctx, minorAmount, currency, receipt)
	}
	return fmt.Sprintf("order_%d", n), nil
}

func (m *MockGateway) VerifySignature(payload []byte, signature string) bool {
	m.inc("VerifySignature")
	if m.VerifySignatureFn != nil {
		return m.VerifySignatureFn(payload, signature)
	}
	return true
}

func (m *MockGateway) ParseWebhookEvent(payload []byte) (*domain.WebhookEvent, error) {
	m.inc("ParseWebhookEvent")
	if m.ParseWebhookEventFn != nil {
		return m.ParseWebhookEventFn(payload)
	}
	return nil, domain.NewMalformedWebhookError("no webhook parser configured", nil)
}

// MockNotifier
type MockNotifier struct {
	mu      sync.Mutex
	Notices []ports.ConfirmationNotice
	Err     error
}

func (m *MockNotifier) NotifyBookingConfirmed(ctx context.Context, notice ports.ConfirmationNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Notices = append(m.Notices, notice)
	return nil
}

func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notices)
}

// MockPublisher
type MockPublisher struct {
	mu        sync.Mutex
	Published []*domain.OutboxEvent
	Err       error
}

func (m *MockPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, event)
	return nil
}

// MockInvoiceRenderer
type MockInvoiceRenderer struct {
	RenderFn func(ctx context.Context, paymentID uuid.UUID) ([]byte, error)
}

func (m *MockInvoiceRenderer) Render(ctx context.Context, paymentID uuid.UUID) ([]byte, error) {
	if m.RenderFn != nil {
		return m.RenderFn(ctx, paymentID)
	}
	return []byte("%PDF-1.3 mock"), nil
}
