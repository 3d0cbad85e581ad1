package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/adapters/postgres"
	"github.com/DanielPopoola/tourvista-payments/internal/adapters/postgres/testhelpers"
	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
	"github.com/DanielPopoola/tourvista-payments/internal/core/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	testDB       *testhelpers.TestDatabase
	store        *postgres.Store
	gateway      *service.MockGateway
	orchestrator *service.PaymentOrchestrator
	customerID   int64
}

func TestStoreSuite(t *testing.T) {
	if !testhelpers.IntegrationEnabled() {
		t.Skip("set RUN_INTEGRATION_TESTS=true to run postgres integration tests")
	}
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDatabase(s.T())
	s.store = postgres.NewStore(s.testDB.DB, s.testDB.Logger)
}

func (s *StoreTestSuite) TearDownSuite() {
	s.testDB.Cleanup(s.T())
}

func (s *StoreTestSuite) SetupTest() {
	s.gateway = &service.MockGateway{}
	s.orchestrator = service.NewPaymentOrchestrator(s.store, s.gateway, "INR", s.testDB.Logger)
	s.customerID = s.testDB.SeedCustomer(s.T(), "guest@example.com")
}

func (s *StoreTestSuite) TearDownTest() {
	s.testDB.CleanTables(s.T())
}

func (s *StoreTestSuite) createBooking(base, tax string) *domain.Booking {
	b, err := domain.NewBooking(s.customerID, 11, 2,
		decimal.RequireFromString(base), decimal.RequireFromString(tax), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Bookings().CreateBooking(context.Background(), b))
	return b
}

func (s *StoreTestSuite) TestBookingRoundTrip() {
	ctx := context.Background()
	b := s.createBooking("13500.50", "1499.50")

	got, err := s.store.Bookings().FindBookingByID(ctx, b.ID)
	s.Require().NoError(err)
	s.True(got.TotalAmount().Equal(decimal.RequireFromString("15000.00")))
	s.Equal(domain.BookingPending, got.Status)

	_, err = s.store.Bookings().FindBookingByID(ctx, b.ID+100)
	s.True(domain.IsErrorCode(err, domain.ErrCodeBookingNotFound))

	count, err := s.store.Bookings().CountBookings(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *StoreTestSuite) TestOrderToConfirmation() {
	ctx := context.Background()
	s.gateway.CreateRemoteOrderFn = func(ctx context.Context, minor int64, currency, receipt string) (string, error) {
		return "order_abc", nil
	}
	b := s.createBooking("15000.00", "0")

	order, err := s.orchestrator.CreateOrder(ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(int64(1500000), order.MinorAmount)

	p, err := s.orchestrator.ConfirmPayment(ctx, "order_abc", "pay_xyz", 1500000)
	s.Require().NoError(err)
	s.Equal(domain.StatusSuccess, p.Status)

	again, err := s.orchestrator.ConfirmPayment(ctx, "order_abc", "pay_xyz", 1500000)
	s.Require().NoError(err)
	s.Equal(p.ID, again.ID)

	stored, err := s.store.Payments().FindByTransactionRef(ctx, "pay_xyz")
	s.Require().NoError(err)
	s.Equal("order_abc", stored.GatewayOrderID)
	s.True(stored.Amount.Equal(b.TotalAmount()))

	booking, err := s.store.Bookings().FindBookingByID(ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.BookingConfirmed, booking.Status)

	var claimed []*domain.OutboxEvent
	err = s.store.WithTx(ctx, func(tx ports.Store) error {
		var err error
		claimed, err = tx.Outbox().ClaimPendingEvents(ctx, 10)
		return err
	})
	s.Require().NoError(err)
	s.Require().Len(claimed, 1)
	payload, err := claimed[0].BookingConfirmed()
	s.Require().NoError(err)
	s.Equal(b.ID, payload.BookingID)

	_, err = s.orchestrator.CreateOrder(ctx, b.ID)
	s.True(domain.IsErrorCode(err, domain.ErrCodePaymentAlreadyCompleted))
}

func (s *StoreTestSuite) TestAmountMismatchLeavesPaymentInitiated() {
	ctx := context.Background()
	b := s.createBooking("10000.00", "1500.00")

	order, err := s.orchestrator.CreateOrder(ctx, b.ID)
	s.Require().NoError(err)

	_, err = s.orchestrator.ConfirmPayment(ctx, order.TransactionRef, "pay_1", 1149900)
	s.True(domain.IsErrorCode(err, domain.ErrCodeAmountMismatch))

	p, err := s.store.Payments().FindByTransactionRef(ctx, order.TransactionRef)
	s.Require().NoError(err)
	s.Equal(domain.StatusInitiated, p.Status)
}

func (s *StoreTestSuite) TestConcurrentCreateOrderSingleGatewayCall() {
	ctx := context.Background()
	s.gateway.Delay = 100 * time.Millisecond
	b := s.createBooking("2500.00", "0")

	var wg sync.WaitGroup
	refs := make(chan string, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.orchestrator.CreateOrder(ctx, b.ID)
			if assert.NoError(s.T(), err) {
				refs <- res.TransactionRef
			}
		}()
	}
	wg.Wait()
	close(refs)

	unique := map[string]struct{}{}
	for r := range refs {
		unique[r] = struct{}{}
	}
	s.Len(unique, 1)
	s.Equal(1, s.gateway.GetCalls("CreateRemoteOrder"))
}

func (s *StoreTestSuite) TestSecondSuccessRejectedByIndex() {
	ctx := context.Background()
	b := s.createBooking("100.00", "0")

	first, err := domain.NewPayment(b.ID, "order_1", b.TotalAmount(), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(first.Confirm("pay_1", 10000, time.Now()))
	s.Require().NoError(s.store.Payments().CreatePayment(ctx, first))

	second, err := domain.NewPayment(b.ID, "order_2", b.TotalAmount(), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(second.Confirm("pay_2", 10000, time.Now()))
	err = s.store.Payments().CreatePayment(ctx, second)

	s.True(domain.IsErrorCode(err, domain.ErrCodePaymentAlreadyCompleted))
}

func (s *StoreTestSuite) TestFindIntegrityGaps() {
	ctx := context.Background()
	b := s.createBooking("100.00", "0")

	p, err := domain.NewPayment(b.ID, "order_gap", b.TotalAmount(), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(p.Confirm("pay_gap", 10000, time.Now()))
	s.Require().NoError(s.store.Payments().CreatePayment(ctx, p))

	gaps, err := s.store.Payments().FindIntegrityGaps(ctx, 10)
	s.Require().NoError(err)
	require.Len(s.T(), gaps, 1)
	s.Equal(b.ID, gaps[0].BookingID)
	s.Equal("pay_gap", gaps[0].TransactionRef)
}

func (s *StoreTestSuite) TestPassengers() {
	ctx := context.Background()
	b := s.createBooking("1000.00", "0")
	svc := service.NewPassengerService(s.store, s.testDB.Logger)

	infant, err := svc.AddPassenger(ctx, service.AddPassengerCommand{
		BookingID: b.ID,
		Name:      "Mira",
		Birthdate: time.Now().AddDate(0, -6, 0),
		Amount:    decimal.Zero,
	})
	s.Require().NoError(err)
	s.Equal(domain.PaxInfant, infant.Type)

	_, err = svc.AddPassenger(ctx, service.AddPassengerCommand{
		BookingID: b.ID,
		Name:      "Asha",
		Birthdate: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.RequireFromString("1000.00"),
	})
	s.Require().NoError(err)

	_, err = svc.AddPassenger(ctx, service.AddPassengerCommand{
		BookingID: b.ID,
		Name:      "One Too Many",
		Birthdate: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.Zero,
	})
	s.True(domain.IsErrorCode(err, domain.ErrCodePassengerLimitReached))

	list, err := s.store.Passengers().ListPassengersByBooking(ctx, b.ID)
	s.Require().NoError(err)
	require.Len(s.T(), list, 2)
	s.Equal("Mira", list[0].Name)
	s.True(list[1].Amount.Equal(decimal.RequireFromString("1000")))

	got, err := s.store.Passengers().FindPassengerByID(ctx, infant.ID)
	s.Require().NoError(err)
	s.Equal(b.ID, got.BookingID)

	_, err = s.store.Passengers().FindPassengerByID(ctx, 999999)
	s.True(domain.IsErrorCode(err, domain.ErrCodePassengerNotFound))
}
