//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"booking-core/internal/domain/resource"
	"booking-core/internal/infra/memstore"
	"booking-core/internal/pkg/clock"
	"booking-core/internal/pkg/config"
	"booking-core/internal/usecase/commands"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// env wires the command layer against the in-memory backend, which mirrors
// the transactional semantics of the database one.
type env struct {
	store   *memstore.Store
	clock   *clock.MockClock
	uow     shared.UnitOfWork
	reads   *memstore.ReadStore
	gateway shared.RedemptionGateway
	logger  *slog.Logger
}

func newEnv() *env {
	clk := clock.NewMockClock(testNow)
	store := memstore.New(clk)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &env{
		store:   store,
		clock:   clk,
		uow:     memstore.NewUoW(store, logger),
		reads:   memstore.NewReadStore(store, logger),
		gateway: memstore.NewGateway(store, logger),
		logger:  logger,
	}
}

func (e *env) reservationCommands() commands.ReservationCommands {
	return commands.NewReservationCommands(e.uow, e.clock)
}

func (e *env) resourceCommands() commands.ResourceCommands {
	return commands.NewResourceCommands(e.uow, e.clock)
}

func (e *env) orderCommands() commands.OrderCommands {
	return commands.NewOrderCommands(e.uow)
}

func (e *env) checkoutCommands(continueOnError bool) commands.CheckoutCommands {
	return commands.NewCheckoutCommands(e.uow, e.reads, e.gateway, e.clock, e.logger, config.CheckoutConfig{
		ContinueOnInstrumentError: continueOnError,
	})
}

func (e *env) seedResource(t *testing.T, capacity int) uuid.UUID {
	t.Helper()
	res, err := e.resourceCommands().CreateResource(context.Background(), commands.CreateResourceParams{
		Name:     "Conference Room",
		Capacity: capacity,
	})
	require.NoError(t, err)
	return res.ID()
}

func (e *env) seedUnofferableResource(t *testing.T) uuid.UUID {
	t.Helper()
	entity := resource.ReconstructResource(uuid.New(), "Closed Room", 10, resource.StatusMaintenance, testNow, testNow)
	err := e.uow.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Resources().Create(ctx, entity)
	})
	require.NoError(t, err)
	return entity.ID()
}

func (e *env) seedOrder(t *testing.T, userID uuid.UUID) uuid.UUID {
	t.Helper()
	ord, err := e.orderCommands().CreateOrder(context.Background(), commands.CreateOrderParams{
		SubtotalCents:      10000,
		TaxCents:           1100,
		ServiceChargeCents: 1000,
	}, userID)
	require.NoError(t, err)
	return ord.ID()
}
