package components

import (
	"context"
	"fmt"
	"log/slog"

	"booking-core/internal/infra/db"
	"booking-core/internal/infra/memstore"
	"booking-core/internal/infra/readstore"
	"booking-core/internal/infra/redemption"
	"booking-core/internal/infra/uow"
	"booking-core/internal/pkg/clock"
	"booking-core/internal/pkg/config"
	"booking-core/internal/usecase/queries"
	"booking-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewPersistence,
	),
)

// Persistence bundles every storage-facing port. Which backend fills them is
// decided once, by STORE_DRIVER.
type Persistence struct {
	fx.Out

	UoW              shared.UnitOfWork
	Billing          shared.BillingReads
	Gateway          shared.RedemptionGateway
	ReservationReads queries.ReservationReadStore
	ResourceReads    queries.ResourceReadStore
	OrderReads       queries.OrderReadStore
}

func NewPersistence(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) (Persistence, error) {
	switch cfg.Store.Driver {
	case "memory":
		return newMemoryPersistence(clk, logger), nil
	case "postgres":
		return newPostgresPersistence(lc, cfg, logger)
	default:
		return Persistence{}, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newMemoryPersistence(clk clock.Clock, logger *slog.Logger) Persistence {
	store := memstore.New(clk)
	reads := memstore.NewReadStore(store, logger)
	return Persistence{
		UoW:              memstore.NewUoW(store, logger),
		Billing:          reads,
		Gateway:          memstore.NewGateway(store, logger),
		ReservationReads: reads.Reservations(),
		ResourceReads:    reads.Resources(),
		OrderReads:       reads.Orders(),
	}
}

func newPostgresPersistence(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (Persistence, error) {
	pool, cleanup, err := db.Connect(context.Background(), cfg.DB)
	if err != nil {
		return Persistence{}, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	return Persistence{
		UoW:              uow.NewPostgresUoW(pool, logger),
		Billing:          readstore.NewBillingReadStore(pool, logger),
		Gateway:          redemption.NewPostgresGateway(pool, logger),
		ReservationReads: readstore.NewReservationReadStore(pool, logger),
		ResourceReads:    readstore.NewResourceReadStore(pool, logger),
		OrderReads:       readstore.NewOrderReadStore(pool, logger),
	}, nil
}
