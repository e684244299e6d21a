package shared

import (
	"context"
	"time"

	"booking-core/internal/domain/order"
	"booking-core/internal/domain/reservation"
	"booking-core/internal/domain/resource"

	"github.com/google/uuid"
)

// UnitOfWork runs a closure inside one storage transaction. Everything the
// closure does through tx commits or rolls back as a unit; the availability
// check-and-insert in particular depends on this.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Reads exposes the same repositories outside any transaction, for
	// single-statement reads where transactional consistency buys nothing.
	Reads() Tx
}

type Tx interface {
	Reservations() ReservationRepository
	Resources() ResourceRepository
	Orders() OrderRepository
	Notifications() NotificationRepository
}

type ReservationRepository interface {
	// LockResource serializes concurrent check-and-insert sequences on one
	// resource for the remainder of the transaction.
	LockResource(ctx context.Context, resourceID uuid.UUID) error
	Create(ctx context.Context, res *reservation.Reservation, idempotencyKey uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*reservation.Reservation, error)
	// ListActiveIntersecting returns non-terminal reservations on the
	// resource whose interval intersects [from, to). Callers pass a
	// day-bucketed superset of the interval they actually care about.
	ListActiveIntersecting(ctx context.Context, resourceID uuid.UUID, from, to time.Time) ([]*reservation.Reservation, error)
	// CountActiveFrom counts non-terminal reservations ending at or after
	// the given instant (archive guard).
	CountActiveFrom(ctx context.Context, resourceID uuid.UUID, from time.Time) (int64, error)
	Save(ctx context.Context, res *reservation.Reservation) error
}

type ResourceRepository interface {
	Create(ctx context.Context, r *resource.Resource) error
	FindByID(ctx context.Context, id uuid.UUID) (*resource.Resource, error)
	Archive(ctx context.Context, id uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Save(ctx context.Context, o *order.Order) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}
