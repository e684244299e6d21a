package memstore

import (
	"context"
	"log/slog"
	"time"

	"booking-core/internal/domain/order"
	"booking-core/internal/domain/reservation"
	"booking-core/internal/domain/resource"
	"booking-core/internal/infra"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
)

// UoW runs each unit of work under the store mutex with a snapshot taken up
// front, so a failed closure rolls back exactly like a database transaction.
type UoW struct {
	store  *Store
	logger *slog.Logger
}

func NewUoW(store *Store, logger *slog.Logger) shared.UnitOfWork {
	return &UoW{store: store, logger: logger}
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	snap := u.store.snapshot()
	tx := &memTx{store: u.store, logger: u.logger}
	if err := fn(ctx, tx); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

func (u *UoW) Reads() shared.Tx {
	return &memTx{store: u.store, logger: u.logger, external: true}
}

type memTx struct {
	store  *Store
	logger *slog.Logger

	// external transactions take the store mutex per call; in-tx repos run
	// under the mutex Within already holds.
	external bool
}

func (t *memTx) lock() func() {
	if t.external {
		t.store.mu.Lock()
		return t.store.mu.Unlock
	}
	return func() {}
}

func (t *memTx) Reservations() shared.ReservationRepository { return &memReservations{t} }
func (t *memTx) Resources() shared.ResourceRepository       { return &memResources{t} }
func (t *memTx) Orders() shared.OrderRepository             { return &memOrders{t} }
func (t *memTx) Notifications() shared.NotificationRepository {
	return &memNotifications{t}
}

type memReservations struct{ *memTx }

// LockResource is a no-op: the store mutex already serializes every unit of
// work, which is stronger than the per-resource lock the database takes.
func (r *memReservations) LockResource(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (r *memReservations) Create(_ context.Context, res *reservation.Reservation, idempotencyKey uuid.UUID) error {
	defer r.lock()()

	if _, ok := r.store.byIdemKey[idempotencyKey]; ok {
		return infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "idempotency key already used", nil)
	}
	for _, row := range r.store.reservations {
		if row.resourceID != res.ResourceID() {
			continue
		}
		if reservation.IsTerminal(reservation.Kind(row.kind), reservation.Status(row.status)) {
			continue
		}
		if row.start.Before(res.Interval().End()) && row.end.After(res.Interval().Start()) {
			return infra.WrapRepoErr(r.logger, infra.KindConflict, "overlapping reservation exists", nil)
		}
	}

	now := r.store.clock.Now()
	r.store.reservations[res.ID()] = reservationRow{
		id:              res.ID(),
		resourceID:      res.ResourceID(),
		userID:          res.UserID(),
		kind:            string(res.Kind()),
		start:           res.Interval().Start(),
		end:             res.Interval().End(),
		occupancy:       res.Occupancy(),
		status:          string(res.Status()),
		notes:           res.Notes().Entries(),
		actualOccupancy: res.ActualOccupancy(),
		actualCostCents: res.ActualCostCents(),
		idempotencyKey:  idempotencyKey,
		createdAt:       now,
		updatedAt:       now,
	}
	r.store.byIdemKey[idempotencyKey] = res.ID()
	return nil
}

func (r *memReservations) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	defer r.lock()()

	row, ok := r.store.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "reservation not found", nil)
	}
	return rowToReservation(row)
}

func (r *memReservations) FindByIdempotencyKey(_ context.Context, key uuid.UUID) (*reservation.Reservation, error) {
	defer r.lock()()

	id, ok := r.store.byIdemKey[key]
	if !ok {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "reservation not found", nil)
	}
	return rowToReservation(r.store.reservations[id])
}

func (r *memReservations) ListActiveIntersecting(_ context.Context, resourceID uuid.UUID, from, to time.Time) ([]*reservation.Reservation, error) {
	defer r.lock()()

	var out []*reservation.Reservation
	for _, row := range r.store.reservations {
		if row.resourceID != resourceID {
			continue
		}
		if reservation.IsTerminal(reservation.Kind(row.kind), reservation.Status(row.status)) {
			continue
		}
		if row.start.Before(to) && row.end.After(from) {
			res, err := rowToReservation(row)
			if err != nil {
				return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "corrupt reservation row", err)
			}
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *memReservations) CountActiveFrom(_ context.Context, resourceID uuid.UUID, from time.Time) (int64, error) {
	defer r.lock()()

	var count int64
	for _, row := range r.store.reservations {
		if row.resourceID != resourceID {
			continue
		}
		if reservation.IsTerminal(reservation.Kind(row.kind), reservation.Status(row.status)) {
			continue
		}
		if !row.end.Before(from) {
			count++
		}
	}
	return count, nil
}

func (r *memReservations) Save(_ context.Context, res *reservation.Reservation) error {
	defer r.lock()()

	row, ok := r.store.reservations[res.ID()]
	if !ok {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "reservation not found on save", nil)
	}
	row.status = string(res.Status())
	row.notes = res.Notes().Entries()
	row.actualOccupancy = res.ActualOccupancy()
	row.actualCostCents = res.ActualCostCents()
	row.updatedAt = r.store.clock.Now()
	r.store.reservations[res.ID()] = row
	return nil
}

func rowToReservation(row reservationRow) (*reservation.Reservation, error) {
	interval, err := reservation.NewInterval(row.start, row.end)
	if err != nil {
		return nil, err
	}
	return reservation.ReconstructReservation(
		row.id, row.resourceID, row.userID,
		reservation.Kind(row.kind), interval, row.occupancy,
		reservation.Status(row.status), reservation.NewNoteLog(row.notes...),
		row.actualOccupancy, row.actualCostCents,
		row.createdAt, row.updatedAt,
	), nil
}

type memResources struct{ *memTx }

func (r *memResources) Create(_ context.Context, res *resource.Resource) error {
	defer r.lock()()

	now := r.store.clock.Now()
	r.store.resources[res.ID()] = resourceRow{
		id:        res.ID(),
		name:      res.Name(),
		capacity:  res.Capacity(),
		status:    string(res.Status()),
		createdAt: now,
		updatedAt: now,
	}
	return nil
}

func (r *memResources) FindByID(_ context.Context, id uuid.UUID) (*resource.Resource, error) {
	defer r.lock()()

	row, ok := r.store.resources[id]
	if !ok || row.archivedAt != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "resource not found", nil)
	}
	return resource.ReconstructResource(row.id, row.name, row.capacity, resource.OfferableStatus(row.status), row.createdAt, row.updatedAt), nil
}

func (r *memResources) Archive(_ context.Context, id uuid.UUID) error {
	defer r.lock()()

	row, ok := r.store.resources[id]
	if !ok || row.archivedAt != nil {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "resource not found on archive", nil)
	}
	now := r.store.clock.Now()
	row.archivedAt = &now
	row.updatedAt = now
	r.store.resources[id] = row
	return nil
}

type memOrders struct{ *memTx }

func (o *memOrders) Create(_ context.Context, ord *order.Order) error {
	defer o.lock()()

	now := o.store.clock.Now()
	o.store.orders[ord.ID()] = orderRow{
		id:            ord.ID(),
		userID:        ord.UserID(),
		amounts:       ord.Amounts(),
		status:        string(ord.Status()),
		paymentStatus: string(ord.PaymentStatus()),
		createdAt:     now,
		updatedAt:     now,
	}
	return nil
}

func (o *memOrders) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	defer o.lock()()

	row, ok := o.store.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr(o.logger, infra.KindNotFound, "order not found", nil)
	}
	return order.ReconstructOrder(row.id, row.userID, row.amounts, order.Status(row.status), order.PaymentStatus(row.paymentStatus), row.createdAt, row.updatedAt), nil
}

func (o *memOrders) Save(_ context.Context, ord *order.Order) error {
	defer o.lock()()

	row, ok := o.store.orders[ord.ID()]
	if !ok {
		return infra.WrapRepoErr(o.logger, infra.KindNotFound, "order not found on save", nil)
	}
	row.amounts = ord.Amounts()
	row.status = string(ord.Status())
	row.paymentStatus = string(ord.PaymentStatus())
	row.updatedAt = o.store.clock.Now()
	o.store.orders[ord.ID()] = row
	return nil
}

type memNotifications struct{ *memTx }

func (n *memNotifications) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	defer n.lock()()

	n.store.jobs = append(n.store.jobs, notificationJob{
		id:      uuid.New(),
		kind:    kind,
		topic:   topic,
		payload: append([]byte(nil), payload...),
		runAt:   runAt,
	})
	return nil
}
