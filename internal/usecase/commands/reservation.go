package commands

import (
	"context"
	"encoding/json"
	"time"

	"booking-core/internal/domain/reservation"
	"booking-core/internal/infra"
	"booking-core/internal/pkg/clock"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateReservationParams struct {
	ResourceID uuid.UUID
	Kind       string
	StartTime  time.Time
	EndTime    time.Time
	Occupancy  int
	Note       *string
}

type CreateReservationResult struct {
	Reservation *reservation.Reservation
	IsReplayed  bool
}

type ReservationCommands interface {
	CreateReservation(ctx context.Context, params CreateReservationParams, userID, idempotencyKey uuid.UUID) (*CreateReservationResult, error)
	IsAvailable(ctx context.Context, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
}

type reservationCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewReservationCommands(uow shared.UnitOfWork, clk clock.Clock) ReservationCommands {
	return &reservationCommandsImpl{
		uow:   uow,
		clock: clk,
	}
}

// CreateReservation validates the request, then runs the availability check
// and the insert as one transaction. Concurrent calls for an overlapping
// interval on the same resource are serialized by a per-resource lock taken
// before the range read, so only one of them can observe "available".
func (c *reservationCommandsImpl) CreateReservation(
	ctx context.Context,
	params CreateReservationParams,
	userID, idempotencyKey uuid.UUID,
) (*CreateReservationResult, error) {
	if idempotencyKey == uuid.Nil {
		return nil, errs.ErrIdempotencyKeyRequired
	}

	kind, err := reservation.NewKind(params.Kind)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	interval, err := reservation.NewInterval(params.StartTime, params.EndTime)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidInterval)
	}

	note := ""
	if params.Note != nil {
		note = *params.Note
	}

	var result CreateReservationResult
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// Replay: a retried request returns its original reservation.
		if existing, err := tx.Reservations().FindByIdempotencyKey(ctx, idempotencyKey); err == nil && existing != nil {
			result = CreateReservationResult{Reservation: existing, IsReplayed: true}
			return nil
		} else if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		res, err := tx.Resources().FindByID(ctx, params.ResourceID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrResourceNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !res.IsOfferable() {
			return errs.ErrResourceNotOfferable
		}
		if !res.CanAccommodate(params.Occupancy) {
			return errs.ErrExceedsCapacity
		}

		if err := tx.Reservations().LockResource(ctx, params.ResourceID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		free, err := c.intervalFree(ctx, tx, params.ResourceID, interval, nil)
		if err != nil {
			return err
		}
		if !free {
			return errs.ErrResourceUnavailable
		}

		entity, err := reservation.NewReservation(c.clock, params.ResourceID, userID, kind, interval, params.Occupancy, note)
		if err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}

		if err := tx.Reservations().Create(ctx, entity, idempotencyKey); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.ErrResourceUnavailable
			}
			if infra.IsKind(err, infra.KindDuplicateKey) {
				// Lost an idempotency-key race. The failed insert has
				// aborted this transaction, so recovery happens outside it.
				return err
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := c.queueCreatedJob(ctx, tx, entity.ID()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		result = CreateReservationResult{Reservation: entity, IsReplayed: false}
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			// Surface the winner of the race with a fresh read.
			if existing, ferr := c.uow.Reads().Reservations().FindByIdempotencyKey(ctx, idempotencyKey); ferr == nil && existing != nil {
				return &CreateReservationResult{Reservation: existing, IsReplayed: true}, nil
			}
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil, err
	}
	return &result, nil
}

// IsAvailable answers whether the resource is free for the interval. It is a
// point-in-time read; CreateReservation re-checks under the lock.
func (c *reservationCommandsImpl) IsAvailable(
	ctx context.Context,
	resourceID uuid.UUID,
	start, end time.Time,
	excludeID *uuid.UUID,
) (bool, error) {
	interval, err := reservation.NewInterval(start, end)
	if err != nil {
		return false, errs.Mark(err, errs.ErrInvalidInterval)
	}

	reads := c.uow.Reads()
	res, err := reads.Resources().FindByID(ctx, resourceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return false, errs.ErrResourceNotFound
		}
		return false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !res.IsOfferable() {
		return false, nil
	}

	return c.intervalFree(ctx, reads, resourceID, interval, excludeID)
}

func (c *reservationCommandsImpl) intervalFree(
	ctx context.Context,
	tx shared.Tx,
	resourceID uuid.UUID,
	interval reservation.Interval,
	excludeID *uuid.UUID,
) (bool, error) {
	from, to := interval.DayBucket()
	existing, err := tx.Reservations().ListActiveIntersecting(ctx, resourceID, from, to)
	if err != nil {
		return false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return reservation.FirstConflict(interval, existing, excludeID) == nil, nil
}

func (c *reservationCommandsImpl) queueCreatedJob(ctx context.Context, tx shared.Tx, reservationID uuid.UUID) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": reservationID,
		"type":           "reservation_created",
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, "email", "reservation_created", payload, c.clock.Now())
}
