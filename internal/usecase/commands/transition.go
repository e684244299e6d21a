package commands

import (
	"context"
	"log/slog"
	"time"

	"booking-core/internal/domain/order"
	"booking-core/internal/domain/reservation"
	"booking-core/internal/infra"
	"booking-core/internal/pkg/clock"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type TransitionReservationParams struct {
	Action          string
	Reason          string
	ActualOccupancy *int
	ActualCostCents *int64
}

type TransitionResult struct {
	FromStatus string
	ToStatus   string
}

type TransitionCommands interface {
	TransitionReservation(ctx context.Context, reservationID uuid.UUID, params TransitionReservationParams, actorID uuid.UUID) (*TransitionResult, error)
	AdvanceOrder(ctx context.Context, orderID, actorID uuid.UUID) (*TransitionResult, error)
	CancelOrder(ctx context.Context, orderID, actorID uuid.UUID) (*TransitionResult, error)
}

type transitionCommandsImpl struct {
	uow      shared.UnitOfWork
	notifier shared.Notifier
	clock    clock.Clock
	logger   *slog.Logger
}

func NewTransitionCommands(uow shared.UnitOfWork, notifier shared.Notifier, clk clock.Clock, logger *slog.Logger) TransitionCommands {
	return &transitionCommandsImpl{
		uow:      uow,
		notifier: notifier,
		clock:    clk,
		logger:   logger,
	}
}

func (c *transitionCommandsImpl) TransitionReservation(
	ctx context.Context,
	reservationID uuid.UUID,
	params TransitionReservationParams,
	actorID uuid.UUID,
) (*TransitionResult, error) {
	var result TransitionResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrReservationNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		from, err := entity.Apply(c.clock, reservation.Action(params.Action), reservation.TransitionParams{
			Reason:          params.Reason,
			ActualOccupancy: params.ActualOccupancy,
			ActualCostCents: params.ActualCostCents,
		})
		if err != nil {
			return markTransitionErr(err)
		}

		if err := tx.Reservations().Save(ctx, entity); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		result = TransitionResult{FromStatus: string(from), ToStatus: string(entity.Status())}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publishTransition(ctx, "reservation", reservationID, result, actorID)
	return &result, nil
}

func (c *transitionCommandsImpl) AdvanceOrder(ctx context.Context, orderID, actorID uuid.UUID) (*TransitionResult, error) {
	return c.transitionOrder(ctx, orderID, actorID, func(o *order.Order) (order.Status, error) {
		return o.Advance()
	})
}

func (c *transitionCommandsImpl) CancelOrder(ctx context.Context, orderID, actorID uuid.UUID) (*TransitionResult, error) {
	return c.transitionOrder(ctx, orderID, actorID, func(o *order.Order) (order.Status, error) {
		return o.Cancel()
	})
}

func (c *transitionCommandsImpl) transitionOrder(
	ctx context.Context,
	orderID, actorID uuid.UUID,
	move func(o *order.Order) (order.Status, error),
) (*TransitionResult, error) {
	var result TransitionResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrOrderNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		from, err := move(entity)
		if err != nil {
			return markTransitionErr(err)
		}

		if err := tx.Orders().Save(ctx, entity); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		result = TransitionResult{FromStatus: string(from), ToStatus: string(entity.Status())}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publishTransition(ctx, "order", orderID, result, actorID)
	return &result, nil
}

// publishTransition emits the event after the transaction has committed. A
// failed publish is logged and swallowed; the state change already happened.
func (c *transitionCommandsImpl) publishTransition(ctx context.Context, entityType string, entityID uuid.UUID, result TransitionResult, actorID uuid.UUID) {
	event := shared.TransitionEvent{
		EntityType: entityType,
		EntityID:   entityID,
		FromStatus: result.FromStatus,
		ToStatus:   result.ToStatus,
		Timestamp:  c.clock.Now().UTC().Format(time.RFC3339),
		ActorID:    actorID,
	}
	if err := c.notifier.PublishTransition(ctx, event); err != nil {
		c.logger.Warn("transition event publish failed",
			slog.String("entity_type", entityType),
			slog.String("entity_id", entityID.String()),
			slog.String("to_status", result.ToStatus),
			slog.String("error", err.Error()),
		)
	}
}

func markTransitionErr(err error) error {
	switch err {
	case reservation.ErrAlreadyCancelled, order.ErrAlreadyCancelled:
		return errs.Mark(err, errs.ErrAlreadyCancelled)
	}
	return errs.Mark(err, errs.ErrInvalidStatusTransition)
}
