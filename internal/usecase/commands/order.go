package commands

import (
	"context"

	"booking-core/internal/domain/order"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateOrderParams struct {
	SubtotalCents      int64
	TaxCents           int64
	ServiceChargeCents int64
}

type OrderCommands interface {
	CreateOrder(ctx context.Context, params CreateOrderParams, userID uuid.UUID) (*order.Order, error)
}

type orderCommandsImpl struct {
	uow shared.UnitOfWork
}

func NewOrderCommands(uow shared.UnitOfWork) OrderCommands {
	return &orderCommandsImpl{uow: uow}
}

func (c *orderCommandsImpl) CreateOrder(ctx context.Context, params CreateOrderParams, userID uuid.UUID) (*order.Order, error) {
	entity, err := order.NewOrder(userID, params.SubtotalCents, params.TaxCents, params.ServiceChargeCents)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Orders().Create(ctx, entity); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}
