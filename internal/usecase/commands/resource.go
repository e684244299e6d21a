package commands

import (
	"context"

	"booking-core/internal/domain/resource"
	"booking-core/internal/infra"
	"booking-core/internal/pkg/clock"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateResourceParams struct {
	Name     string
	Capacity int
}

type ResourceCommands interface {
	CreateResource(ctx context.Context, params CreateResourceParams) (*resource.Resource, error)
	ArchiveResource(ctx context.Context, id uuid.UUID) error
}

type resourceCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewResourceCommands(uow shared.UnitOfWork, clk clock.Clock) ResourceCommands {
	return &resourceCommandsImpl{
		uow:   uow,
		clock: clk,
	}
}

func (c *resourceCommandsImpl) CreateResource(ctx context.Context, params CreateResourceParams) (*resource.Resource, error) {
	entity, err := resource.NewResource(uuid.New(), params.Name, params.Capacity)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Resources().Create(ctx, entity); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// ArchiveResource retires a resource from the catalog. Archival is refused
// while any non-terminal reservation still lies ahead of now.
func (c *resourceCommandsImpl) ArchiveResource(ctx context.Context, id uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Resources().FindByID(ctx, id); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrResourceNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		active, err := tx.Reservations().CountActiveFrom(ctx, id, c.clock.Now())
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if active > 0 {
			return errs.ErrResourceHasActiveBookings
		}

		if err := tx.Resources().Archive(ctx, id); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
}
