package repository

import (
	"context"
	"log/slog"
	"time"

	"booking-core/internal/domain/resource"
	"booking-core/internal/infra"
	"booking-core/internal/infra/db"

	"github.com/google/uuid"
)

type ResourceRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewResourceRepository(dbtx db.DBTX, logger *slog.Logger) *ResourceRepository {
	return &ResourceRepository{db: dbtx, logger: logger}
}

func (r *ResourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO resources (id, name, capacity, status)
		VALUES ($1, $2, $3, $4)`,
		res.ID(), res.Name(), res.Capacity(), string(res.Status()),
	)
	if err != nil {
		return mapPgError(r.logger, "failed to create resource", err)
	}
	return nil
}

func (r *ResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*resource.Resource, error) {
	var (
		name                 string
		capacity             int
		status               string
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT name, capacity, status, created_at, updated_at
		FROM resources
		WHERE id = $1 AND archived_at IS NULL`,
		id,
	).Scan(&name, &capacity, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapPgError(r.logger, "failed to find resource", err)
	}

	return resource.ReconstructResource(id, name, capacity, resource.OfferableStatus(status), createdAt, updatedAt), nil
}

func (r *ResourceRepository) Archive(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE resources
		SET archived_at = now(), updated_at = now()
		WHERE id = $1 AND archived_at IS NULL`,
		id,
	)
	if err != nil {
		return mapPgError(r.logger, "failed to archive resource", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "resource not found on archive", nil)
	}
	return nil
}
