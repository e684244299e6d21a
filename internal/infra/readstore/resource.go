package readstore

import (
	"context"
	"log/slog"

	"booking-core/internal/infra"
	"booking-core/internal/infra/db"
	"booking-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ResourceReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewResourceReadStore(dbtx db.DBTX, logger *slog.Logger) *ResourceReadStore {
	return &ResourceReadStore{db: dbtx, logger: logger}
}

func (r *ResourceReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.ResourceView, error) {
	var view queries.ResourceView
	err := r.db.QueryRow(ctx, `
		SELECT id, name, capacity, status, created_at, updated_at
		FROM resources
		WHERE id = $1 AND archived_at IS NULL`,
		id,
	).Scan(&view.ID, &view.Name, &view.Capacity, &view.Status, &view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "resource not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find resource view", err)
	}
	return &view, nil
}

func (r *ResourceReadStore) List(ctx context.Context, limit int32) ([]*queries.ResourceView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, capacity, status, created_at, updated_at
		FROM resources
		WHERE archived_at IS NULL
		ORDER BY name
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list resources", err)
	}
	defer rows.Close()

	var out []*queries.ResourceView
	for rows.Next() {
		var view queries.ResourceView
		if err := rows.Scan(&view.ID, &view.Name, &view.Capacity, &view.Status, &view.CreatedAt, &view.UpdatedAt); err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan resource view", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to iterate resources", err)
	}
	return out, nil
}
