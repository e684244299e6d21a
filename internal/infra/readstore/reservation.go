package readstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"booking-core/internal/domain/reservation"
	"booking-core/internal/infra"
	"booking-core/internal/infra/db"
	"booking-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewReservationReadStore(dbtx db.DBTX, logger *slog.Logger) *ReservationReadStore {
	return &ReservationReadStore{db: dbtx, logger: logger}
}

func (r *ReservationReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT rv.id, rv.resource_id, rs.name, rv.user_id, rv.kind,
		       rv.start_time, rv.end_time, rv.occupancy, rv.status, rv.notes,
		       rv.actual_occupancy, rv.actual_cost_cents, rv.created_at, rv.updated_at
		FROM reservations rv
		JOIN resources rs ON rs.id = rv.resource_id
		WHERE rv.id = $1`,
		id,
	)

	var (
		view     queries.ReservationView
		notesRaw []byte
	)
	err := row.Scan(
		&view.ID, &view.ResourceID, &view.ResourceName, &view.UserID, &view.Kind,
		&view.StartTime, &view.EndTime, &view.Occupancy, &view.Status, &notesRaw,
		&view.ActualOccupancy, &view.ActualCostCents, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "reservation not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find reservation view", err)
	}

	if len(notesRaw) > 0 {
		var notes []reservation.Annotation
		if err := json.Unmarshal(notesRaw, &notes); err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to decode notes", err)
		}
		view.Notes = notes
	}
	return &view, nil
}

func (r *ReservationReadStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rv.id, rv.resource_id, rs.name, rv.kind,
		       rv.start_time, rv.end_time, rv.status, rv.created_at
		FROM reservations rv
		JOIN resources rs ON rs.id = rv.resource_id
		WHERE rv.user_id = $1
		ORDER BY rv.start_time DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list reservations by user", err)
	}
	defer rows.Close()

	var out []*queries.ReservationListItem
	for rows.Next() {
		var (
			item               queries.ReservationListItem
			startTime, endTime time.Time
		)
		err := rows.Scan(
			&item.ID, &item.ResourceID, &item.ResourceName, &item.Kind,
			&startTime, &endTime, &item.Status, &item.CreatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan reservation list item", err)
		}
		item.StartTime = startTime
		item.EndTime = endTime
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to iterate reservation list", err)
	}
	return out, nil
}
