package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"booking-core/internal/domain/reservation"
	"booking-core/internal/infra"
	"booking-core/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation    = "23505"
	pgErrCodeForeignKeyViolated = "23503"
	pgErrCodeExclusionViolated  = "23P01"
)

// mapPgError translates driver-level failures into repository error kinds so
// the usecase layer never inspects SQLSTATE codes itself.
func mapPgError(logger *slog.Logger, msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return infra.WrapRepoErr(logger, infra.KindNotFound, msg, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCodeUniqueViolation:
			return infra.WrapRepoErr(logger, infra.KindDuplicateKey, msg, err)
		case pgErrCodeForeignKeyViolated:
			return infra.WrapRepoErr(logger, infra.KindForeignKeyViolated, msg, err)
		case pgErrCodeExclusionViolated:
			return infra.WrapRepoErr(logger, infra.KindConflict, msg, err)
		}
	}
	return infra.WrapRepoErr(logger, infra.KindDBFailure, msg, err)
}

type ReservationRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewReservationRepository(dbtx db.DBTX, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{db: dbtx, logger: logger}
}

// LockResource takes a transaction-scoped advisory lock derived from the
// resource id. Everyone who mutates a resource's calendar locks first, so
// the subsequent range read sees every committed row.
func (r *ReservationRepository) LockResource(ctx context.Context, resourceID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, resourceID)
	if err != nil {
		return mapPgError(r.logger, "failed to lock resource", err)
	}
	return nil
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation, idempotencyKey uuid.UUID) error {
	notes, err := json.Marshal(res.Notes().Entries())
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode notes", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO reservations (
			id, resource_id, user_id, kind, start_time, end_time,
			occupancy, status, notes, actual_occupancy, actual_cost_cents,
			idempotency_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		res.ID(), res.ResourceID(), res.UserID(), string(res.Kind()),
		res.Interval().Start(), res.Interval().End(),
		res.Occupancy(), string(res.Status()), notes,
		res.ActualOccupancy(), res.ActualCostCents(), idempotencyKey,
	)
	if err != nil {
		return mapPgError(r.logger, "failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRow(ctx, selectReservation+` WHERE id = $1`, id)
	res, err := scanReservation(row)
	if err != nil {
		return nil, mapPgError(r.logger, "failed to find reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRow(ctx, selectReservation+` WHERE idempotency_key = $1`, key)
	res, err := scanReservation(row)
	if err != nil {
		return nil, mapPgError(r.logger, "failed to find reservation by idempotency key", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListActiveIntersecting(ctx context.Context, resourceID uuid.UUID, from, to time.Time) ([]*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx, selectReservation+`
		WHERE resource_id = $1
		  AND start_time < $3
		  AND end_time > $2
		  AND NOT (
			status = 'cancelled'
			OR (kind = 'event' AND status = 'completed')
			OR (kind = 'booking' AND status = 'checked_out')
		  )
		ORDER BY start_time`,
		resourceID, from, to,
	)
	if err != nil {
		return nil, mapPgError(r.logger, "failed to list reservations", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, mapPgError(r.logger, "failed to scan reservation", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(r.logger, "failed to iterate reservations", err)
	}
	return out, nil
}

func (r *ReservationRepository) CountActiveFrom(ctx context.Context, resourceID uuid.UUID, from time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM reservations
		WHERE resource_id = $1
		  AND end_time >= $2
		  AND NOT (
			status = 'cancelled'
			OR (kind = 'event' AND status = 'completed')
			OR (kind = 'booking' AND status = 'checked_out')
		  )`,
		resourceID, from,
	).Scan(&count)
	if err != nil {
		return 0, mapPgError(r.logger, "failed to count active reservations", err)
	}
	return count, nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	notes, err := json.Marshal(res.Notes().Entries())
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode notes", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE reservations
		SET status = $2,
		    notes = $3,
		    actual_occupancy = $4,
		    actual_cost_cents = $5,
		    updated_at = now()
		WHERE id = $1`,
		res.ID(), string(res.Status()), notes, res.ActualOccupancy(), res.ActualCostCents(),
	)
	if err != nil {
		return mapPgError(r.logger, "failed to save reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "reservation not found on save", nil)
	}
	return nil
}

const selectReservation = `
	SELECT id, resource_id, user_id, kind, start_time, end_time,
	       occupancy, status, notes, actual_occupancy, actual_cost_cents,
	       created_at, updated_at
	FROM reservations`

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id, resourceID, userID     uuid.UUID
		kind, status               string
		startTime, endTime         time.Time
		occupancy, actualOccupancy int
		notesRaw                   []byte
		actualCostCents            int64
		createdAt, updatedAt       time.Time
	)
	err := row.Scan(
		&id, &resourceID, &userID, &kind, &startTime, &endTime,
		&occupancy, &status, &notesRaw, &actualOccupancy, &actualCostCents,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	interval, err := reservation.NewInterval(startTime, endTime)
	if err != nil {
		return nil, err
	}

	var entries []reservation.Annotation
	if len(notesRaw) > 0 {
		if err := json.Unmarshal(notesRaw, &entries); err != nil {
			return nil, err
		}
	}

	return reservation.ReconstructReservation(
		id, resourceID, userID,
		reservation.Kind(kind), interval, occupancy,
		reservation.Status(status), reservation.NewNoteLog(entries...),
		actualOccupancy, actualCostCents,
		createdAt, updatedAt,
	), nil
}
