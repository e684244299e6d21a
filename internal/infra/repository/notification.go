package repository

import (
	"context"
	"log/slog"
	"time"

	"booking-core/internal/infra/db"

	"github.com/google/uuid"
)

// NotificationRepository appends jobs to the outbox table. Jobs created
// inside a unit of work commit atomically with the state change that
// produced them.
type NotificationRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewNotificationRepository(dbtx db.DBTX, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: dbtx, logger: logger}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notification_jobs (id, kind, topic, payload, run_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), kind, topic, payload, runAt,
	)
	if err != nil {
		return mapPgError(r.logger, "failed to create notification job", err)
	}
	return nil
}
