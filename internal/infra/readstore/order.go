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

type OrderReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewOrderReadStore(dbtx db.DBTX, logger *slog.Logger) *OrderReadStore {
	return &OrderReadStore{db: dbtx, logger: logger}
}

func (r *OrderReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	var view queries.OrderView
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, subtotal_cents, tax_cents, service_charge_cents,
		       discount_cents, total_cents, status, payment_status,
		       created_at, updated_at
		FROM orders
		WHERE id = $1`,
		id,
	).Scan(
		&view.ID, &view.UserID, &view.SubtotalCents, &view.TaxCents, &view.ServiceChargeCents,
		&view.DiscountCents, &view.TotalCents, &view.Status, &view.PaymentStatus,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "order not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find order view", err)
	}
	return &view, nil
}

func (r *OrderReadStore) ListRedemptions(ctx context.Context, orderID uuid.UUID) ([]*queries.RedemptionRecordView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT order_id, instrument_id, instrument_kind, amount_cents,
		       order_id::text || ':' || instrument_id::text, created_at
		FROM redemption_records
		WHERE order_id = $1
		ORDER BY created_at`,
		orderID,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list redemptions", err)
	}
	defer rows.Close()

	var out []*queries.RedemptionRecordView
	for rows.Next() {
		var view queries.RedemptionRecordView
		err := rows.Scan(
			&view.OrderID, &view.InstrumentID, &view.InstrumentKind,
			&view.AmountCents, &view.IdempotencyKey, &view.CreatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan redemption record", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to iterate redemption records", err)
	}
	return out, nil
}
