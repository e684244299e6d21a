package repository

import (
	"context"
	"log/slog"
	"time"

	"booking-core/internal/domain/order"
	"booking-core/internal/infra"
	"booking-core/internal/infra/db"

	"github.com/google/uuid"
)

type OrderRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewOrderRepository(dbtx db.DBTX, logger *slog.Logger) *OrderRepository {
	return &OrderRepository{db: dbtx, logger: logger}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	a := o.Amounts()
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, subtotal_cents, tax_cents, service_charge_cents,
			discount_cents, total_cents, status, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID(), o.UserID(), a.SubtotalCents, a.TaxCents, a.ServiceChargeCents,
		a.DiscountCents, a.TotalCents, string(o.Status()), string(o.PaymentStatus()),
	)
	if err != nil {
		return mapPgError(r.logger, "failed to create order", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var (
		userID               uuid.UUID
		a                    order.Amounts
		status, payment      string
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT user_id, subtotal_cents, tax_cents, service_charge_cents,
		       discount_cents, total_cents, status, payment_status,
		       created_at, updated_at
		FROM orders
		WHERE id = $1`,
		id,
	).Scan(
		&userID, &a.SubtotalCents, &a.TaxCents, &a.ServiceChargeCents,
		&a.DiscountCents, &a.TotalCents, &status, &payment,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, mapPgError(r.logger, "failed to find order", err)
	}

	return order.ReconstructOrder(id, userID, a, order.Status(status), order.PaymentStatus(payment), createdAt, updatedAt), nil
}

func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	a := o.Amounts()
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET discount_cents = $2,
		    status = $3,
		    payment_status = $4,
		    updated_at = now()
		WHERE id = $1`,
		o.ID(), a.DiscountCents, string(o.Status()), string(o.PaymentStatus()),
	)
	if err != nil {
		return mapPgError(r.logger, "failed to save order", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "order not found on save", nil)
	}
	return nil
}
