package readstore

import (
	"context"
	"log/slog"

	"booking-core/internal/domain/billing"
	"booking-core/internal/infra"
	"booking-core/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BillingReadStore resolves instrument snapshots for the checkout
// calculator. Balances read here are advisory; the redemption gateway
// re-checks them under its own guards at commit time.
type BillingReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewBillingReadStore(dbtx db.DBTX, logger *slog.Logger) *BillingReadStore {
	return &BillingReadStore{db: dbtx, logger: logger}
}

func (r *BillingReadStore) CouponByCode(ctx context.Context, code string) (*billing.Coupon, error) {
	var c billing.Coupon
	err := r.db.QueryRow(ctx, `
		SELECT id, code, discount_type, value_cents, percent, usage_scope,
		       valid_from, valid_to
		FROM coupons
		WHERE code = $1`,
		code,
	).Scan(&c.ID, &c.Code, &c.DiscountType, &c.ValueCents, &c.Percent, &c.UsageScope, &c.ValidFrom, &c.ValidTo)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "coupon not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find coupon", err)
	}
	return &c, nil
}

func (r *BillingReadStore) LoyaltyByUser(ctx context.Context, userID uuid.UUID) (*billing.LoyaltyAccount, error) {
	var a billing.LoyaltyAccount
	err := r.db.QueryRow(ctx, `
		SELECT user_id, points_balance, point_value_cents
		FROM loyalty_accounts
		WHERE user_id = $1`,
		userID,
	).Scan(&a.UserID, &a.PointsBalance, &a.PointValueCents)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "loyalty account not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find loyalty account", err)
	}
	return &a, nil
}

func (r *BillingReadStore) GiftCardByCode(ctx context.Context, code string) (*billing.GiftCard, error) {
	var g billing.GiftCard
	err := r.db.QueryRow(ctx, `
		SELECT id, code, balance_cents
		FROM gift_cards
		WHERE code = $1`,
		code,
	).Scan(&g.ID, &g.Code, &g.BalanceCents)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "gift card not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find gift card", err)
	}
	return &g, nil
}
