package redemption

import (
	"context"
	"errors"
	"log/slog"

	"booking-core/internal/domain/billing"
	"booking-core/internal/infra"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	kindCoupon   = "coupon"
	kindLoyalty  = "loyalty"
	kindGiftCard = "gift_card"
)

// PostgresGateway consumes instrument value inside short dedicated
// transactions. The ledger row and the balance decrement commit together;
// a retried call finds its ledger row and replays the original result.
type PostgresGateway struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresGateway(pool *pgxpool.Pool, logger *slog.Logger) shared.RedemptionGateway {
	return &PostgresGateway{pool: pool, logger: logger}
}

func (g *PostgresGateway) ApplyCoupon(ctx context.Context, in shared.CouponRedemption) (*shared.RedemptionResult, error) {
	var result *shared.RedemptionResult
	err := g.inTx(ctx, func(tx pgx.Tx) error {
		var (
			couponID      uuid.UUID
			usageScope    string
			usesRemaining *int64
		)
		err := tx.QueryRow(ctx, `
			SELECT id, usage_scope, uses_remaining
			FROM coupons
			WHERE code = $1
			FOR UPDATE`,
			in.Code,
		).Scan(&couponID, &usageScope, &usesRemaining)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrCouponNotFound
			}
			return infra.WrapRepoErr(g.logger, infra.KindDBFailure, "failed to lock coupon", err)
		}

		if replayed, err := g.findLedger(ctx, tx, in.OrderID, couponID); err != nil {
			return err
		} else if replayed != nil {
			result = replayed
			return nil
		}

		if billing.UsageScope(usageScope) == billing.ScopeSingleUse {
			if usesRemaining != nil && *usesRemaining <= 0 {
				return errs.ErrCouponAlreadyUsed
			}
			if _, err := tx.Exec(ctx, `
				UPDATE coupons SET uses_remaining = uses_remaining - 1 WHERE id = $1`,
				couponID,
			); err != nil {
				return infra.WrapRepoErr(g.logger, infra.KindDBFailure, "failed to consume coupon use", err)
			}
		}

		amount := in.DiscountCents + in.TaxSavingsCents
		if err := g.writeLedger(ctx, tx, in.OrderID, couponID, kindCoupon, amount, 0); err != nil {
			return err
		}
		result = &shared.RedemptionResult{InstrumentID: couponID, AmountRedeemedCents: amount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *PostgresGateway) RedeemLoyaltyPoints(ctx context.Context, in shared.LoyaltyRedemption) (*shared.RedemptionResult, error) {
	var result *shared.RedemptionResult
	err := g.inTx(ctx, func(tx pgx.Tx) error {
		// The loyalty account has no id of its own; the user id keys the
		// ledger for this instrument kind.
		if replayed, err := g.findLedger(ctx, tx, in.OrderID, in.UserID); err != nil {
			return err
		} else if replayed != nil {
			result = replayed
			return nil
		}

		// Conditional decrement: the balance check and the subtraction are
		// one statement, so concurrent redemptions cannot both pass.
		tag, err := tx.Exec(ctx, `
			UPDATE loyalty_accounts
			SET points_balance = points_balance - $2
			WHERE user_id = $1 AND points_balance >= $2`,
			in.UserID, in.Points,
		)
		if err != nil {
			return infra.WrapRepoErr(g.logger, infra.KindDBFailure, "failed to redeem loyalty points", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM loyalty_accounts WHERE user_id = $1)`, in.UserID).Scan(&exists); err != nil {
				return infra.WrapRepoErr(g.logger, infra.KindDBFailure, "failed to check loyalty account", err)
			}
			if !exists {
				return errs.ErrLoyaltyAccountNotFound
			}
			return errs.ErrInsufficientLoyaltyPoints
		}

		if err := g.writeLedger(ctx, tx, in.OrderID, in.UserID, kindLoyalty, in.ValueCents, in.Points); err != nil {
			return err
		}
		result = &shared.RedemptionResult{InstrumentID: in.UserID, AmountRedeemedCents: in.ValueCents}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *PostgresGateway) RedeemGiftCard(ctx context.Context, in shared.GiftCardRedemption) (*shared.RedemptionResult, error) {
	var result *shared.RedemptionResult
	err := g.inTx(ctx, func(tx pgx.Tx) error {
		var (
			cardID  uuid.UUID
			balance int64
		)
		err := tx.QueryRow(ctx, `
			SELECT id, balance_cents FROM gift_cards WHERE code = $1 FOR UPDATE`,
			in.Code,
		).Scan(&cardID, &balance)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrGiftCardNotFound
			}
			return infra.WrapRepoErr(g.logger, infra.KindDBFailure, "failed to lock gift card", err)
		}

		if replayed, err := g.findLedger(ctx, tx, in.OrderID, cardID); err != nil {
			return err
		} else if replayed != nil {
			result = replayed
			return nil
		}

		if balance <= 0 {
			return errs.ErrInsufficientGiftCardBalance
		}

		// The card covers what it can; a short balance redeems partially
		// rather than failing the instrument.
		redeemed := in.AmountCents
		if redeemed > balance {
			redeemed = balance
		}

		if _, err := tx.Exec(ctx, `
			UPDATE gift_cards SET balance_cents = balance_cents - $2 WHERE id = $1`,
			cardID, redeemed,
		); err != nil {
			return infra.WrapRepoErr(g.logger, infra.KindDBFailure, "failed to redeem gift card", err)
		}

		if err := g.writeLedger(ctx, tx, in.OrderID, cardID, kindGiftCard, redeemed, 0); err != nil {
			return err
		}
		result = &shared.RedemptionResult{InstrumentID: cardID, AmountRedeemedCents: redeemed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *PostgresGateway) findLedger(ctx context.Context, tx pgx.Tx, orderID, instrumentID uuid.UUID) (*shared.RedemptionResult, error) {
	var amount int64
	err := tx.QueryRow(ctx, `
		SELECT amount_cents FROM redemption_records
		WHERE order_id = $1 AND instrument_id = $2`,
		orderID, instrumentID,
	).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, infra.WrapRepoErr(g.logger, infra.KindDBFailure, "failed to read redemption ledger", err)
	}
	return &shared.RedemptionResult{InstrumentID: instrumentID, AmountRedeemedCents: amount, Replayed: true}, nil
}

func (g *PostgresGateway) writeLedger(ctx context.Context, tx pgx.Tx, orderID, instrumentID uuid.UUID, kind string, amount, points int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO redemption_records (order_id, instrument_id, instrument_kind, amount_cents, points)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, instrumentID, kind, amount, points,
	)
	if err != nil {
		return infra.WrapRepoErr(g.logger, infra.KindDBFailure, "failed to write redemption ledger", err)
	}
	return nil
}

func (g *PostgresGateway) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := g.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return infra.WrapRepoErr(g.logger, infra.KindDBFailure, "failed to begin redemption transaction", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			g.logger.Warn("redemption rollback failed", "error", rollbackErr.Error())
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
