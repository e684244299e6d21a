package memstore

import (
	"context"
	"log/slog"

	"booking-core/internal/domain/billing"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	kindCoupon   = "coupon"
	kindLoyalty  = "loyalty"
	kindGiftCard = "gift_card"
)

// Gateway is the in-memory redemption ledger. Each call validates, then
// mutates balance and ledger together under the store mutex, mirroring the
// single-transaction semantics of the database gateway.
type Gateway struct {
	store  *Store
	logger *slog.Logger
}

func NewGateway(store *Store, logger *slog.Logger) shared.RedemptionGateway {
	return &Gateway{store: store, logger: logger}
}

func (g *Gateway) ApplyCoupon(ctx context.Context, in shared.CouponRedemption) (*shared.RedemptionResult, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()

	row, ok := g.store.coupons[in.Code]
	if !ok {
		return nil, errs.ErrCouponNotFound
	}

	if replayed := g.replay(in.OrderID, row.coupon.ID); replayed != nil {
		return replayed, nil
	}

	if row.coupon.UsageScope == billing.ScopeSingleUse {
		if row.usesRemaining != nil && *row.usesRemaining <= 0 {
			return nil, errs.ErrCouponAlreadyUsed
		}
		if row.usesRemaining != nil {
			*row.usesRemaining -= 1
		}
	}

	amount := in.DiscountCents + in.TaxSavingsCents
	g.record(in.OrderID, row.coupon.ID, kindCoupon, amount, 0)
	return &shared.RedemptionResult{InstrumentID: row.coupon.ID, AmountRedeemedCents: amount}, nil
}

func (g *Gateway) RedeemLoyaltyPoints(ctx context.Context, in shared.LoyaltyRedemption) (*shared.RedemptionResult, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()

	if replayed := g.replay(in.OrderID, in.UserID); replayed != nil {
		return replayed, nil
	}

	account, ok := g.store.loyalty[in.UserID]
	if !ok {
		return nil, errs.ErrLoyaltyAccountNotFound
	}
	if account.PointsBalance < in.Points {
		return nil, errs.ErrInsufficientLoyaltyPoints
	}

	account.PointsBalance -= in.Points
	g.store.loyalty[in.UserID] = account
	g.record(in.OrderID, in.UserID, kindLoyalty, in.ValueCents, in.Points)
	return &shared.RedemptionResult{InstrumentID: in.UserID, AmountRedeemedCents: in.ValueCents}, nil
}

func (g *Gateway) RedeemGiftCard(ctx context.Context, in shared.GiftCardRedemption) (*shared.RedemptionResult, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()

	card, ok := g.store.giftCards[in.Code]
	if !ok {
		return nil, errs.ErrGiftCardNotFound
	}

	if replayed := g.replay(in.OrderID, card.ID); replayed != nil {
		return replayed, nil
	}

	if card.BalanceCents <= 0 {
		return nil, errs.ErrInsufficientGiftCardBalance
	}

	redeemed := in.AmountCents
	if redeemed > card.BalanceCents {
		redeemed = card.BalanceCents
	}

	card.BalanceCents -= redeemed
	g.store.giftCards[in.Code] = card
	g.record(in.OrderID, card.ID, kindGiftCard, redeemed, 0)
	return &shared.RedemptionResult{InstrumentID: card.ID, AmountRedeemedCents: redeemed}, nil
}

func (g *Gateway) replay(orderID, instrumentID uuid.UUID) *shared.RedemptionResult {
	if row, ok := g.store.ledger[ledgerKey{orderID: orderID, instrumentID: instrumentID}]; ok {
		return &shared.RedemptionResult{
			InstrumentID:        instrumentID,
			AmountRedeemedCents: row.amountCents,
			Replayed:            true,
		}
	}
	return nil
}

func (g *Gateway) record(orderID, instrumentID uuid.UUID, kind string, amount, points int64) {
	g.store.ledger[ledgerKey{orderID: orderID, instrumentID: instrumentID}] = ledgerRow{
		kind:        kind,
		amountCents: amount,
		points:      points,
		createdAt:   g.store.clock.Now(),
	}
}
