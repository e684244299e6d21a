package shared

import (
	"context"

	"booking-core/internal/domain/billing"

	"github.com/google/uuid"
)

// BillingReads resolves instrument snapshots for preview computation. It
// never mutates anything.
type BillingReads interface {
	CouponByCode(ctx context.Context, code string) (*billing.Coupon, error)
	LoyaltyByUser(ctx context.Context, userID uuid.UUID) (*billing.LoyaltyAccount, error)
	GiftCardByCode(ctx context.Context, code string) (*billing.GiftCard, error)
}

// RedemptionResult is what a gateway call settles on. Replayed marks a
// retried call that was answered from the ledger without touching balances.
type RedemptionResult struct {
	InstrumentID        uuid.UUID
	AmountRedeemedCents int64
	Replayed            bool
}

type CouponRedemption struct {
	Code            string
	UserID          uuid.UUID
	OrderID         uuid.UUID
	PreTaxCents     int64 // subtotal the discount was computed against
	DiscountCents   int64
	TaxSavingsCents int64
}

type LoyaltyRedemption struct {
	UserID     uuid.UUID
	OrderID    uuid.UUID
	Points     int64
	ValueCents int64
}

type GiftCardRedemption struct {
	Code        string
	OrderID     uuid.UUID
	AmountCents int64
}

// RedemptionGateway is the backing ledger that actually consumes instrument
// value. Every operation is keyed by (orderID, instrument) and idempotent:
// a retried call returns the original result without a second decrement.
// Balance decrements are conditional at the store ("subtract only if
// sufficient"), never read-modify-write in application code.
type RedemptionGateway interface {
	ApplyCoupon(ctx context.Context, in CouponRedemption) (*RedemptionResult, error)
	RedeemLoyaltyPoints(ctx context.Context, in LoyaltyRedemption) (*RedemptionResult, error)
	RedeemGiftCard(ctx context.Context, in GiftCardRedemption) (*RedemptionResult, error)
}

// TransitionEvent is the fire-and-forget notification emitted after every
// successful status transition. Delivery failure never fails the transition.
type TransitionEvent struct {
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Timestamp  string    `json:"timestamp"`
	ActorID    uuid.UUID `json:"actor_id"`
}
