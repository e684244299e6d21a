package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownDiscountType = errors.New("unknown discount type")
	ErrNegativeValue       = errors.New("instrument value cannot be negative")
	ErrPercentOutOfRange   = errors.New("percentage must be between 0 and 100")
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

type UsageScope string

const (
	ScopeSingleUse UsageScope = "single_use"
	ScopeMultiUse  UsageScope = "multi_use"
)

// Coupon is the read-side snapshot of a coupon instrument. Balances and
// usage counters live behind the redemption gateway; this carries only what
// the calculator needs.
type Coupon struct {
	ID           uuid.UUID
	Code         string
	DiscountType DiscountType
	ValueCents   int64   // fixed
	Percent      float64 // percentage
	UsageScope   UsageScope
	ValidFrom    *time.Time
	ValidTo      *time.Time
}

func (c Coupon) Validate() error {
	switch c.DiscountType {
	case DiscountFixed:
		if c.ValueCents < 0 {
			return ErrNegativeValue
		}
	case DiscountPercentage:
		if c.Percent < 0 || c.Percent > 100 {
			return ErrPercentOutOfRange
		}
	default:
		return ErrUnknownDiscountType
	}
	return nil
}

func (c Coupon) IsValidAt(t time.Time) bool {
	if c.ValidFrom != nil && t.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && t.After(*c.ValidTo) {
		return false
	}
	return true
}

// AmountOff computes the pre-tax reduction against the given subtotal,
// clamped so a coupon can never discount more than the subtotal itself.
func (c Coupon) AmountOff(subtotalCents int64) int64 {
	var off int64
	switch c.DiscountType {
	case DiscountFixed:
		off = c.ValueCents
	case DiscountPercentage:
		off = int64(float64(subtotalCents) * c.Percent / 100.0)
	}
	if off > subtotalCents {
		off = subtotalCents
	}
	if off < 0 {
		off = 0
	}
	return off
}

// LoyaltyAccount is the snapshot of a customer's points balance.
type LoyaltyAccount struct {
	UserID          uuid.UUID
	PointsBalance   int64
	PointValueCents int64
}

// GiftCard is the snapshot of a stored-value card. Balance mutation is the
// gateway's job; the calculator only clamps against it.
type GiftCard struct {
	ID           uuid.UUID
	Code         string
	BalanceCents int64
}

// Instruments is the set a checkout request asks to stack. Nil members are
// simply not applied.
type Instruments struct {
	Coupon          *Coupon
	Loyalty         *LoyaltyAccount
	PointsRequested int64
	GiftCard        *GiftCard
}
