package billing

import (
	"errors"

	"booking-core/internal/domain/order"
)

var ErrInvalidOrderAmounts = errors.New("order amounts are inconsistent")

// Preview is the numeric outcome of stacking the requested instruments
// against an order, before anything is committed. All figures are cents.
type Preview struct {
	CouponDiscountCents   int64 `json:"coupon_discount_cents"`
	TaxSavingsCents       int64 `json:"tax_savings_cents"`
	LoyaltyValueCents     int64 `json:"loyalty_value_cents"`
	LoyaltyPointsUsed     int64 `json:"loyalty_points_used"`
	GiftCardRedeemedCents int64 `json:"gift_card_redeemed_cents"`
	TotalDiscountCents    int64 `json:"total_discount_cents"`
	RemainingCents        int64 `json:"remaining_cents"`
}

// CoveredCents is the portion of the published total satisfied by
// instruments rather than collected from the customer.
func (p Preview) CoveredCents(totalCents int64) int64 {
	return totalCents - p.RemainingCents
}

// ComputeCheckout applies the requested instruments to the order's published
// amounts in the canonical order: coupon (pre-tax), then loyalty points,
// then gift card. It is pure: identical inputs always produce identical
// outputs, and no instrument balance is touched.
//
// The effective tax rate is derived exactly once, from the order's own
// taxAmount/subtotal. Re-deriving it after the coupon step would shrink the
// base it is computed from and silently corrupt the published total.
func ComputeCheckout(amounts order.Amounts, req Instruments) (Preview, error) {
	if amounts.SubtotalCents < 0 || amounts.TaxCents < 0 || amounts.TotalCents < 0 {
		return Preview{}, ErrInvalidOrderAmounts
	}

	var p Preview
	remaining := amounts.TotalCents

	// 1. Coupon reduces the taxable base, so the tax collected on the
	// discounted portion comes off too.
	if req.Coupon != nil {
		p.CouponDiscountCents = req.Coupon.AmountOff(amounts.SubtotalCents)
		if amounts.SubtotalCents > 0 {
			p.TaxSavingsCents = mulDivRound(p.CouponDiscountCents, amounts.TaxCents, amounts.SubtotalCents)
		}
		remaining = clamp(remaining - p.CouponDiscountCents - p.TaxSavingsCents)
	}

	// 2. Loyalty points, capped at what is still owed.
	if req.Loyalty != nil && req.PointsRequested > 0 {
		points := req.PointsRequested
		value := points * req.Loyalty.PointValueCents
		if value > remaining {
			value = remaining
			if req.Loyalty.PointValueCents > 0 {
				points = (value + req.Loyalty.PointValueCents - 1) / req.Loyalty.PointValueCents
			}
		}
		p.LoyaltyValueCents = value
		p.LoyaltyPointsUsed = points
		remaining = clamp(remaining - value)
	}

	// 3. Gift card covers whatever is left, up to its balance.
	if req.GiftCard != nil {
		redeemed := req.GiftCard.BalanceCents
		if redeemed > remaining {
			redeemed = remaining
		}
		p.GiftCardRedeemedCents = clamp(redeemed)
		remaining = clamp(remaining - p.GiftCardRedeemedCents)
	}

	p.TotalDiscountCents = p.CouponDiscountCents + p.LoyaltyValueCents
	p.RemainingCents = remaining
	return p, nil
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// mulDivRound computes a*b/c in integer cents, rounding half up.
func mulDivRound(a, b, c int64) int64 {
	return (a*b + c/2) / c
}
