package request

import "strings"

type CreateOrderRequest struct {
	SubtotalCents      int64 `json:"subtotal_cents" binding:"required,min=0"`
	TaxCents           int64 `json:"tax_cents" binding:"min=0"`
	ServiceChargeCents int64 `json:"service_charge_cents" binding:"min=0"`
}

type CheckoutRequest struct {
	CouponCode    string `json:"coupon_code,omitempty"`
	LoyaltyPoints int64  `json:"loyalty_points,omitempty" binding:"min=0"`
	GiftCardCode  string `json:"gift_card_code,omitempty"`
}

func (r CheckoutRequest) GetCouponCode() string {
	return strings.TrimSpace(r.CouponCode)
}

func (r CheckoutRequest) GetGiftCardCode() string {
	return strings.TrimSpace(r.GiftCardCode)
}
