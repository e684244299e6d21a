package response

import (
	"time"

	"booking-core/internal/domain/billing"
	"booking-core/internal/domain/order"
	"booking-core/internal/usecase/commands"
	"booking-core/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderResponse struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"userId"`
	SubtotalCents      int64     `json:"subtotalCents"`
	TaxCents           int64     `json:"taxCents"`
	ServiceChargeCents int64     `json:"serviceChargeCents"`
	DiscountCents      int64     `json:"discountCents"`
	TotalCents         int64     `json:"totalCents"`
	Status             string    `json:"status"`
	PaymentStatus      string    `json:"paymentStatus"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type CheckoutPreviewResponse struct {
	CouponDiscountCents   int64 `json:"couponDiscountCents"`
	TaxSavingsCents       int64 `json:"taxSavingsCents"`
	LoyaltyValueCents     int64 `json:"loyaltyValueCents"`
	LoyaltyPointsUsed     int64 `json:"loyaltyPointsUsed"`
	GiftCardRedeemedCents int64 `json:"giftCardRedeemedCents"`
	TotalDiscountCents    int64 `json:"totalDiscountCents"`
	RemainingCents        int64 `json:"remainingCents"`
}

type InstrumentOutcomeResponse struct {
	Kind                string `json:"kind"`
	Applied             bool   `json:"applied"`
	AmountRedeemedCents int64  `json:"amountRedeemedCents"`
	Replayed            bool   `json:"replayed,omitempty"`
	FailureReason       string `json:"failureReason,omitempty"`
}

type CheckoutResponse struct {
	Preview        CheckoutPreviewResponse     `json:"preview"`
	Outcomes       []InstrumentOutcomeResponse `json:"outcomes"`
	AmountDueCents int64                       `json:"amountDueCents"`
}

type RedemptionRecordResponse struct {
	OrderID        uuid.UUID `json:"orderId"`
	InstrumentID   uuid.UUID `json:"instrumentId"`
	InstrumentKind string    `json:"instrumentKind"`
	AmountCents    int64     `json:"amountCents"`
	CreatedAt      time.Time `json:"createdAt"`
}

func FromOrder(o *order.Order) *OrderResponse {
	a := o.Amounts()
	return &OrderResponse{
		ID:                 o.ID(),
		UserID:             o.UserID(),
		SubtotalCents:      a.SubtotalCents,
		TaxCents:           a.TaxCents,
		ServiceChargeCents: a.ServiceChargeCents,
		DiscountCents:      a.DiscountCents,
		TotalCents:         a.TotalCents,
		Status:             string(o.Status()),
		PaymentStatus:      string(o.PaymentStatus()),
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
	}
}

func FromOrderView(rm *queries.OrderView) *OrderResponse {
	return &OrderResponse{
		ID:                 rm.ID,
		UserID:             rm.UserID,
		SubtotalCents:      rm.SubtotalCents,
		TaxCents:           rm.TaxCents,
		ServiceChargeCents: rm.ServiceChargeCents,
		DiscountCents:      rm.DiscountCents,
		TotalCents:         rm.TotalCents,
		Status:             rm.Status,
		PaymentStatus:      rm.PaymentStatus,
		CreatedAt:          rm.CreatedAt,
		UpdatedAt:          rm.UpdatedAt,
	}
}

func FromPreview(p *billing.Preview) *CheckoutPreviewResponse {
	return &CheckoutPreviewResponse{
		CouponDiscountCents:   p.CouponDiscountCents,
		TaxSavingsCents:       p.TaxSavingsCents,
		LoyaltyValueCents:     p.LoyaltyValueCents,
		LoyaltyPointsUsed:     p.LoyaltyPointsUsed,
		GiftCardRedeemedCents: p.GiftCardRedeemedCents,
		TotalDiscountCents:    p.TotalDiscountCents,
		RemainingCents:        p.RemainingCents,
	}
}

func FromCheckoutResult(result *commands.CheckoutResult) *CheckoutResponse {
	outcomes := make([]InstrumentOutcomeResponse, len(result.Outcomes))
	for i, o := range result.Outcomes {
		outcomes[i] = InstrumentOutcomeResponse{
			Kind:                o.Kind,
			Applied:             o.Applied,
			AmountRedeemedCents: o.AmountRedeemedCents,
			Replayed:            o.Replayed,
			FailureReason:       o.FailureReason,
		}
	}
	return &CheckoutResponse{
		Preview: CheckoutPreviewResponse{
			CouponDiscountCents:   result.Preview.CouponDiscountCents,
			TaxSavingsCents:       result.Preview.TaxSavingsCents,
			LoyaltyValueCents:     result.Preview.LoyaltyValueCents,
			LoyaltyPointsUsed:     result.Preview.LoyaltyPointsUsed,
			GiftCardRedeemedCents: result.Preview.GiftCardRedeemedCents,
			TotalDiscountCents:    result.Preview.TotalDiscountCents,
			RemainingCents:        result.Preview.RemainingCents,
		},
		Outcomes:       outcomes,
		AmountDueCents: result.AmountDueCents,
	}
}

func FromRedemptionRecordView(rm *queries.RedemptionRecordView) *RedemptionRecordResponse {
	return &RedemptionRecordResponse{
		OrderID:        rm.OrderID,
		InstrumentID:   rm.InstrumentID,
		InstrumentKind: rm.InstrumentKind,
		AmountCents:    rm.AmountCents,
		CreatedAt:      rm.CreatedAt,
	}
}
