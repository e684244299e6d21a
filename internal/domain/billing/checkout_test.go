//go:build unit

package billing_test

import (
	"testing"
	"time"

	"booking-core/internal/domain/billing"
	"booking-core/internal/domain/order"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAmounts = order.Amounts{
	SubtotalCents:      10000,
	TaxCents:           1100,
	ServiceChargeCents: 1000,
	TotalCents:         12100,
}

func fixedCoupon(valueCents int64) *billing.Coupon {
	return &billing.Coupon{
		ID:           uuid.New(),
		Code:         "FIXED",
		DiscountType: billing.DiscountFixed,
		ValueCents:   valueCents,
		UsageScope:   billing.ScopeMultiUse,
	}
}

func percentCoupon(percent float64) *billing.Coupon {
	return &billing.Coupon{
		ID:           uuid.New(),
		Code:         "PERCENT",
		DiscountType: billing.DiscountPercentage,
		Percent:      percent,
		UsageScope:   billing.ScopeMultiUse,
	}
}

func loyalty(balance, pointValue int64) *billing.LoyaltyAccount {
	return &billing.LoyaltyAccount{UserID: uuid.New(), PointsBalance: balance, PointValueCents: pointValue}
}

func giftCard(balance int64) *billing.GiftCard {
	return &billing.GiftCard{ID: uuid.New(), Code: "GIFT", BalanceCents: balance}
}

func TestComputeCheckout(t *testing.T) {
	t.Run("全種併用の基本ケース", func(t *testing.T) {
		got, err := billing.ComputeCheckout(testAmounts, billing.Instruments{
			Coupon:          fixedCoupon(1000),
			Loyalty:         loyalty(500, 10),
			PointsRequested: 100,
			GiftCard:        giftCard(5000),
		})
		require.NoError(t, err)

		want := billing.Preview{
			CouponDiscountCents:   1000,
			TaxSavingsCents:       110,
			LoyaltyValueCents:     1000,
			LoyaltyPointsUsed:     100,
			GiftCardRedeemedCents: 5000,
			TotalDiscountCents:    2000,
			RemainingCents:        4990,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Preview mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ギフトカードは割引合計に含まれない", func(t *testing.T) {
		got, err := billing.ComputeCheckout(testAmounts, billing.Instruments{GiftCard: giftCard(3000)})
		require.NoError(t, err)

		assert.Equal(t, int64(0), got.TotalDiscountCents)
		assert.Equal(t, int64(3000), got.GiftCardRedeemedCents)
		assert.Equal(t, int64(9100), got.RemainingCents)
		assert.Equal(t, int64(3000), got.CoveredCents(testAmounts.TotalCents))
	})

	t.Run("パーセントクーポンは小計に対して効く", func(t *testing.T) {
		got, err := billing.ComputeCheckout(testAmounts, billing.Instruments{Coupon: percentCoupon(15)})
		require.NoError(t, err)

		assert.Equal(t, int64(1500), got.CouponDiscountCents)
		// 1500 * 1100 / 10000, rounded half up
		assert.Equal(t, int64(165), got.TaxSavingsCents)
		assert.Equal(t, int64(10435), got.RemainingCents)
	})

	t.Run("クーポンは小計を超えない", func(t *testing.T) {
		got, err := billing.ComputeCheckout(testAmounts, billing.Instruments{Coupon: fixedCoupon(99999)})
		require.NoError(t, err)

		assert.Equal(t, int64(10000), got.CouponDiscountCents)
		assert.Equal(t, int64(1100), got.TaxSavingsCents)
		// Only the service charge is left to collect.
		assert.Equal(t, int64(1000), got.RemainingCents)
	})

	t.Run("ポイントは残額までで打ち切られる", func(t *testing.T) {
		got, err := billing.ComputeCheckout(testAmounts, billing.Instruments{
			Loyalty:         loyalty(100000, 10),
			PointsRequested: 5000,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(12100), got.LoyaltyValueCents)
		assert.Equal(t, int64(1210), got.LoyaltyPointsUsed)
		assert.Equal(t, int64(0), got.RemainingCents)
	})

	t.Run("ポイント打ち切り時は使用ポイントを切り上げで再計算する", func(t *testing.T) {
		amounts := order.Amounts{SubtotalCents: 95, TaxCents: 0, ServiceChargeCents: 0, TotalCents: 95}
		got, err := billing.ComputeCheckout(amounts, billing.Instruments{
			Loyalty:         loyalty(1000, 10),
			PointsRequested: 50,
		})
		require.NoError(t, err)

		// 95 cents at 10 cents per point needs 10 points, not 9.
		assert.Equal(t, int64(95), got.LoyaltyValueCents)
		assert.Equal(t, int64(10), got.LoyaltyPointsUsed)
		assert.Equal(t, int64(0), got.RemainingCents)
	})

	t.Run("ギフトカードは残額を超えて引き落とさない", func(t *testing.T) {
		got, err := billing.ComputeCheckout(testAmounts, billing.Instruments{
			Coupon:   fixedCoupon(10000),
			GiftCard: giftCard(99999),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(1000), got.GiftCardRedeemedCents)
		assert.Equal(t, int64(0), got.RemainingCents)
	})

	t.Run("器具なしなら全額が残る", func(t *testing.T) {
		got, err := billing.ComputeCheckout(testAmounts, billing.Instruments{})
		require.NoError(t, err)

		assert.Equal(t, billing.Preview{RemainingCents: 12100}, got)
		assert.Equal(t, int64(0), got.CoveredCents(testAmounts.TotalCents))
	})

	t.Run("同じ入力は常に同じ結果", func(t *testing.T) {
		req := billing.Instruments{
			Coupon:          percentCoupon(7.5),
			Loyalty:         loyalty(300, 25),
			PointsRequested: 40,
			GiftCard:        giftCard(1234),
		}

		first, err := billing.ComputeCheckout(testAmounts, req)
		require.NoError(t, err)
		for range 10 {
			again, err := billing.ComputeCheckout(testAmounts, req)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("負の注文金額NG", func(t *testing.T) {
		_, err := billing.ComputeCheckout(order.Amounts{SubtotalCents: -1}, billing.Instruments{})
		assert.ErrorIs(t, err, billing.ErrInvalidOrderAmounts)
	})
}

func TestCouponAmountOff(t *testing.T) {
	tests := []struct {
		name     string
		coupon   *billing.Coupon
		subtotal int64
		want     int64
	}{
		{name: "固定額", coupon: fixedCoupon(500), subtotal: 10000, want: 500},
		{name: "固定額が小計を超える場合は小計まで", coupon: fixedCoupon(20000), subtotal: 10000, want: 10000},
		{name: "パーセント", coupon: percentCoupon(10), subtotal: 10000, want: 1000},
		{name: "100パーセントで全額", coupon: percentCoupon(100), subtotal: 10000, want: 10000},
		{name: "小計ゼロなら割引もゼロ", coupon: percentCoupon(50), subtotal: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.AmountOff(tt.subtotal))
		})
	}
}

func TestCouponIsValidAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	t.Run("期間なしは常に有効", func(t *testing.T) {
		assert.True(t, fixedCoupon(100).IsValidAt(now))
	})

	t.Run("期間内は有効", func(t *testing.T) {
		c := fixedCoupon(100)
		c.ValidFrom = &past
		c.ValidTo = &future
		assert.True(t, c.IsValidAt(now))
	})

	t.Run("開始前は無効", func(t *testing.T) {
		c := fixedCoupon(100)
		c.ValidFrom = &future
		assert.False(t, c.IsValidAt(now))
	})

	t.Run("期限切れは無効", func(t *testing.T) {
		c := fixedCoupon(100)
		c.ValidTo = &past
		assert.False(t, c.IsValidAt(now))
	})
}

func TestCouponValidate(t *testing.T) {
	t.Run("負の固定額NG", func(t *testing.T) {
		assert.ErrorIs(t, fixedCoupon(-1).Validate(), billing.ErrNegativeValue)
	})

	t.Run("パーセント範囲外NG", func(t *testing.T) {
		assert.ErrorIs(t, percentCoupon(101).Validate(), billing.ErrPercentOutOfRange)
		assert.ErrorIs(t, percentCoupon(-0.1).Validate(), billing.ErrPercentOutOfRange)
	})

	t.Run("未知の種別NG", func(t *testing.T) {
		c := &billing.Coupon{DiscountType: "mystery"}
		assert.ErrorIs(t, c.Validate(), billing.ErrUnknownDiscountType)
	})
}
