package commands

import (
	"context"
	"log/slog"

	"booking-core/internal/domain/billing"
	"booking-core/internal/domain/order"
	"booking-core/internal/infra"
	"booking-core/internal/pkg/clock"
	"booking-core/internal/pkg/config"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
)

// InstrumentsRequest names the instruments a checkout wants to stack. Empty
// fields mean "not requested".
type InstrumentsRequest struct {
	CouponCode    string
	LoyaltyPoints int64
	GiftCardCode  string
}

// InstrumentOutcome reports, per requested instrument, whether it was applied
// and for how much. Failed instruments carry the reason instead of an amount.
type InstrumentOutcome struct {
	Kind                string `json:"kind"` // coupon | loyalty | gift_card
	Applied             bool   `json:"applied"`
	AmountRedeemedCents int64  `json:"amount_redeemed_cents"`
	Replayed            bool   `json:"replayed,omitempty"`
	FailureReason       string `json:"failure_reason,omitempty"`
}

type CheckoutResult struct {
	Preview        billing.Preview     `json:"preview"`
	Outcomes       []InstrumentOutcome `json:"outcomes"`
	AmountDueCents int64               `json:"amount_due_cents"`
}

type CheckoutCommands interface {
	PreviewCheckout(ctx context.Context, orderID uuid.UUID, req InstrumentsRequest) (*billing.Preview, error)
	CommitCheckout(ctx context.Context, orderID uuid.UUID, req InstrumentsRequest) (*CheckoutResult, error)
}

type checkoutCommandsImpl struct {
	uow             shared.UnitOfWork
	billing         shared.BillingReads
	gateway         shared.RedemptionGateway
	clock           clock.Clock
	logger          *slog.Logger
	continueOnError bool
}

func NewCheckoutCommands(
	uow shared.UnitOfWork,
	billingReads shared.BillingReads,
	gateway shared.RedemptionGateway,
	clk clock.Clock,
	logger *slog.Logger,
	cfg config.CheckoutConfig,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		uow:             uow,
		billing:         billingReads,
		gateway:         gateway,
		clock:           clk,
		logger:          logger,
		continueOnError: cfg.ContinueOnInstrumentError,
	}
}

// PreviewCheckout computes the stacked discount without consuming anything.
// The same resolution and arithmetic runs at commit time, so a preview
// followed by an immediate commit settles on the same figures unless an
// instrument changed in between.
func (c *checkoutCommandsImpl) PreviewCheckout(ctx context.Context, orderID uuid.UUID, req InstrumentsRequest) (*billing.Preview, error) {
	ord, err := c.loadPayableOrder(ctx, c.uow.Reads(), orderID)
	if err != nil {
		return nil, err
	}

	instruments, _, err := c.resolveInstruments(ctx, ord.UserID(), req, true)
	if err != nil {
		return nil, err
	}

	preview, err := billing.ComputeCheckout(ord.Amounts(), instruments)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}
	return &preview, nil
}

// CommitCheckout resolves the instruments, computes the stack, then consumes
// instrument value through the redemption gateway one instrument at a time in
// the canonical order. Each redemption is idempotent, so a crashed commit can
// be retried and already-consumed instruments replay instead of double
// charging. Finally the order is updated with what actually committed.
func (c *checkoutCommandsImpl) CommitCheckout(ctx context.Context, orderID uuid.UUID, req InstrumentsRequest) (*CheckoutResult, error) {
	ord, err := c.loadPayableOrder(ctx, c.uow.Reads(), orderID)
	if err != nil {
		return nil, err
	}

	instruments, outcomes, err := c.resolveInstruments(ctx, ord.UserID(), req, false)
	if err != nil {
		return nil, err
	}

	preview, err := billing.ComputeCheckout(ord.Amounts(), instruments)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	amounts := ord.Amounts()
	committed := billing.Preview{RemainingCents: amounts.TotalCents}

	if instruments.Coupon != nil {
		res, err := c.gateway.ApplyCoupon(ctx, shared.CouponRedemption{
			Code:            instruments.Coupon.Code,
			UserID:          ord.UserID(),
			OrderID:         orderID,
			PreTaxCents:     amounts.SubtotalCents,
			DiscountCents:   preview.CouponDiscountCents,
			TaxSavingsCents: preview.TaxSavingsCents,
		})
		outcome := c.settle("coupon", res, err, &outcomes)
		if outcome != nil {
			return nil, outcome
		}
		if res != nil {
			committed.CouponDiscountCents = preview.CouponDiscountCents
			committed.TaxSavingsCents = preview.TaxSavingsCents
			committed.RemainingCents -= preview.CouponDiscountCents + preview.TaxSavingsCents
		}
	}

	if instruments.Loyalty != nil && preview.LoyaltyPointsUsed > 0 {
		res, err := c.gateway.RedeemLoyaltyPoints(ctx, shared.LoyaltyRedemption{
			UserID:     ord.UserID(),
			OrderID:    orderID,
			Points:     preview.LoyaltyPointsUsed,
			ValueCents: preview.LoyaltyValueCents,
		})
		outcome := c.settle("loyalty", res, err, &outcomes)
		if outcome != nil {
			return nil, outcome
		}
		if res != nil {
			committed.LoyaltyValueCents = res.AmountRedeemedCents
			committed.LoyaltyPointsUsed = preview.LoyaltyPointsUsed
			committed.RemainingCents -= res.AmountRedeemedCents
		}
	}

	if instruments.GiftCard != nil && preview.GiftCardRedeemedCents > 0 {
		res, err := c.gateway.RedeemGiftCard(ctx, shared.GiftCardRedemption{
			Code:        instruments.GiftCard.Code,
			OrderID:     orderID,
			AmountCents: preview.GiftCardRedeemedCents,
		})
		outcome := c.settle("gift_card", res, err, &outcomes)
		if outcome != nil {
			return nil, outcome
		}
		if res != nil {
			committed.GiftCardRedeemedCents = res.AmountRedeemedCents
			committed.RemainingCents -= res.AmountRedeemedCents
		}
	}

	if committed.RemainingCents < 0 {
		committed.RemainingCents = 0
	}
	committed.TotalDiscountCents = committed.CouponDiscountCents + committed.LoyaltyValueCents

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		fresh, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		fresh.RecordDiscount(committed.TotalDiscountCents, committed.CoveredCents(amounts.TotalCents))
		if err := tx.Orders().Save(ctx, fresh); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		Preview:        committed,
		Outcomes:       outcomes,
		AmountDueCents: committed.RemainingCents,
	}, nil
}

// settle folds one gateway call into the outcome list. It returns a non-nil
// error only when the failure should abort the remaining sequence.
func (c *checkoutCommandsImpl) settle(kind string, res *shared.RedemptionResult, err error, outcomes *[]InstrumentOutcome) error {
	if err != nil {
		c.logger.Warn("instrument redemption failed",
			slog.String("instrument", kind),
			slog.String("error", err.Error()),
		)
		*outcomes = append(*outcomes, InstrumentOutcome{Kind: kind, FailureReason: err.Error()})
		if c.continueOnError {
			return nil
		}
		return err
	}
	*outcomes = append(*outcomes, InstrumentOutcome{
		Kind:                kind,
		Applied:             true,
		AmountRedeemedCents: res.AmountRedeemedCents,
		Replayed:            res.Replayed,
	})
	return nil
}

// resolveInstruments turns the request's codes into snapshots. In strict mode
// (preview) a missing or invalid instrument is an error; otherwise it becomes
// a failed outcome and the rest still resolve.
func (c *checkoutCommandsImpl) resolveInstruments(
	ctx context.Context,
	userID uuid.UUID,
	req InstrumentsRequest,
	strict bool,
) (billing.Instruments, []InstrumentOutcome, error) {
	var (
		instruments billing.Instruments
		outcomes    []InstrumentOutcome
	)

	fail := func(kind string, err error) error {
		if strict || !c.continueOnError {
			return err
		}
		outcomes = append(outcomes, InstrumentOutcome{Kind: kind, FailureReason: err.Error()})
		return nil
	}

	if req.CouponCode != "" {
		coupon, err := c.billing.CouponByCode(ctx, req.CouponCode)
		switch {
		case err != nil && infra.IsKind(err, infra.KindNotFound):
			if ferr := fail("coupon", errs.ErrCouponNotFound); ferr != nil {
				return billing.Instruments{}, nil, ferr
			}
		case err != nil:
			return billing.Instruments{}, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		case !coupon.IsValidAt(c.clock.Now()):
			if ferr := fail("coupon", errs.ErrCouponExpired); ferr != nil {
				return billing.Instruments{}, nil, ferr
			}
		default:
			instruments.Coupon = coupon
		}
	}

	if req.LoyaltyPoints > 0 {
		account, err := c.billing.LoyaltyByUser(ctx, userID)
		switch {
		case err != nil && infra.IsKind(err, infra.KindNotFound):
			if ferr := fail("loyalty", errs.ErrLoyaltyAccountNotFound); ferr != nil {
				return billing.Instruments{}, nil, ferr
			}
		case err != nil:
			return billing.Instruments{}, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		case account.PointsBalance < req.LoyaltyPoints:
			if ferr := fail("loyalty", errs.ErrInsufficientLoyaltyPoints); ferr != nil {
				return billing.Instruments{}, nil, ferr
			}
		default:
			instruments.Loyalty = account
			instruments.PointsRequested = req.LoyaltyPoints
		}
	}

	if req.GiftCardCode != "" {
		card, err := c.billing.GiftCardByCode(ctx, req.GiftCardCode)
		switch {
		case err != nil && infra.IsKind(err, infra.KindNotFound):
			if ferr := fail("gift_card", errs.ErrGiftCardNotFound); ferr != nil {
				return billing.Instruments{}, nil, ferr
			}
		case err != nil:
			return billing.Instruments{}, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		default:
			instruments.GiftCard = card
		}
	}

	return instruments, outcomes, nil
}

func (c *checkoutCommandsImpl) loadPayableOrder(ctx context.Context, tx shared.Tx, orderID uuid.UUID) (*order.Order, error) {
	ord, err := tx.Orders().FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !ord.IsPayable() {
		return nil, errs.ErrOrderNotPayable
	}
	return ord, nil
}
