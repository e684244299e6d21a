package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNegativeAmount   = errors.New("order amounts cannot be negative")
	ErrAlreadyCancelled = errors.New("order is already cancelled")
	ErrNotPayable       = errors.New("order is not payable")
)

// Amounts are the published money figures of an order, in cents. TaxAmount
// was collected against Subtotal, so the effective tax rate is always
// derivable as TaxAmount/Subtotal and never re-entered by callers.
type Amounts struct {
	SubtotalCents      int64
	TaxCents           int64
	ServiceChargeCents int64
	DiscountCents      int64
	TotalCents         int64
}

type Order struct {
	id            uuid.UUID
	userID        uuid.UUID
	amounts       Amounts
	status        Status
	paymentStatus PaymentStatus
	createdAt     time.Time
	updatedAt     time.Time
}

func NewOrder(userID uuid.UUID, subtotalCents, taxCents, serviceChargeCents int64) (*Order, error) {
	if subtotalCents < 0 || taxCents < 0 || serviceChargeCents < 0 {
		return nil, ErrNegativeAmount
	}

	return &Order{
		id:     uuid.New(),
		userID: userID,
		amounts: Amounts{
			SubtotalCents:      subtotalCents,
			TaxCents:           taxCents,
			ServiceChargeCents: serviceChargeCents,
			TotalCents:         subtotalCents + taxCents + serviceChargeCents,
		},
		status:        StatusPending,
		paymentStatus: PaymentUnpaid,
	}, nil
}

func ReconstructOrder(
	id, userID uuid.UUID,
	amounts Amounts,
	status Status,
	paymentStatus PaymentStatus,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:            id,
		userID:        userID,
		amounts:       amounts,
		status:        status,
		paymentStatus: paymentStatus,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Advance moves the order one step along the fulfilment chain.
func (o *Order) Advance() (Status, error) {
	from := o.status
	next, ok := NextInChain(from)
	if !ok {
		return from, &TransitionError{From: from, Action: "advance"}
	}
	o.status = next
	return from, nil
}

func (o *Order) Cancel() (Status, error) {
	from := o.status
	if from == StatusCancelled {
		return from, ErrAlreadyCancelled
	}
	if IsTerminal(from) {
		return from, &TransitionError{From: from, Action: "cancel"}
	}
	o.status = StatusCancelled
	return from, nil
}

// IsPayable reports whether checkout may run against this order.
func (o *Order) IsPayable() bool {
	return !IsTerminal(o.status) && o.paymentStatus != PaymentPaid
}

// RecordDiscount stores the committed discount total and marks how much of
// the published total was covered by instruments.
func (o *Order) RecordDiscount(discountCents, coveredCents int64) {
	o.amounts.DiscountCents = discountCents
	switch {
	case coveredCents <= 0:
		o.paymentStatus = PaymentUnpaid
	case coveredCents >= o.amounts.TotalCents:
		o.paymentStatus = PaymentPaid
	default:
		o.paymentStatus = PaymentPartiallyPaid
	}
}

func (o *Order) ID() uuid.UUID                { return o.id }
func (o *Order) UserID() uuid.UUID            { return o.userID }
func (o *Order) Amounts() Amounts             { return o.amounts }
func (o *Order) Status() Status               { return o.status }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }
