package order

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
)

// statusChain is the linear fulfilment path driven by Advance.
var statusChain = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivered,
	StatusCompleted,
}

type TransitionError struct {
	From   Status
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal order transition: %s from status %s", e.Action, e.From)
}

// NextInChain returns the single successor of the given status. ok is false
// for terminal or unrecognized statuses.
func NextInChain(s Status) (Status, bool) {
	for i, cur := range statusChain {
		if cur == s && i+1 < len(statusChain) {
			return statusChain[i+1], true
		}
	}
	return "", false
}

func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ValidStatus(s Status) bool {
	if s == StatusCancelled {
		return true
	}
	for _, cur := range statusChain {
		if cur == s {
			return true
		}
	}
	return false
}
