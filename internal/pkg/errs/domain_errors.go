package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Resource errors
	ErrResourceNotFound          = errors.New("resource not found")
	ErrResourceNotOfferable      = errors.New("resource is not offerable")
	ErrResourceHasActiveBookings = errors.New("resource has active reservations")

	// Reservation errors
	ErrReservationNotFound = errors.New("reservation not found")
	ErrResourceUnavailable = errors.New("resource unavailable for requested interval")
	ErrExceedsCapacity     = errors.New("occupancy exceeds resource capacity")
	ErrInvalidInterval     = errors.New("invalid interval")

	// Status machine errors
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAlreadyCancelled        = errors.New("already cancelled")

	// Order errors
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPayable = errors.New("order is not payable")

	// Instrument errors (per-instrument, checkout continues per policy)
	ErrCouponNotFound              = errors.New("coupon not found")
	ErrCouponExpired               = errors.New("coupon expired")
	ErrCouponAlreadyUsed           = errors.New("coupon already used")
	ErrInsufficientLoyaltyPoints   = errors.New("insufficient loyalty points")
	ErrInsufficientGiftCardBalance = errors.New("insufficient gift card balance")
	ErrGiftCardNotFound            = errors.New("gift card not found")
	ErrLoyaltyAccountNotFound      = errors.New("loyalty account not found")

	// Idempotency errors
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
