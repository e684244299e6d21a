package queries

import (
	"time"

	"booking-core/internal/domain/reservation"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type ReservationView struct {
	ID              uuid.UUID                `json:"id"`
	ResourceID      uuid.UUID                `json:"resource_id"`
	ResourceName    string                   `json:"resource_name"`
	UserID          uuid.UUID                `json:"user_id"`
	Kind            string                   `json:"kind"`
	StartTime       time.Time                `json:"start_time"`
	EndTime         time.Time                `json:"end_time"`
	Occupancy       int                      `json:"occupancy"`
	Status          string                   `json:"status"`
	Notes           []reservation.Annotation `json:"notes,omitempty"`
	ActualOccupancy int                      `json:"actual_occupancy"`
	ActualCostCents int64                    `json:"actual_cost_cents"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

type ReservationListItem struct {
	ID           uuid.UUID `json:"id"`
	ResourceID   uuid.UUID `json:"resource_id"`
	ResourceName string    `json:"resource_name"`
	Kind         string    `json:"kind"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type ResourceView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderView struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	SubtotalCents      int64     `json:"subtotal_cents"`
	TaxCents           int64     `json:"tax_cents"`
	ServiceChargeCents int64     `json:"service_charge_cents"`
	DiscountCents      int64     `json:"discount_cents"`
	TotalCents         int64     `json:"total_cents"`
	Status             string    `json:"status"`
	PaymentStatus      string    `json:"payment_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type RedemptionRecordView struct {
	OrderID        uuid.UUID `json:"order_id"`
	InstrumentID   uuid.UUID `json:"instrument_id"`
	InstrumentKind string    `json:"instrument_kind"`
	AmountCents    int64     `json:"amount_cents"`
	IdempotencyKey string    `json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
}
