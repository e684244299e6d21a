package request

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	ResourceID uuid.UUID `json:"resource_id" binding:"required"`
	Kind       string    `json:"kind" binding:"required,oneof=event booking"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	Occupancy  int       `json:"occupancy" binding:"required,min=1"`
	Note       *string   `json:"note,omitempty"`
}

func (r CreateReservationRequest) GetNote() *string {
	if r.Note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.Note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type TransitionReservationRequest struct {
	Action          string `json:"action" binding:"required"`
	Reason          string `json:"reason,omitempty"`
	ActualOccupancy *int   `json:"actual_occupancy,omitempty"`
	ActualCostCents *int64 `json:"actual_cost_cents,omitempty"`
}

type AvailabilityRequest struct {
	StartTime time.Time  `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   time.Time  `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ExcludeID *uuid.UUID `form:"exclude_id"`
}
