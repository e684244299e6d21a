package response

import (
	"time"

	"booking-core/internal/domain/reservation"
	"booking-core/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID              uuid.UUID      `json:"id"`
	ResourceID      uuid.UUID      `json:"resourceId"`
	ResourceName    string         `json:"resourceName,omitempty"`
	UserID          uuid.UUID      `json:"userId"`
	Kind            string         `json:"kind"`
	StartTime       time.Time      `json:"startTime"`
	EndTime         time.Time      `json:"endTime"`
	Occupancy       int            `json:"occupancy"`
	Status          string         `json:"status"`
	Notes           []NoteResponse `json:"notes,omitempty"`
	ActualOccupancy int            `json:"actualOccupancy"`
	ActualCostCents int64          `json:"actualCostCents"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	IsReplayed      bool           `json:"isReplayed,omitempty"`
}

type NoteResponse struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

type ReservationListResponse struct {
	ID           uuid.UUID `json:"id"`
	ResourceID   uuid.UUID `json:"resourceId"`
	ResourceName string    `json:"resourceName"`
	Kind         string    `json:"kind"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

type TransitionResponse struct {
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
}

func FromReservation(res *reservation.Reservation, isReplayed bool) *ReservationResponse {
	return &ReservationResponse{
		ID:              res.ID(),
		ResourceID:      res.ResourceID(),
		UserID:          res.UserID(),
		Kind:            string(res.Kind()),
		StartTime:       res.Interval().Start(),
		EndTime:         res.Interval().End(),
		Occupancy:       res.Occupancy(),
		Status:          string(res.Status()),
		Notes:           fromNotes(res.Notes().Entries()),
		ActualOccupancy: res.ActualOccupancy(),
		ActualCostCents: res.ActualCostCents(),
		CreatedAt:       res.CreatedAt(),
		UpdatedAt:       res.UpdatedAt(),
		IsReplayed:      isReplayed,
	}
}

func FromReservationView(rm *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:              rm.ID,
		ResourceID:      rm.ResourceID,
		ResourceName:    rm.ResourceName,
		UserID:          rm.UserID,
		Kind:            rm.Kind,
		StartTime:       rm.StartTime,
		EndTime:         rm.EndTime,
		Occupancy:       rm.Occupancy,
		Status:          rm.Status,
		Notes:           fromNotes(rm.Notes),
		ActualOccupancy: rm.ActualOccupancy,
		ActualCostCents: rm.ActualCostCents,
		CreatedAt:       rm.CreatedAt,
		UpdatedAt:       rm.UpdatedAt,
	}
}

func FromReservationListItem(rm *queries.ReservationListItem) *ReservationListResponse {
	return &ReservationListResponse{
		ID:           rm.ID,
		ResourceID:   rm.ResourceID,
		ResourceName: rm.ResourceName,
		Kind:         rm.Kind,
		StartTime:    rm.StartTime,
		EndTime:      rm.EndTime,
		Status:       rm.Status,
		CreatedAt:    rm.CreatedAt,
	}
}

func fromNotes(notes []reservation.Annotation) []NoteResponse {
	if len(notes) == 0 {
		return nil
	}
	out := make([]NoteResponse, len(notes))
	for i, n := range notes {
		out[i] = NoteResponse{At: n.At, Text: n.Text}
	}
	return out
}
