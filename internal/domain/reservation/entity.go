package reservation

import (
	"errors"
	"time"

	"booking-core/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrNonPositiveOccupancy = errors.New("occupancy must be positive")
	ErrAlreadyCancelled     = errors.New("reservation is already cancelled")
	ErrTerminalStatus       = errors.New("reservation is in a terminal status")
)

// TransitionParams carries the optional inputs of a status transition.
// Actuals are only consumed by complete; Reason only by cancel.
type TransitionParams struct {
	Reason          string
	ActualOccupancy *int
	ActualCostCents *int64
}

type Reservation struct {
	id              uuid.UUID
	resourceID      uuid.UUID
	userID          uuid.UUID
	kind            Kind
	interval        Interval
	occupancy       int
	status          Status
	notes           NoteLog
	actualOccupancy int
	actualCostCents int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewReservation builds a reservation in its kind's initial status.
// Capacity enforcement happens against the resource in the usecase layer;
// here only shape invariants are checked.
func NewReservation(
	clk clock.Clock,
	resourceID, userID uuid.UUID,
	kind Kind,
	interval Interval,
	occupancy int,
	note string,
) (*Reservation, error) {
	if occupancy <= 0 {
		return nil, ErrNonPositiveOccupancy
	}
	if interval.IsZero() {
		return nil, ErrInvalidInterval
	}

	notes := NewNoteLog()
	if note != "" {
		notes = notes.Append(clk.Now(), note)
	}

	return &Reservation{
		id:              uuid.New(),
		resourceID:      resourceID,
		userID:          userID,
		kind:            kind,
		interval:        interval,
		occupancy:       occupancy,
		status:          InitialStatus(kind),
		notes:           notes,
		actualOccupancy: occupancy,
	}, nil
}

func ReconstructReservation(
	id, resourceID, userID uuid.UUID,
	kind Kind,
	interval Interval,
	occupancy int,
	status Status,
	notes NoteLog,
	actualOccupancy int,
	actualCostCents int64,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:              id,
		resourceID:      resourceID,
		userID:          userID,
		kind:            kind,
		interval:        interval,
		occupancy:       occupancy,
		status:          status,
		notes:           notes,
		actualOccupancy: actualOccupancy,
		actualCostCents: actualCostCents,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Apply moves the reservation along one edge of its status machine and
// returns the status it left. All mutation of a persisted reservation goes
// through here; terminal states reject every action.
func (r *Reservation) Apply(clk clock.Clock, action Action, params TransitionParams) (Status, error) {
	from := r.status

	if action == ActionCancel && from == StatusCancelled {
		return from, ErrAlreadyCancelled
	}

	next, err := NextStatus(r.kind, from, action)
	if err != nil {
		return from, err
	}

	switch action {
	case ActionComplete:
		// Final measured values default to what was planned.
		if params.ActualOccupancy != nil {
			r.actualOccupancy = *params.ActualOccupancy
		}
		if params.ActualCostCents != nil {
			r.actualCostCents = *params.ActualCostCents
		}
	case ActionCancel:
		if params.Reason != "" {
			r.notes = r.notes.Append(clk.Now(), "cancelled: "+params.Reason)
		}
	}

	r.status = next
	return from, nil
}

func (r *Reservation) IsTerminal() bool {
	return IsTerminal(r.kind, r.status)
}

func (r *Reservation) IsActive() bool {
	return !r.IsTerminal()
}

func (r *Reservation) ID() uuid.UUID         { return r.id }
func (r *Reservation) ResourceID() uuid.UUID { return r.resourceID }
func (r *Reservation) UserID() uuid.UUID     { return r.userID }
func (r *Reservation) Kind() Kind            { return r.kind }
func (r *Reservation) Interval() Interval    { return r.interval }
func (r *Reservation) Occupancy() int        { return r.occupancy }
func (r *Reservation) Status() Status        { return r.status }
func (r *Reservation) Notes() NoteLog        { return r.notes }
func (r *Reservation) ActualOccupancy() int  { return r.actualOccupancy }
func (r *Reservation) ActualCostCents() int64 {
	return r.actualCostCents
}
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }
