package resource

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyResourceName   = errors.New("resource name cannot be empty")
	ErrResourceNameTooLong = errors.New("resource name is too long (max 255 characters)")
	ErrNonPositiveCapacity = errors.New("capacity must be positive")
	ErrInvalidStatus       = errors.New("invalid resource status")
)

const (
	MaxResourceNameLength = 255
)

// OfferableStatus is the catalog-side availability switch. Only available
// resources accept new reservations.
type OfferableStatus string

const (
	StatusAvailable   OfferableStatus = "available"
	StatusMaintenance OfferableStatus = "maintenance"
	StatusReserved    OfferableStatus = "reserved"
	StatusClosed      OfferableStatus = "closed"
)

func NewOfferableStatus(s string) (OfferableStatus, error) {
	switch OfferableStatus(s) {
	case StatusAvailable, StatusMaintenance, StatusReserved, StatusClosed:
		return OfferableStatus(s), nil
	}
	return "", ErrInvalidStatus
}

type Resource struct {
	id        uuid.UUID
	name      string
	capacity  int
	status    OfferableStatus
	createdAt time.Time
	updatedAt time.Time
}

func NewResource(id uuid.UUID, name string, capacity int) (*Resource, error) {
	if err := validateResourceName(name); err != nil {
		return nil, err
	}
	if capacity <= 0 {
		return nil, ErrNonPositiveCapacity
	}

	return &Resource{
		id:       id,
		name:     strings.TrimSpace(name),
		capacity: capacity,
		status:   StatusAvailable,
	}, nil
}

func ReconstructResource(
	id uuid.UUID,
	name string,
	capacity int,
	status OfferableStatus,
	createdAt, updatedAt time.Time,
) *Resource {
	return &Resource{
		id:        id,
		name:      name,
		capacity:  capacity,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// IsOfferable reports whether the resource accepts new reservations.
func (r *Resource) IsOfferable() bool {
	return r.status == StatusAvailable
}

func (r *Resource) CanAccommodate(occupancy int) bool {
	return occupancy > 0 && occupancy <= r.capacity
}

func validateResourceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyResourceName
	}
	if len(name) > MaxResourceNameLength {
		return ErrResourceNameTooLong
	}
	return nil
}

func (r *Resource) ID() uuid.UUID           { return r.id }
func (r *Resource) Name() string            { return r.name }
func (r *Resource) Capacity() int           { return r.capacity }
func (r *Resource) Status() OfferableStatus { return r.status }
func (r *Resource) CreatedAt() time.Time    { return r.createdAt }
func (r *Resource) UpdatedAt() time.Time    { return r.updatedAt }
