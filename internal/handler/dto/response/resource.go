package response

import (
	"time"

	"booking-core/internal/domain/resource"
	"booking-core/internal/usecase/queries"

	"github.com/google/uuid"
)

type ResourceResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromResource(r *resource.Resource) *ResourceResponse {
	return &ResourceResponse{
		ID:        r.ID(),
		Name:      r.Name(),
		Capacity:  r.Capacity(),
		Status:    string(r.Status()),
		CreatedAt: r.CreatedAt(),
		UpdatedAt: r.UpdatedAt(),
	}
}

func FromResourceView(rm *queries.ResourceView) *ResourceResponse {
	return &ResourceResponse{
		ID:        rm.ID,
		Name:      rm.Name,
		Capacity:  rm.Capacity,
		Status:    rm.Status,
		CreatedAt: rm.CreatedAt,
		UpdatedAt: rm.UpdatedAt,
	}
}
