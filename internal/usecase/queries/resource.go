package queries

import (
	"context"

	"github.com/google/uuid"
)

type ResourceReadStore interface {
	FindViewByID(ctx context.Context, id uuid.UUID) (*ResourceView, error)
	List(ctx context.Context, limit int32) ([]*ResourceView, error)
}

type ResourceQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ResourceView, error)
	List(ctx context.Context, limit int) ([]*ResourceView, error)
}

type resourceQueriesImpl struct {
	store ResourceReadStore
}

func NewResourceQueries(store ResourceReadStore) ResourceQueries {
	return &resourceQueriesImpl{store: store}
}

func (q *resourceQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ResourceView, error) {
	return q.store.FindViewByID(ctx, id)
}

func (q *resourceQueriesImpl) List(ctx context.Context, limit int) ([]*ResourceView, error) {
	if limit <= 0 {
		limit = 50
	}
	return q.store.List(ctx, int32(limit))
}
