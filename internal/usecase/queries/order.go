package queries

import (
	"context"

	"github.com/google/uuid"
)

type OrderReadStore interface {
	FindViewByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListRedemptions(ctx context.Context, orderID uuid.UUID) ([]*RedemptionRecordView, error)
}

type OrderQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	GetRedemptions(ctx context.Context, orderID uuid.UUID) ([]*RedemptionRecordView, error)
}

type orderQueriesImpl struct {
	store OrderReadStore
}

func NewOrderQueries(store OrderReadStore) OrderQueries {
	return &orderQueriesImpl{store: store}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	return q.store.FindViewByID(ctx, id)
}

func (q *orderQueriesImpl) GetRedemptions(ctx context.Context, orderID uuid.UUID) ([]*RedemptionRecordView, error) {
	return q.store.ListRedemptions(ctx, orderID)
}
