package memstore

import (
	"context"
	"log/slog"
	"sort"

	"booking-core/internal/domain/billing"
	"booking-core/internal/infra"
	"booking-core/internal/usecase/queries"

	"github.com/google/uuid"
)

// ReadStore serves the query side straight from the store maps.
type ReadStore struct {
	store  *Store
	logger *slog.Logger
}

func NewReadStore(store *Store, logger *slog.Logger) *ReadStore {
	return &ReadStore{store: store, logger: logger}
}

func (r *ReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "reservation not found", nil)
	}
	return r.reservationView(row), nil
}

func (r *ReadStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*queries.ReservationListItem
	for _, row := range r.store.reservations {
		if row.userID != userID {
			continue
		}
		out = append(out, &queries.ReservationListItem{
			ID:           row.id,
			ResourceID:   row.resourceID,
			ResourceName: r.resourceName(row.resourceID),
			Kind:         row.kind,
			StartTime:    row.start,
			EndTime:      row.end,
			Status:       row.status,
			CreatedAt:    row.createdAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReadStore) reservationView(row reservationRow) *queries.ReservationView {
	return &queries.ReservationView{
		ID:              row.id,
		ResourceID:      row.resourceID,
		ResourceName:    r.resourceName(row.resourceID),
		UserID:          row.userID,
		Kind:            row.kind,
		StartTime:       row.start,
		EndTime:         row.end,
		Occupancy:       row.occupancy,
		Status:          row.status,
		Notes:           row.notes,
		ActualOccupancy: row.actualOccupancy,
		ActualCostCents: row.actualCostCents,
		CreatedAt:       row.createdAt,
		UpdatedAt:       row.updatedAt,
	}
}

func (r *ReadStore) resourceName(id uuid.UUID) string {
	if row, ok := r.store.resources[id]; ok {
		return row.name
	}
	return ""
}

// ResourceReadStore and OrderReadStore surfaces share the same backing maps.

func (r *ReadStore) FindResourceViewByID(ctx context.Context, id uuid.UUID) (*queries.ResourceView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.resources[id]
	if !ok || row.archivedAt != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "resource not found", nil)
	}
	view := resourceView(row)
	return &view, nil
}

func (r *ReadStore) ListResources(ctx context.Context, limit int32) ([]*queries.ResourceView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*queries.ResourceView
	for _, row := range r.store.resources {
		if row.archivedAt != nil {
			continue
		}
		view := resourceView(row)
		out = append(out, &view)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func resourceView(row resourceRow) queries.ResourceView {
	return queries.ResourceView{
		ID:        row.id,
		Name:      row.name,
		Capacity:  row.capacity,
		Status:    row.status,
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
	}
}

func (r *ReadStore) FindOrderViewByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "order not found", nil)
	}
	return &queries.OrderView{
		ID:                 row.id,
		UserID:             row.userID,
		SubtotalCents:      row.amounts.SubtotalCents,
		TaxCents:           row.amounts.TaxCents,
		ServiceChargeCents: row.amounts.ServiceChargeCents,
		DiscountCents:      row.amounts.DiscountCents,
		TotalCents:         row.amounts.TotalCents,
		Status:             row.status,
		PaymentStatus:      row.paymentStatus,
		CreatedAt:          row.createdAt,
		UpdatedAt:          row.updatedAt,
	}, nil
}

func (r *ReadStore) ListRedemptions(ctx context.Context, orderID uuid.UUID) ([]*queries.RedemptionRecordView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*queries.RedemptionRecordView
	for key, row := range r.store.ledger {
		if key.orderID != orderID {
			continue
		}
		out = append(out, &queries.RedemptionRecordView{
			OrderID:        key.orderID,
			InstrumentID:   key.instrumentID,
			InstrumentKind: row.kind,
			AmountCents:    row.amountCents,
			IdempotencyKey: key.orderID.String() + ":" + key.instrumentID.String(),
			CreatedAt:      row.createdAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// The queries interfaces all name their lookup FindViewByID, so the
// per-aggregate surfaces are thin renames over the shared store.

type resourceReads struct{ *ReadStore }

func (r resourceReads) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.ResourceView, error) {
	return r.FindResourceViewByID(ctx, id)
}

func (r resourceReads) List(ctx context.Context, limit int32) ([]*queries.ResourceView, error) {
	return r.ListResources(ctx, limit)
}

type orderReads struct{ *ReadStore }

func (r orderReads) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	return r.FindOrderViewByID(ctx, id)
}

func (r *ReadStore) Reservations() queries.ReservationReadStore { return r }
func (r *ReadStore) Resources() queries.ResourceReadStore       { return resourceReads{r} }
func (r *ReadStore) Orders() queries.OrderReadStore             { return orderReads{r} }

// BillingReads implementation.

func (r *ReadStore) CouponByCode(ctx context.Context, code string) (*billing.Coupon, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.coupons[code]
	if !ok {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "coupon not found", nil)
	}
	c := row.coupon
	return &c, nil
}

func (r *ReadStore) LoyaltyByUser(ctx context.Context, userID uuid.UUID) (*billing.LoyaltyAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.loyalty[userID]
	if !ok {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "loyalty account not found", nil)
	}
	return &a, nil
}

func (r *ReadStore) GiftCardByCode(ctx context.Context, code string) (*billing.GiftCard, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	g, ok := r.store.giftCards[code]
	if !ok {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "gift card not found", nil)
	}
	return &g, nil
}
