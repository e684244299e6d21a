package memstore

import (
	"sync"
	"time"

	"booking-core/internal/domain/billing"
	"booking-core/internal/domain/order"
	"booking-core/internal/domain/reservation"
	"booking-core/internal/pkg/clock"

	"github.com/google/uuid"
)

// Store is the in-memory persistence backend. It keeps the same tables the
// postgres backend does and serializes every unit of work behind one mutex,
// which gives the memory driver strictly stronger isolation than the
// database one. Useful for local runs and for concurrency tests that would
// otherwise need a running database.
type Store struct {
	mu    sync.Mutex
	clock clock.Clock

	resources    map[uuid.UUID]resourceRow
	reservations map[uuid.UUID]reservationRow
	byIdemKey    map[uuid.UUID]uuid.UUID
	orders       map[uuid.UUID]orderRow
	coupons      map[string]couponRow
	loyalty      map[uuid.UUID]billing.LoyaltyAccount
	giftCards    map[string]billing.GiftCard
	ledger       map[ledgerKey]ledgerRow
	jobs         []notificationJob
}

type resourceRow struct {
	id         uuid.UUID
	name       string
	capacity   int
	status     string
	archivedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

type reservationRow struct {
	id              uuid.UUID
	resourceID      uuid.UUID
	userID          uuid.UUID
	kind            string
	start           time.Time
	end             time.Time
	occupancy       int
	status          string
	notes           []reservation.Annotation
	actualOccupancy int
	actualCostCents int64
	idempotencyKey  uuid.UUID
	createdAt       time.Time
	updatedAt       time.Time
}

type orderRow struct {
	id            uuid.UUID
	userID        uuid.UUID
	amounts       order.Amounts
	status        string
	paymentStatus string
	createdAt     time.Time
	updatedAt     time.Time
}

type couponRow struct {
	coupon        billing.Coupon
	usesRemaining *int64
}

type ledgerKey struct {
	orderID      uuid.UUID
	instrumentID uuid.UUID
}

type ledgerRow struct {
	kind        string
	amountCents int64
	points      int64
	createdAt   time.Time
}

type notificationJob struct {
	id      uuid.UUID
	kind    string
	topic   string
	payload []byte
	runAt   time.Time
}

func New(clk clock.Clock) *Store {
	return &Store{
		clock:        clk,
		resources:    make(map[uuid.UUID]resourceRow),
		reservations: make(map[uuid.UUID]reservationRow),
		byIdemKey:    make(map[uuid.UUID]uuid.UUID),
		orders:       make(map[uuid.UUID]orderRow),
		coupons:      make(map[string]couponRow),
		loyalty:      make(map[uuid.UUID]billing.LoyaltyAccount),
		giftCards:    make(map[string]billing.GiftCard),
		ledger:       make(map[ledgerKey]ledgerRow),
	}
}

// snapshot captures enough state to roll a failed unit of work back.
func (s *Store) snapshot() *Store {
	c := &Store{
		resources:    make(map[uuid.UUID]resourceRow, len(s.resources)),
		reservations: make(map[uuid.UUID]reservationRow, len(s.reservations)),
		byIdemKey:    make(map[uuid.UUID]uuid.UUID, len(s.byIdemKey)),
		orders:       make(map[uuid.UUID]orderRow, len(s.orders)),
		coupons:      make(map[string]couponRow, len(s.coupons)),
		loyalty:      make(map[uuid.UUID]billing.LoyaltyAccount, len(s.loyalty)),
		giftCards:    make(map[string]billing.GiftCard, len(s.giftCards)),
		ledger:       make(map[ledgerKey]ledgerRow, len(s.ledger)),
		jobs:         append([]notificationJob(nil), s.jobs...),
	}
	for k, v := range s.resources {
		c.resources[k] = v
	}
	for k, v := range s.reservations {
		v.notes = append([]reservation.Annotation(nil), v.notes...)
		c.reservations[k] = v
	}
	for k, v := range s.byIdemKey {
		c.byIdemKey[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.coupons {
		if v.usesRemaining != nil {
			u := *v.usesRemaining
			v.usesRemaining = &u
		}
		c.coupons[k] = v
	}
	for k, v := range s.loyalty {
		c.loyalty[k] = v
	}
	for k, v := range s.giftCards {
		c.giftCards[k] = v
	}
	for k, v := range s.ledger {
		c.ledger[k] = v
	}
	return c
}

func (s *Store) restore(snap *Store) {
	s.resources = snap.resources
	s.reservations = snap.reservations
	s.byIdemKey = snap.byIdemKey
	s.orders = snap.orders
	s.coupons = snap.coupons
	s.loyalty = snap.loyalty
	s.giftCards = snap.giftCards
	s.ledger = snap.ledger
	s.jobs = snap.jobs
}

// Seeding helpers for tests and local bootstrap.

func (s *Store) SeedCoupon(c billing.Coupon, usesRemaining *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if usesRemaining != nil {
		u := *usesRemaining
		usesRemaining = &u
	}
	s.coupons[c.Code] = couponRow{coupon: c, usesRemaining: usesRemaining}
}

func (s *Store) SeedLoyalty(a billing.LoyaltyAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loyalty[a.UserID] = a
}

func (s *Store) SeedGiftCard(g billing.GiftCard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.giftCards[g.Code] = g
}

// JobCount reports how many notification jobs have been queued.
func (s *Store) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
