//go:build unit

package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"booking-core/internal/domain/reservation"
	"booking-core/internal/infra"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/commands"
	"booking-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createParams(resourceID uuid.UUID, kind string, start, end time.Time, occupancy int) commands.CreateReservationParams {
	return commands.CreateReservationParams{
		ResourceID: resourceID,
		Kind:       kind,
		StartTime:  start,
		EndTime:    end,
		Occupancy:  occupancy,
	}
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)

	t.Run("基本成功ケース", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		cmd := e.reservationCommands()

		note := "window please"
		params := createParams(resourceID, "booking", start, end, 4)
		params.Note = &note

		got, err := cmd.CreateReservation(ctx, params, uuid.New(), uuid.New())
		require.NoError(t, err)

		assert.False(t, got.IsReplayed)
		assert.Equal(t, reservation.StatusPending, got.Reservation.Status())
		assert.Equal(t, 4, got.Reservation.Occupancy())
		require.Len(t, got.Reservation.Notes().Entries(), 1)

		// Creation queues exactly one notification job in the same commit.
		assert.Equal(t, 1, e.store.JobCount())
	})

	t.Run("eventはdraftで始まる", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)

		got, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "event", start, end, 2), uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusDraft, got.Reservation.Status())
	})

	t.Run("冪等キー必須", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)

		_, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "booking", start, end, 1), uuid.New(), uuid.Nil)
		assert.ErrorIs(t, err, errs.ErrIdempotencyKeyRequired)
	})

	t.Run("未知の種別NG", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)

		_, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "walk_in", start, end, 1), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})

	t.Run("不正な区間NG", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)

		_, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "booking", end, start, 1), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrInvalidInterval)
	})

	t.Run("存在しないリソースNG", func(t *testing.T) {
		e := newEnv()

		_, err := e.reservationCommands().CreateReservation(ctx, createParams(uuid.New(), "booking", start, end, 1), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrResourceNotFound)
	})

	t.Run("受付停止中のリソースNG", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedUnofferableResource(t)

		_, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "booking", start, end, 1), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrResourceNotOfferable)
	})

	t.Run("収容人数超過NG", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 3)

		_, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "booking", start, end, 4), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrExceedsCapacity)
	})

	t.Run("重なる区間NG", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		cmd := e.reservationCommands()

		_, err := cmd.CreateReservation(ctx, createParams(resourceID, "booking", start, end, 2), uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = cmd.CreateReservation(ctx, createParams(resourceID, "booking", start.Add(time.Hour), end.Add(time.Hour), 2), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrResourceUnavailable)
	})

	t.Run("背中合わせの区間OK", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		cmd := e.reservationCommands()

		_, err := cmd.CreateReservation(ctx, createParams(resourceID, "booking", start, end, 2), uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = cmd.CreateReservation(ctx, createParams(resourceID, "booking", end, end.Add(time.Hour), 2), uuid.New(), uuid.New())
		assert.NoError(t, err)
	})

	t.Run("別リソースなら同じ区間OK", func(t *testing.T) {
		e := newEnv()
		first := e.seedResource(t, 10)
		second := e.seedResource(t, 10)
		cmd := e.reservationCommands()

		_, err := cmd.CreateReservation(ctx, createParams(first, "booking", start, end, 2), uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = cmd.CreateReservation(ctx, createParams(second, "booking", start, end, 2), uuid.New(), uuid.New())
		assert.NoError(t, err)
	})

	t.Run("同じ冪等キーは元の予約を返す", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		cmd := e.reservationCommands()
		key := uuid.New()
		userID := uuid.New()

		first, err := cmd.CreateReservation(ctx, createParams(resourceID, "booking", start, end, 2), userID, key)
		require.NoError(t, err)
		require.False(t, first.IsReplayed)

		second, err := cmd.CreateReservation(ctx, createParams(resourceID, "booking", start, end, 2), userID, key)
		require.NoError(t, err)

		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.Reservation.ID(), second.Reservation.ID())
		// The replay must not queue another notification job.
		assert.Equal(t, 1, e.store.JobCount())
	})

	t.Run("冪等キー競争に負けた側は勝者の予約を返す", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		key := uuid.New()
		userID := uuid.New()

		winner, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "booking", start, end, 2), userID, key)
		require.NoError(t, err)

		// A loser whose in-transaction replay check ran before the winner
		// committed: the insert hits the unique key and aborts the
		// transaction, so the winner must be read outside it.
		loser := commands.NewReservationCommands(&staleReadUoW{UnitOfWork: e.uow}, e.clock)
		got, err := loser.CreateReservation(ctx, createParams(resourceID, "booking", start.Add(4*time.Hour), end.Add(4*time.Hour), 2), userID, key)
		require.NoError(t, err)

		assert.True(t, got.IsReplayed)
		assert.Equal(t, winner.Reservation.ID(), got.Reservation.ID())
	})

	t.Run("同時リクエストで成功するのは1件だけ", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		cmd := e.reservationCommands()

		const workers = 16
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			created  int
			rejected int
		)

		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := cmd.CreateReservation(ctx, createParams(resourceID, "booking", start, end, 2), uuid.New(), uuid.New())
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, errs.ErrResourceUnavailable):
					rejected++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, workers-1, rejected)
	})
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)

	t.Run("空いていればtrue", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)

		free, err := e.reservationCommands().IsAvailable(ctx, resourceID, start, end, nil)
		require.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("重なる予約があればfalse", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		cmd := e.reservationCommands()

		_, err := cmd.CreateReservation(ctx, createParams(resourceID, "booking", start, end, 2), uuid.New(), uuid.New())
		require.NoError(t, err)

		free, err := cmd.IsAvailable(ctx, resourceID, start.Add(time.Hour), end.Add(time.Hour), nil)
		require.NoError(t, err)
		assert.False(t, free)
	})

	t.Run("除外IDを渡せば自分自身は衝突しない", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		cmd := e.reservationCommands()

		created, err := cmd.CreateReservation(ctx, createParams(resourceID, "booking", start, end, 2), uuid.New(), uuid.New())
		require.NoError(t, err)
		selfID := created.Reservation.ID()

		free, err := cmd.IsAvailable(ctx, resourceID, start, end, &selfID)
		require.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("受付停止中のリソースはfalse", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedUnofferableResource(t)

		free, err := e.reservationCommands().IsAvailable(ctx, resourceID, start, end, nil)
		require.NoError(t, err)
		assert.False(t, free)
	})

	t.Run("存在しないリソースNG", func(t *testing.T) {
		e := newEnv()

		_, err := e.reservationCommands().IsAvailable(ctx, uuid.New(), start, end, nil)
		assert.ErrorIs(t, err, errs.ErrResourceNotFound)
	})
}

// staleReadUoW simulates losing an idempotency-key race: the in-transaction
// replay check misses the winner, so the insert fails on the unique key.
// Reads() stays untouched for the out-of-transaction recovery.
type staleReadUoW struct {
	shared.UnitOfWork
}

func (u *staleReadUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.UnitOfWork.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return fn(ctx, &staleReadTx{Tx: tx})
	})
}

type staleReadTx struct {
	shared.Tx
}

func (t *staleReadTx) Reservations() shared.ReservationRepository {
	return &staleReadReservations{ReservationRepository: t.Tx.Reservations()}
}

type staleReadReservations struct {
	shared.ReservationRepository
}

func (r *staleReadReservations) FindByIdempotencyKey(_ context.Context, _ uuid.UUID) (*reservation.Reservation, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return nil, infra.WrapRepoErr(logger, infra.KindNotFound, "reservation not found", nil)
}
