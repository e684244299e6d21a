//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"booking-core/internal/domain/reservation"
	"booking-core/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestReservation(t *testing.T, kind reservation.Kind) *reservation.Reservation {
	t.Helper()
	clk := clock.NewMockClock(testNow)
	iv := mustInterval(t, testNow.Add(time.Hour), testNow.Add(3*time.Hour))
	res, err := reservation.NewReservation(clk, uuid.New(), uuid.New(), kind, iv, 4, "")
	require.NoError(t, err)
	return res
}

func TestNewReservation(t *testing.T) {
	clk := clock.NewMockClock(testNow)
	iv := mustInterval(t, testNow, testNow.Add(time.Hour))

	t.Run("基本成功ケース", func(t *testing.T) {
		res, err := reservation.NewReservation(clk, uuid.New(), uuid.New(), reservation.KindEvent, iv, 3, "window seat")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, res.ID())
		assert.Equal(t, reservation.StatusDraft, res.Status())
		assert.Equal(t, 3, res.Occupancy())
		assert.Equal(t, 3, res.ActualOccupancy())
		assert.True(t, res.IsActive())

		entries := res.Notes().Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "window seat", entries[0].Text)
		assert.Equal(t, testNow, entries[0].At)
	})

	t.Run("空メモならログは空のまま", func(t *testing.T) {
		res, err := reservation.NewReservation(clk, uuid.New(), uuid.New(), reservation.KindBooking, iv, 1, "")
		require.NoError(t, err)
		assert.True(t, res.Notes().IsEmpty())
		assert.Equal(t, reservation.StatusPending, res.Status())
	})

	t.Run("人数ゼロ以下NG", func(t *testing.T) {
		_, err := reservation.NewReservation(clk, uuid.New(), uuid.New(), reservation.KindEvent, iv, 0, "")
		assert.ErrorIs(t, err, reservation.ErrNonPositiveOccupancy)
	})

	t.Run("ゼロ区間NG", func(t *testing.T) {
		_, err := reservation.NewReservation(clk, uuid.New(), uuid.New(), reservation.KindEvent, reservation.Interval{}, 1, "")
		assert.ErrorIs(t, err, reservation.ErrInvalidInterval)
	})
}

func TestReservationApply(t *testing.T) {
	clk := clock.NewMockClock(testNow)

	t.Run("遷移元ステータスを返す", func(t *testing.T) {
		res := newTestReservation(t, reservation.KindEvent)

		from, err := res.Apply(clk, reservation.ActionSchedule, reservation.TransitionParams{})
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusDraft, from)
		assert.Equal(t, reservation.StatusScheduled, res.Status())
	})

	t.Run("完了時に実績値を記録する", func(t *testing.T) {
		res := newTestReservation(t, reservation.KindEvent)
		_, err := res.Apply(clk, reservation.ActionSchedule, reservation.TransitionParams{})
		require.NoError(t, err)
		_, err = res.Apply(clk, reservation.ActionStart, reservation.TransitionParams{})
		require.NoError(t, err)

		occ := 3
		cost := int64(12500)
		_, err = res.Apply(clk, reservation.ActionComplete, reservation.TransitionParams{
			ActualOccupancy: &occ,
			ActualCostCents: &cost,
		})
		require.NoError(t, err)

		assert.Equal(t, reservation.StatusCompleted, res.Status())
		assert.Equal(t, 3, res.ActualOccupancy())
		assert.Equal(t, int64(12500), res.ActualCostCents())
		assert.True(t, res.IsTerminal())
	})

	t.Run("実績値未指定なら予定値のまま", func(t *testing.T) {
		res := newTestReservation(t, reservation.KindEvent)
		_, err := res.Apply(clk, reservation.ActionSchedule, reservation.TransitionParams{})
		require.NoError(t, err)
		_, err = res.Apply(clk, reservation.ActionStart, reservation.TransitionParams{})
		require.NoError(t, err)
		_, err = res.Apply(clk, reservation.ActionComplete, reservation.TransitionParams{})
		require.NoError(t, err)

		assert.Equal(t, 4, res.ActualOccupancy())
		assert.Equal(t, int64(0), res.ActualCostCents())
	})

	t.Run("キャンセル理由はメモに積まれる", func(t *testing.T) {
		res := newTestReservation(t, reservation.KindBooking)

		_, err := res.Apply(clk, reservation.ActionCancel, reservation.TransitionParams{Reason: "guest no-show"})
		require.NoError(t, err)

		assert.Equal(t, reservation.StatusCancelled, res.Status())
		entries := res.Notes().Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "cancelled: guest no-show", entries[0].Text)
	})

	t.Run("二重キャンセルは専用エラー", func(t *testing.T) {
		res := newTestReservation(t, reservation.KindEvent)
		_, err := res.Apply(clk, reservation.ActionCancel, reservation.TransitionParams{})
		require.NoError(t, err)

		from, err := res.Apply(clk, reservation.ActionCancel, reservation.TransitionParams{})
		assert.ErrorIs(t, err, reservation.ErrAlreadyCancelled)
		assert.Equal(t, reservation.StatusCancelled, from)
	})

	t.Run("不正な遷移でステータスは変わらない", func(t *testing.T) {
		res := newTestReservation(t, reservation.KindBooking)

		_, err := res.Apply(clk, reservation.ActionCheckOut, reservation.TransitionParams{})
		var terr *reservation.TransitionError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, reservation.StatusPending, res.Status())
	})
}

func TestFirstConflict(t *testing.T) {
	clk := clock.NewMockClock(testNow)
	resourceID := uuid.New()

	newRes := func(t *testing.T, start, end time.Time) *reservation.Reservation {
		t.Helper()
		iv := mustInterval(t, start, end)
		res, err := reservation.NewReservation(clk, resourceID, uuid.New(), reservation.KindBooking, iv, 2, "")
		require.NoError(t, err)
		return res
	}

	requested := mustInterval(t, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

	t.Run("重なる予約を返す", func(t *testing.T) {
		overlapping := newRes(t, testNow.Add(90*time.Minute), testNow.Add(3*time.Hour))
		existing := []*reservation.Reservation{
			newRes(t, testNow, testNow.Add(time.Hour)),
			overlapping,
		}

		got := reservation.FirstConflict(requested, existing, nil)
		require.NotNil(t, got)
		assert.Equal(t, overlapping.ID(), got.ID())
	})

	t.Run("背中合わせの予約は衝突しない", func(t *testing.T) {
		existing := []*reservation.Reservation{
			newRes(t, testNow, testNow.Add(time.Hour)),
			newRes(t, testNow.Add(2*time.Hour), testNow.Add(3*time.Hour)),
		}
		assert.Nil(t, reservation.FirstConflict(requested, existing, nil))
	})

	t.Run("終端の予約は無視される", func(t *testing.T) {
		cancelled := newRes(t, testNow.Add(time.Hour), testNow.Add(2*time.Hour))
		_, err := cancelled.Apply(clk, reservation.ActionCancel, reservation.TransitionParams{})
		require.NoError(t, err)

		assert.Nil(t, reservation.FirstConflict(requested, []*reservation.Reservation{cancelled}, nil))
	})

	t.Run("除外IDの予約は衝突扱いしない", func(t *testing.T) {
		self := newRes(t, testNow.Add(time.Hour), testNow.Add(2*time.Hour))
		selfID := self.ID()

		assert.Nil(t, reservation.FirstConflict(requested, []*reservation.Reservation{self}, &selfID))
	})
}
