//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"booking-core/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInterval(t *testing.T, start, end time.Time) reservation.Interval {
	t.Helper()
	iv, err := reservation.NewInterval(start, end)
	require.NoError(t, err)
	return iv
}

func TestInterval(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("基本成功ケース", func(t *testing.T) {
		iv, err := reservation.NewInterval(base, base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, base, iv.Start())
		assert.Equal(t, base.Add(2*time.Hour), iv.End())
		assert.Equal(t, 2*time.Hour, iv.Duration())
	})

	t.Run("終了が開始以前ならNG", func(t *testing.T) {
		_, err := reservation.NewInterval(base, base)
		assert.ErrorIs(t, err, reservation.ErrInvalidInterval)

		_, err = reservation.NewInterval(base, base.Add(-time.Minute))
		assert.ErrorIs(t, err, reservation.ErrInvalidInterval)
	})

	t.Run("UTCへ正規化される", func(t *testing.T) {
		jst := time.FixedZone("JST", 9*60*60)
		iv := mustInterval(t, base.In(jst), base.Add(time.Hour).In(jst))
		assert.Equal(t, time.UTC, iv.Start().Location())
		assert.True(t, iv.Start().Equal(base))
	})

	t.Run("重なり判定", func(t *testing.T) {
		tests := []struct {
			name     string
			a, b     reservation.Interval
			overlaps bool
		}{
			{
				name:     "完全に重なる",
				a:        mustInterval(t, base, base.Add(2*time.Hour)),
				b:        mustInterval(t, base, base.Add(2*time.Hour)),
				overlaps: true,
			},
			{
				name:     "部分的に重なる",
				a:        mustInterval(t, base, base.Add(2*time.Hour)),
				b:        mustInterval(t, base.Add(time.Hour), base.Add(3*time.Hour)),
				overlaps: true,
			},
			{
				name:     "片方がもう片方を包含する",
				a:        mustInterval(t, base, base.Add(4*time.Hour)),
				b:        mustInterval(t, base.Add(time.Hour), base.Add(2*time.Hour)),
				overlaps: true,
			},
			{
				name:     "背中合わせは重ならない",
				a:        mustInterval(t, base, base.Add(time.Hour)),
				b:        mustInterval(t, base.Add(time.Hour), base.Add(2*time.Hour)),
				overlaps: false,
			},
			{
				name:     "完全に離れている",
				a:        mustInterval(t, base, base.Add(time.Hour)),
				b:        mustInterval(t, base.Add(3*time.Hour), base.Add(4*time.Hour)),
				overlaps: false,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.overlaps, tt.a.Overlaps(tt.b))
				assert.Equal(t, tt.overlaps, tt.b.Overlaps(tt.a))
			})
		}
	})

	t.Run("日単位バケットは区間を包含する", func(t *testing.T) {
		iv := mustInterval(t,
			time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC),
			time.Date(2025, 6, 2, 0, 30, 0, 0, time.UTC),
		)
		from, to := iv.DayBucket()
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), to)
		assert.False(t, from.After(iv.Start()))
		assert.False(t, to.Before(iv.End()))
	})
}

func TestNoteLog(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("追記しても元のログは変わらない", func(t *testing.T) {
		original := reservation.NewNoteLog()
		appended := original.Append(at, "first")

		assert.True(t, original.IsEmpty())
		assert.Equal(t, 1, appended.Len())
	})

	t.Run("エントリは追記順に並ぶ", func(t *testing.T) {
		log := reservation.NewNoteLog().
			Append(at, "first").
			Append(at.Add(time.Minute), "second")

		entries := log.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "first", entries[0].Text)
		assert.Equal(t, "second", entries[1].Text)
	})

	t.Run("Entriesの戻り値を書き換えてもログに影響しない", func(t *testing.T) {
		log := reservation.NewNoteLog().Append(at, "keep")
		entries := log.Entries()
		entries[0].Text = "mutated"

		assert.Equal(t, "keep", log.Entries()[0].Text)
	})
}
