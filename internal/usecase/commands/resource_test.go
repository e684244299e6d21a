//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"booking-core/internal/domain/resource"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateResource(t *testing.T) {
	ctx := context.Background()

	t.Run("基本成功ケース", func(t *testing.T) {
		e := newEnv()

		got, err := e.resourceCommands().CreateResource(ctx, commands.CreateResourceParams{
			Name:     "Meeting Room B",
			Capacity: 8,
		})
		require.NoError(t, err)

		assert.Equal(t, "Meeting Room B", got.Name())
		assert.Equal(t, resource.StatusAvailable, got.Status())

		view, err := e.reads.FindResourceViewByID(ctx, got.ID())
		require.NoError(t, err)
		assert.Equal(t, 8, view.Capacity)
	})

	t.Run("不正な名前NG", func(t *testing.T) {
		e := newEnv()

		_, err := e.resourceCommands().CreateResource(ctx, commands.CreateResourceParams{Name: "  ", Capacity: 8})
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})

	t.Run("収容人数ゼロNG", func(t *testing.T) {
		e := newEnv()

		_, err := e.resourceCommands().CreateResource(ctx, commands.CreateResourceParams{Name: "Room", Capacity: 0})
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})
}

func TestArchiveResource(t *testing.T) {
	ctx := context.Background()

	t.Run("予約のないリソースは廃止できる", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)

		require.NoError(t, e.resourceCommands().ArchiveResource(ctx, resourceID))

		_, err := e.reads.FindResourceViewByID(ctx, resourceID)
		assert.Error(t, err)
	})

	t.Run("未来の予約があると廃止できない", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		start := testNow.Add(24 * time.Hour)

		_, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "booking", start, start.Add(time.Hour), 2), uuid.New(), uuid.New())
		require.NoError(t, err)

		err = e.resourceCommands().ArchiveResource(ctx, resourceID)
		assert.ErrorIs(t, err, errs.ErrResourceHasActiveBookings)
	})

	t.Run("予約をキャンセルすれば廃止できる", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		start := testNow.Add(24 * time.Hour)

		created, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "booking", start, start.Add(time.Hour), 2), uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = e.transitionCommands(&capturingNotifier{}).TransitionReservation(ctx, created.Reservation.ID(), commands.TransitionReservationParams{Action: "cancel"}, uuid.New())
		require.NoError(t, err)

		assert.NoError(t, e.resourceCommands().ArchiveResource(ctx, resourceID))
	})

	t.Run("過去に終わった予約は廃止を妨げない", func(t *testing.T) {
		e := newEnv()
		resourceID := e.seedResource(t, 10)
		// The store accepts historical rows; only intervals ending at or
		// after now count against archival.
		past := testNow.Add(-48 * time.Hour)

		_, err := e.reservationCommands().CreateReservation(ctx, createParams(resourceID, "booking", past, past.Add(time.Hour), 2), uuid.New(), uuid.New())
		require.NoError(t, err)

		assert.NoError(t, e.resourceCommands().ArchiveResource(ctx, resourceID))
	})

	t.Run("存在しないリソースNG", func(t *testing.T) {
		e := newEnv()

		err := e.resourceCommands().ArchiveResource(ctx, uuid.New())
		assert.ErrorIs(t, err, errs.ErrResourceNotFound)
	})
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("基本成功ケース", func(t *testing.T) {
		e := newEnv()
		userID := uuid.New()

		got, err := e.orderCommands().CreateOrder(ctx, commands.CreateOrderParams{
			SubtotalCents:      10000,
			TaxCents:           1100,
			ServiceChargeCents: 1000,
		}, userID)
		require.NoError(t, err)

		assert.Equal(t, userID, got.UserID())
		assert.Equal(t, int64(12100), got.Amounts().TotalCents)

		view, err := e.reads.FindOrderViewByID(ctx, got.ID())
		require.NoError(t, err)
		assert.Equal(t, "pending", view.Status)
		assert.Equal(t, "unpaid", view.PaymentStatus)
	})

	t.Run("負の金額NG", func(t *testing.T) {
		e := newEnv()

		_, err := e.orderCommands().CreateOrder(ctx, commands.CreateOrderParams{SubtotalCents: -1}, uuid.New())
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})
}
