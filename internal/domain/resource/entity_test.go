//go:build unit

package resource_test

import (
	"strings"
	"testing"
	"time"

	"booking-core/internal/domain/resource"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTime() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func TestNewResource(t *testing.T) {
	t.Run("基本成功ケース", func(t *testing.T) {
		r, err := resource.NewResource(uuid.New(), "  Conference Room A  ", 12)
		require.NoError(t, err)

		assert.Equal(t, "Conference Room A", r.Name())
		assert.Equal(t, 12, r.Capacity())
		assert.Equal(t, resource.StatusAvailable, r.Status())
		assert.True(t, r.IsOfferable())
	})

	t.Run("名前検証", func(t *testing.T) {
		tests := []struct {
			name    string
			resName string
			errIs   error
		}{
			{name: "空文字NG", resName: "", errIs: resource.ErrEmptyResourceName},
			{name: "空白のみNG", resName: "   ", errIs: resource.ErrEmptyResourceName},
			{name: "長すぎる名前NG", resName: strings.Repeat("a", 256), errIs: resource.ErrResourceNameTooLong},
			{name: "上限ちょうどOK", resName: strings.Repeat("a", 255)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := resource.NewResource(uuid.New(), tt.resName, 1)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
					return
				}
				assert.NoError(t, err)
			})
		}
	})

	t.Run("収容人数ゼロ以下NG", func(t *testing.T) {
		_, err := resource.NewResource(uuid.New(), "Room", 0)
		assert.ErrorIs(t, err, resource.ErrNonPositiveCapacity)
	})
}

func TestResourceCanAccommodate(t *testing.T) {
	r, err := resource.NewResource(uuid.New(), "Room", 10)
	require.NoError(t, err)

	tests := []struct {
		name      string
		occupancy int
		want      bool
	}{
		{name: "収容人数以内OK", occupancy: 10, want: true},
		{name: "1名OK", occupancy: 1, want: true},
		{name: "超過NG", occupancy: 11, want: false},
		{name: "ゼロNG", occupancy: 0, want: false},
		{name: "負数NG", occupancy: -1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.CanAccommodate(tt.occupancy))
		})
	}
}

func TestResourceIsOfferable(t *testing.T) {
	tests := []struct {
		name   string
		status resource.OfferableStatus
		want   bool
	}{
		{name: "availableのみ受付可", status: resource.StatusAvailable, want: true},
		{name: "maintenanceは受付不可", status: resource.StatusMaintenance, want: false},
		{name: "reservedは受付不可", status: resource.StatusReserved, want: false},
		{name: "closedは受付不可", status: resource.StatusClosed, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resource.ReconstructResource(uuid.New(), "Room", 5, tt.status, testTime(), testTime())
			assert.Equal(t, tt.want, r.IsOfferable())
		})
	}
}

func TestNewOfferableStatus(t *testing.T) {
	t.Run("有効なステータスOK", func(t *testing.T) {
		s, err := resource.NewOfferableStatus("maintenance")
		require.NoError(t, err)
		assert.Equal(t, resource.StatusMaintenance, s)
	})

	t.Run("未知のステータスNG", func(t *testing.T) {
		_, err := resource.NewOfferableStatus("broken")
		assert.ErrorIs(t, err, resource.ErrInvalidStatus)
	})
}
