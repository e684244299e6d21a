//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-core/internal/handler/api"
	resdto "booking-core/internal/handler/dto/response"
	"booking-core/internal/infra/memstore"
	"booking-core/internal/infra/notifier"
	"booking-core/internal/pkg/clock"
	"booking-core/internal/usecase/commands"
	"booking-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var handlerNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// ReservationHandlerTestSuite exercises the HTTP surface against the memory
// backend, with the auth middleware replaced by a context shim.
type ReservationHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	store  *memstore.Store
	userID uuid.UUID

	resourceCommands commands.ResourceCommands
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	clk := clock.NewMockClock(handlerNow)
	s.store = memstore.New(clk)
	s.userID = uuid.New()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := memstore.NewUoW(s.store, logger)
	reads := memstore.NewReadStore(s.store, logger)

	s.resourceCommands = commands.NewResourceCommands(uow, clk)

	handler := api.NewReservationHandler(
		commands.NewReservationCommands(uow, clk),
		commands.NewTransitionCommands(uow, notifier.NewLogNotifier(logger), clk, logger),
		queries.NewReservationQueries(reads.Reservations()),
	)

	s.router = gin.New()
	s.router.Use(func(c *gin.Context) {
		c.Set("user_id", s.userID)
		c.Set("user_role", "member")
		c.Next()
	})
	s.router.POST("/reservations", handler.CreateReservation)
	s.router.GET("/reservations", handler.GetUserReservations)
	s.router.GET("/reservations/:id", handler.GetReservation)
	s.router.POST("/reservations/:id/transition", handler.TransitionReservation)
	s.router.GET("/resources/:id/availability", handler.CheckAvailability)
}

func (s *ReservationHandlerTestSuite) seedResource(capacity int) uuid.UUID {
	res, err := s.resourceCommands.CreateResource(context.Background(), commands.CreateResourceParams{
		Name:     "Conference Room",
		Capacity: capacity,
	})
	s.Require().NoError(err)
	return res.ID()
}

func (s *ReservationHandlerTestSuite) postJSON(path string, body map[string]any, headers map[string]string) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ReservationHandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ReservationHandlerTestSuite) createBody(resourceID uuid.UUID) map[string]any {
	start := handlerNow.Add(24 * time.Hour)
	return map[string]any{
		"resource_id": resourceID,
		"kind":        "booking",
		"start_time":  start.Format(time.RFC3339),
		"end_time":    start.Add(2 * time.Hour).Format(time.RFC3339),
		"occupancy":   2,
	}
}

func (s *ReservationHandlerTestSuite) TestCreateReservation() {
	s.Run("201で作成される", func() {
		resourceID := s.seedResource(10)

		rec := s.postJSON("/reservations", s.createBody(resourceID), map[string]string{
			"Idempotency-Key": uuid.New().String(),
		})
		s.Equal(http.StatusCreated, rec.Code)

		var got resdto.ReservationResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.Equal(resourceID, got.ResourceID)
		s.Equal(s.userID, got.UserID)
		s.Equal("pending", got.Status)
		s.False(got.IsReplayed)
	})

	s.Run("同じ冪等キーの再送は200", func() {
		resourceID := s.seedResource(10)
		key := uuid.New().String()
		body := s.createBody(resourceID)

		first := s.postJSON("/reservations", body, map[string]string{"Idempotency-Key": key})
		s.Require().Equal(http.StatusCreated, first.Code)

		second := s.postJSON("/reservations", body, map[string]string{"Idempotency-Key": key})
		s.Equal(http.StatusOK, second.Code)

		var got resdto.ReservationResponse
		s.Require().NoError(json.Unmarshal(second.Body.Bytes(), &got))
		s.True(got.IsReplayed)
	})

	s.Run("冪等キーなしは400", func() {
		resourceID := s.seedResource(10)

		rec := s.postJSON("/reservations", s.createBody(resourceID), nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("重なる区間は409", func() {
		resourceID := s.seedResource(10)

		first := s.postJSON("/reservations", s.createBody(resourceID), map[string]string{"Idempotency-Key": uuid.New().String()})
		s.Require().Equal(http.StatusCreated, first.Code)

		second := s.postJSON("/reservations", s.createBody(resourceID), map[string]string{"Idempotency-Key": uuid.New().String()})
		s.Equal(http.StatusConflict, second.Code)
	})

	s.Run("収容人数超過は422", func() {
		resourceID := s.seedResource(1)
		body := s.createBody(resourceID)
		body["occupancy"] = 5

		rec := s.postJSON("/reservations", body, map[string]string{"Idempotency-Key": uuid.New().String()})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("存在しないリソースは404", func() {
		rec := s.postJSON("/reservations", s.createBody(uuid.New()), map[string]string{"Idempotency-Key": uuid.New().String()})
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("不正な種別は400", func() {
		resourceID := s.seedResource(10)
		body := s.createBody(resourceID)
		body["kind"] = "walk_in"

		rec := s.postJSON("/reservations", body, map[string]string{"Idempotency-Key": uuid.New().String()})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *ReservationHandlerTestSuite) TestTransitionReservation() {
	s.Run("200で遷移する", func() {
		resourceID := s.seedResource(10)
		created := s.postJSON("/reservations", s.createBody(resourceID), map[string]string{"Idempotency-Key": uuid.New().String()})
		s.Require().Equal(http.StatusCreated, created.Code)

		var res resdto.ReservationResponse
		s.Require().NoError(json.Unmarshal(created.Body.Bytes(), &res))

		rec := s.postJSON(fmt.Sprintf("/reservations/%s/transition", res.ID), map[string]any{"action": "confirm"}, nil)
		s.Equal(http.StatusOK, rec.Code)

		var got resdto.TransitionResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.Equal("pending", got.FromStatus)
		s.Equal("confirmed", got.ToStatus)
	})

	s.Run("不正な遷移は409", func() {
		resourceID := s.seedResource(10)
		created := s.postJSON("/reservations", s.createBody(resourceID), map[string]string{"Idempotency-Key": uuid.New().String()})
		s.Require().Equal(http.StatusCreated, created.Code)

		var res resdto.ReservationResponse
		s.Require().NoError(json.Unmarshal(created.Body.Bytes(), &res))

		rec := s.postJSON(fmt.Sprintf("/reservations/%s/transition", res.ID), map[string]any{"action": "check_out"}, nil)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("存在しない予約は404", func() {
		rec := s.postJSON(fmt.Sprintf("/reservations/%s/transition", uuid.New()), map[string]any{"action": "confirm"}, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *ReservationHandlerTestSuite) TestGetReservation() {
	s.Run("200で取得できる", func() {
		resourceID := s.seedResource(10)
		created := s.postJSON("/reservations", s.createBody(resourceID), map[string]string{"Idempotency-Key": uuid.New().String()})
		s.Require().Equal(http.StatusCreated, created.Code)

		var res resdto.ReservationResponse
		s.Require().NoError(json.Unmarshal(created.Body.Bytes(), &res))

		rec := s.get(fmt.Sprintf("/reservations/%s", res.ID))
		s.Equal(http.StatusOK, rec.Code)

		var got resdto.ReservationResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.Equal(res.ID, got.ID)
		s.Equal("Conference Room", got.ResourceName)
	})

	s.Run("存在しない予約は404", func() {
		rec := s.get(fmt.Sprintf("/reservations/%s", uuid.New()))
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("不正なIDは400", func() {
		rec := s.get("/reservations/not-a-uuid")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *ReservationHandlerTestSuite) TestGetUserReservations() {
	resourceID := s.seedResource(10)
	body := s.createBody(resourceID)
	rec := s.postJSON("/reservations", body, map[string]string{"Idempotency-Key": uuid.New().String()})
	s.Require().Equal(http.StatusCreated, rec.Code)

	list := s.get("/reservations")
	s.Equal(http.StatusOK, list.Code)

	var got []resdto.ReservationListResponse
	s.Require().NoError(json.Unmarshal(list.Body.Bytes(), &got))
	s.Require().Len(got, 1)
	s.Equal(resourceID, got[0].ResourceID)
}

func (s *ReservationHandlerTestSuite) TestCheckAvailability() {
	s.Run("空いていればtrue", func() {
		resourceID := s.seedResource(10)
		start := handlerNow.Add(24 * time.Hour)

		rec := s.get(fmt.Sprintf("/resources/%s/availability?start_time=%s&end_time=%s",
			resourceID,
			start.Format(time.RFC3339),
			start.Add(time.Hour).Format(time.RFC3339),
		))
		s.Equal(http.StatusOK, rec.Code)

		var got resdto.AvailabilityResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.True(got.Available)
	})

	s.Run("予約済みならfalse", func() {
		resourceID := s.seedResource(10)
		created := s.postJSON("/reservations", s.createBody(resourceID), map[string]string{"Idempotency-Key": uuid.New().String()})
		s.Require().Equal(http.StatusCreated, created.Code)

		start := handlerNow.Add(24 * time.Hour)
		rec := s.get(fmt.Sprintf("/resources/%s/availability?start_time=%s&end_time=%s",
			resourceID,
			start.Format(time.RFC3339),
			start.Add(time.Hour).Format(time.RFC3339),
		))
		s.Equal(http.StatusOK, rec.Code)

		var got resdto.AvailabilityResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.False(got.Available)
	})

	s.Run("パラメータ不足は400", func() {
		resourceID := s.seedResource(10)
		rec := s.get(fmt.Sprintf("/resources/%s/availability", resourceID))
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func TestReservationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}
