package api

import (
	"context"
	"errors"
	"net/http"

	reqdto "booking-core/internal/handler/dto/request"
	resdto "booking-core/internal/handler/dto/response"
	"booking-core/internal/handler/middleware"
	"booking-core/internal/pkg/errs"
	"booking-core/internal/usecase/commands"
	"booking-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orders      commands.OrderCommands
	transitions commands.TransitionCommands
	checkout    commands.CheckoutCommands
	queries     queries.OrderQueries
}

func NewOrderHandler(
	orders commands.OrderCommands,
	transitions commands.TransitionCommands,
	checkout commands.CheckoutCommands,
	qrs queries.OrderQueries,
) *OrderHandler {
	return &OrderHandler{
		orders:      orders,
		transitions: transitions,
		checkout:    checkout,
		queries:     qrs,
	}
}

// @Summary Create order
// @Description Create an order from its published amounts
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateOrderRequest true "Order request"
// @Success 201 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	created, err := h.orders.CreateOrder(c.Request.Context(), commands.CreateOrderParams{
		SubtotalCents:      req.SubtotalCents,
		TaxCents:           req.TaxCents,
		ServiceChargeCents: req.ServiceChargeCents,
	}, userID)
	if err != nil {
		if errors.Is(err, errs.ErrDomainValidation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Domain validation failed",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusCreated, resdto.FromOrder(created))
}

// @Summary Get order
// @Description Get order by ID
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID format",
		})
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary Advance order
// @Description Move the order one step along the fulfilment chain
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/advance [post]
func (h *OrderHandler) AdvanceOrder(c *gin.Context) {
	h.transitionOrder(c, h.transitions.AdvanceOrder)
}

// @Summary Cancel order
// @Description Cancel the order from any non-terminal status
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	h.transitionOrder(c, h.transitions.CancelOrder)
}

func (h *OrderHandler) transitionOrder(c *gin.Context, move func(ctx context.Context, orderID, actorID uuid.UUID) (*commands.TransitionResult, error)) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID format",
		})
		return
	}

	result, err := move(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, errs.ErrAlreadyCancelled):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order is already cancelled",
			})
		case errors.Is(err, errs.ErrInvalidStatusTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Invalid status transition",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.TransitionResponse{
		FromStatus: result.FromStatus,
		ToStatus:   result.ToStatus,
	})
}

// @Summary Preview checkout
// @Description Compute the stacked discount without consuming instruments
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.CheckoutRequest true "Instruments to stack"
// @Success 200 {object} resdto.CheckoutPreviewResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/checkout/preview [post]
func (h *OrderHandler) PreviewCheckout(c *gin.Context) {
	id, req, ok := h.bindCheckout(c)
	if !ok {
		return
	}

	preview, err := h.checkout.PreviewCheckout(c.Request.Context(), id, req)
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromPreview(preview))
}

// @Summary Commit checkout
// @Description Atomically consume the requested instruments and settle the order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.CheckoutRequest true "Instruments to stack"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/checkout [post]
func (h *OrderHandler) CommitCheckout(c *gin.Context) {
	id, req, ok := h.bindCheckout(c)
	if !ok {
		return
	}

	result, err := h.checkout.CommitCheckout(c.Request.Context(), id, req)
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCheckoutResult(result))
}

// @Summary List redemptions
// @Description List the instrument redemptions recorded against an order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {array} resdto.RedemptionRecordResponse
// @Failure 400 {object} map[string]string
// @Router /orders/{id}/redemptions [get]
func (h *OrderHandler) ListRedemptions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID format",
		})
		return
	}

	records, err := h.queries.GetRedemptions(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.RedemptionRecordResponse, len(records))
	for i, record := range records {
		response[i] = resdto.FromRedemptionRecordView(record)
	}

	c.JSON(http.StatusOK, response)
}

func (h *OrderHandler) bindCheckout(c *gin.Context) (uuid.UUID, commands.InstrumentsRequest, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID format",
		})
		return uuid.Nil, commands.InstrumentsRequest{}, false
	}

	var req reqdto.CheckoutRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return uuid.Nil, commands.InstrumentsRequest{}, false
	}

	return id, commands.InstrumentsRequest{
		CouponCode:    req.GetCouponCode(),
		LoyaltyPoints: req.LoyaltyPoints,
		GiftCardCode:  req.GetGiftCardCode(),
	}, true
}

func (h *OrderHandler) writeCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errors.Is(err, errs.ErrOrderNotPayable):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order is not payable",
		})
	case errors.Is(err, errs.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Coupon not found",
		})
	case errors.Is(err, errs.ErrCouponExpired):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Coupon is outside its validity window",
		})
	case errors.Is(err, errs.ErrCouponAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Coupon has already been used",
		})
	case errors.Is(err, errs.ErrLoyaltyAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Loyalty account not found",
		})
	case errors.Is(err, errs.ErrInsufficientLoyaltyPoints):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient loyalty points",
		})
	case errors.Is(err, errs.ErrGiftCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Gift card not found",
		})
	case errors.Is(err, errs.ErrInsufficientGiftCardBalance):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Gift card has no remaining balance",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
