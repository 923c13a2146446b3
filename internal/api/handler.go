package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"supply-service/internal/reconcile"
	"supply-service/internal/service"
	"supply-service/internal/store"
	"supply-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Roles allowed to delete orders. Authentication itself is upstream; the
// gateway forwards the verified role in a header.
const (
	headerStaffRole = "X-Staff-Role"
	headerStaffID   = "X-Staff-ID"
	roleManager     = "manager"
	roleAdmin       = "admin"
)

// Handler contains HTTP handlers
type Handler struct {
	supplyService *service.SupplyService
}

// NewHandler creates a new HTTP handler
func NewHandler(supplyService *service.SupplyService) *Handler {
	return &Handler{
		supplyService: supplyService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/supply-orders", h.createOrder)
		v1.GET("/supply-orders/:id", h.getOrder)
		v1.POST("/supply-orders/:id/returns", h.processReturn)
		v1.POST("/supply-orders/:id/acceptances", h.acceptReturn)
		v1.POST("/supply-orders/:id/payments", h.processPayment)
		v1.POST("/supply-orders/:id/cancel", h.cancelOrder)
		v1.DELETE("/supply-orders/:id", h.deleteOrder)
		v1.GET("/stores/:store_id/pending-returns", h.listPendingReturns)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createOrder handles supply order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	view, err := h.supplyService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// getOrder returns the order with items and full event history
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	view, err := h.supplyService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// processReturn records a return event against an order
func (h *Handler) processReturn(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req service.ProcessReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	view, err := h.supplyService.ProcessReturn(c.Request.Context(), orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// acceptReturn records an acceptance event against an order
func (h *Handler) acceptReturn(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req service.AcceptReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	view, err := h.supplyService.AcceptReturn(c.Request.Context(), orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// processPayment records a payment against an order
func (h *Handler) processPayment(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req service.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	view, err := h.supplyService.ProcessPayment(c.Request.Context(), orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// cancelOrder voids a non-terminal order
func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	view, err := h.supplyService.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// deleteOrder removes a non-completed order and its history; requires an
// elevated role
func (h *Handler) deleteOrder(c *gin.Context) {
	role := c.GetHeader(headerStaffRole)
	if role != roleManager && role != roleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Deleting orders requires an elevated role",
		})
		return
	}

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	staffID, _ := strconv.ParseInt(c.GetHeader(headerStaffID), 10, 64)

	if err := h.supplyService.DeleteOrder(c.Request.Context(), orderID, staffID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// listPendingReturns lists orders in a store with goods awaiting acceptance
func (h *Handler) listPendingReturns(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Param("store_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	pending, err := h.supplyService.ListPendingReturns(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending_returns": pending})
}

func orderIDParam(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return orderID, true
}

// respondError maps the error taxonomy onto HTTP statuses. The kind travels
// in the "kind" field so callers can branch without parsing messages.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reconcile.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"kind": "invalid_quantity", "error": err.Error()})
	case errors.Is(err, reconcile.ErrExceedsBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"kind": "exceeds_balance", "error": err.Error()})
	case errors.Is(err, store.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"kind": "order_not_found", "error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"kind": "invalid_transition", "error": err.Error()})
	case errors.Is(err, store.ErrContention):
		c.JSON(http.StatusConflict, gin.H{"kind": "contention", "error": err.Error(), "retryable": true})
	case errors.Is(err, service.ErrCollaboratorUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"kind": "collaborator_unavailable", "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "internal", "error": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
