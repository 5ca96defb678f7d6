package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kraken-commerce/backend/common/errors"
	"github.com/kraken-commerce/backend/common/logger"
	"github.com/kraken-commerce/backend/models"
	"github.com/kraken-commerce/backend/services"
	"go.uber.org/zap"
)

type OrderController struct {
	orders   *services.OrderService
	consumer *services.OrderConsumer
}

func NewOrderController(orders *services.OrderService, consumer *services.OrderConsumer) *OrderController {
	return &OrderController{orders: orders, consumer: consumer}
}

// GetAllOrders returns every order in the store
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.orders.GetAllOrders(c.Request.Context())
	if err != nil {
		logger.Error(c, "failed to list orders", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// GetUserOrders returns a customer's orders, optionally filtered by the
// orderDate query parameter. exact=true selects a single timestamp; otherwise
// the value is a prefix, e.g. ?orderDate=2026-01-15 selects a day.
func (oc *OrderController) GetUserOrders(c *gin.Context) {
	userName := c.Param("userName")
	orderDate := c.Query("orderDate")
	exact := c.Query("exact") == "true"

	if exact && orderDate != "" {
		order, err := oc.orders.GetOrder(c.Request.Context(), userName, orderDate)
		if err != nil {
			var appErr *apperrors.Error
			if errors.As(err, &appErr) {
				c.JSON(appErr.Code, gin.H{"error": appErr.Message})
				return
			}
			logger.Error(c, "failed to get order", err, zap.String("user_name", userName))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
			return
		}
		c.JSON(http.StatusOK, []models.Order{*order})
		return
	}

	orders, err := oc.orders.GetUserOrders(c.Request.Context(), userName, orderDate, exact)
	if err != nil {
		logger.Error(c, "failed to list orders", err, zap.String("user_name", userName))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// CreateOrder runs the consumer directly for a manually submitted checkout
// event. This is the synchronous administrative path; normal orders arrive
// through the event pipeline.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var event models.CheckoutEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	key, err := oc.consumer.Process(c.Request.Context(), &event)
	if err != nil {
		if services.IsPermanent(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error(c, "failed to create order", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": key})
}
