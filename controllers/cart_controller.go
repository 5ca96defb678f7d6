package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kraken-commerce/backend/common/errors"
	"github.com/kraken-commerce/backend/common/logger"
	"github.com/kraken-commerce/backend/models"
	"github.com/kraken-commerce/backend/services"
	"go.uber.org/zap"
)

// CartRepo is the cart storage surface the controller needs.
type CartRepo interface {
	GetCart(ctx context.Context, userName string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userName string) error
	ListCarts(ctx context.Context) ([]models.Cart, error)
}

type CartController struct {
	repo      CartRepo
	publisher *services.CheckoutPublisher
}

func NewCartController(repo CartRepo, publisher *services.CheckoutPublisher) *CartController {
	return &CartController{repo: repo, publisher: publisher}
}

// GetCarts returns all live carts
func (cc *CartController) GetCarts(c *gin.Context) {
	carts, err := cc.repo.ListCarts(c.Request.Context())
	if err != nil {
		logger.Error(c, "failed to list carts", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list carts"})
		return
	}
	if carts == nil {
		carts = []models.Cart{}
	}
	c.JSON(http.StatusOK, carts)
}

type addItemRequest struct {
	UserName string          `json:"user_name" binding:"required"`
	Item     models.CartItem `json:"item" binding:"required"`
}

// AddItem adds or updates an item in the customer's cart
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Item.Quantity <= 0 || req.Item.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item"})
		return
	}

	ctx := c.Request.Context()
	cart, _ := cc.repo.GetCart(ctx, req.UserName)
	if cart == nil {
		cart = &models.Cart{
			UserName: req.UserName,
			Items:    []models.CartItem{},
		}
	}

	found := false
	for i, existing := range cart.Items {
		if existing.ProductID == req.Item.ProductID {
			cart.Items[i].Quantity += req.Item.Quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, req.Item)
	}

	if err := cc.repo.SaveCart(ctx, cart); err != nil {
		logger.Error(c, "failed to save cart", err, zap.String("user_name", req.UserName))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, cart)
}

// GetCart returns the current cart for a customer
func (cc *CartController) GetCart(c *gin.Context) {
	userName := c.Param("userName")

	cart, err := cc.repo.GetCart(c.Request.Context(), userName)
	if err != nil {
		logger.Error(c, "failed to get cart", err, zap.String("user_name", userName))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	if cart == nil {
		cart = &models.Cart{
			UserName: userName,
			Items:    []models.CartItem{},
		}
	}

	c.JSON(http.StatusOK, cart)
}

// DeleteCart removes the customer's cart
func (cc *CartController) DeleteCart(c *gin.Context) {
	userName := c.Param("userName")

	if err := cc.repo.DeleteCart(c.Request.Context(), userName); err != nil {
		logger.Error(c, "failed to delete cart", err, zap.String("user_name", userName))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cart deleted"})
}

// Checkout publishes a checkout event for the customer's cart. The response
// confirms hand-off to the pipeline, not order creation.
func (cc *CartController) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	eventID, err := cc.publisher.Checkout(c.Request.Context(), &req)
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		logger.Error(c, "checkout failed", err, zap.String("user_name", req.UserName))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "checkout initiated",
		"event_id": eventID,
	})
}
