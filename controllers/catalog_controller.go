package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kraken-commerce/backend/common/logger"
	"github.com/kraken-commerce/backend/models"
	"github.com/kraken-commerce/backend/repository"
)

type CatalogController struct {
	repo repository.CatalogRepo
}

func NewCatalogController(repo repository.CatalogRepo) *CatalogController {
	return &CatalogController{repo: repo}
}

// GetProducts returns all catalog entries
func (cc *CatalogController) GetProducts(c *gin.Context) {
	products, err := cc.repo.FindAll(c.Request.Context())
	if err != nil {
		logger.Error(c, "failed to list products", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// CreateProduct adds a catalog entry
func (cc *CatalogController) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if product.Name == "" || product.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product"})
		return
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := cc.repo.Create(c.Request.Context(), &product); err != nil {
		logger.Error(c, "failed to create product", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProduct returns one catalog entry by id
func (cc *CatalogController) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := cc.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c, "failed to get product", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct replaces a catalog entry
func (cc *CatalogController) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	existing, err := cc.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c, "failed to get product", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	product.ID = id
	product.CreatedAt = existing.CreatedAt

	if err := cc.repo.Update(c.Request.Context(), &product); err != nil {
		logger.Error(c, "failed to update product", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a catalog entry
func (cc *CatalogController) DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	if err := cc.repo.Delete(c.Request.Context(), id); err != nil {
		logger.Error(c, "failed to delete product", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}
