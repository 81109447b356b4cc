package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/middleware"
	"github.com/crstnalianza/rabas-backend/internal/models"
	"github.com/crstnalianza/rabas-backend/internal/services"
)

// ProductHandler handles product CRUD and product image uploads
type ProductHandler struct {
	products   *database.ProductRepository
	businesses *database.BusinessRepository
	uploadSvc  *services.UploadService
	logger     *logrus.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *database.ProductRepository, businesses *database.BusinessRepository, uploadSvc *services.UploadService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		products:   products,
		businesses: businesses,
		uploadSvc:  uploadSvc,
		logger:     logger,
	}
}

// Create handles POST /products. The caller must own the business the
// product is filed under.
func (h *ProductHandler) Create(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	owned, err := h.businesses.OwnedBy(req.BusinessID, sessionCtx.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check business ownership")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create product",
		})
		return
	}
	if !owned {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "not_business_owner",
			"message": "You do not own this business",
		})
		return
	}

	product := &models.Product{
		BusinessID:       req.BusinessID,
		UserID:           sessionCtx.SubjectID,
		Category:         req.Category,
		ProductType:      req.ProductType,
		Name:             req.Name,
		Price:            req.Price,
		PricingUnit:      req.PricingUnit,
		BookingOperation: req.BookingOperation,
		Inclusions:       req.Inclusions,
		Terms:            req.Terms,
		Images:           req.Images,
	}

	if err := h.products.Create(product); err != nil {
		h.logger.WithError(err).Error("Failed to create product")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create product",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"product_id":  product.ID,
		"business_id": product.BusinessID,
	}).Info("Product created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// Get handles GET /products/:product_id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := parseInt64Param(c, "product_id")
	if !ok {
		return
	}

	product, err := h.products.GetByID(productID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Product not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch product")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch product",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// List handles GET /products. Filter by ?business_id= or ?category=.
func (h *ProductHandler) List(c *gin.Context) {
	var (
		products []models.Product
		err      error
	)

	if businessID, ok := parseInt64Query(c, "business_id"); ok {
		products, err = h.products.ListByBusiness(businessID)
	} else if category := c.Query("category"); category != "" {
		products, err = h.products.ListByCategory(category)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "business_id or category query parameter is required",
		})
		return
	}

	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Update handles PUT /products/:product_id, scoped to the owner
func (h *ProductHandler) Update(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	productID, ok := parseInt64Param(c, "product_id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	product := &models.Product{
		ID:               productID,
		UserID:           sessionCtx.SubjectID,
		Category:         req.Category,
		ProductType:      req.ProductType,
		Name:             req.Name,
		Price:            req.Price,
		PricingUnit:      req.PricingUnit,
		BookingOperation: req.BookingOperation,
		Inclusions:       req.Inclusions,
		Terms:            req.Terms,
		Images:           req.Images,
	}

	if err := h.products.Update(product); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Product not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to update product")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update product",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// Delete handles DELETE /products/:product_id. The product's uploaded
// images are unlinked from disk after the row is gone.
func (h *ProductHandler) Delete(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	productID, ok := parseInt64Param(c, "product_id")
	if !ok {
		return
	}

	images, err := h.products.Delete(productID, sessionCtx.SubjectID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Product not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to delete product")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to delete product",
		})
		return
	}

	for _, image := range images {
		h.uploadSvc.Remove(image.Path)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadImages handles POST /products/images, returning stored image
// entries the client then attaches to a product payload
func (h *ProductHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "multipart form is required",
		})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "at least one images file is required",
		})
		return
	}

	images := models.ProductImageList{}
	for _, file := range files {
		path, err := h.uploadSvc.Save(c, file, "product")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_upload",
				"message": err.Error(),
			})
			return
		}
		images = append(images, models.ProductImage{ID: uuid.NewString(), Path: path})
	}

	c.JSON(http.StatusCreated, gin.H{"images": images})
}
