package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront/internal/payment"
	"storefront/internal/service"
	"storefront/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	checkout   *service.CheckoutService
	orders     *service.OrderService
	catalog    *service.CatalogService
	uploadsDir string
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	checkout *service.CheckoutService,
	orders *service.OrderService,
	catalog *service.CatalogService,
	uploadsDir string,
) *Handler {
	return &Handler{
		checkout:   checkout,
		orders:     orders,
		catalog:    catalog,
		uploadsDir: uploadsDir,
		logger:     util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", h.uploadsDir)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/checkout", h.createCheckoutSession)

		apiGroup.GET("/orders", h.listOrders)
		apiGroup.POST("/orders/webhook", h.handleWebhook)

		apiGroup.GET("/products", h.listProducts)
		apiGroup.GET("/products/:id", h.getProduct)
		apiGroup.POST("/products", h.createProduct)
		apiGroup.PUT("/products/:id", h.updateProduct)
		apiGroup.DELETE("/products/:id", h.deleteProduct)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

type checkoutRequest struct {
	Cart []payment.CartItem `json:"cart"`
}

// createCheckoutSession handles POST /api/checkout
func (h *Handler) createCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	url, err := h.checkout.CreateSession(c.Request.Context(), req.Cart)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		h.logger.Error("Checkout session creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// handleWebhook handles POST /api/orders/webhook. The body must stay
// untouched: signature verification runs over the raw bytes.
func (h *Handler) handleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook Error: unable to read body")
		return
	}

	event, err := h.orders.ProcessWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrVerification) {
			// Untrusted peer, recovered locally: client error, no fault.
			c.String(http.StatusBadRequest, "Webhook Error: signature verification failed")
			return
		}
		h.logger.Error("Webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	h.logger.Debug("Webhook acknowledged", zap.String("type", event.Type))
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// listOrders handles GET /api/orders
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// listProducts handles GET /api/products
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// getProduct handles GET /api/products/:id
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// createProduct handles POST /api/products (multipart form, optional
// image file field)
func (h *Handler) createProduct(c *gin.Context) {
	input, ok := h.productInput(c)
	if !ok {
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// updateProduct handles PUT /api/products/:id
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	input, ok := h.productInput(c)
	if !ok {
		return
	}

	product, replacedImage, err := h.catalog.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	h.removeImageFile(replacedImage)
	c.JSON(http.StatusOK, product)
}

// deleteProduct handles DELETE /api/products/:id
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	image, err := h.catalog.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	h.removeImageFile(image)
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

func (h *Handler) productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return 0, false
	}
	return id, true
}

// productInput parses the multipart form of a create/update request and
// stores an uploaded image, if any, under the uploads directory.
func (h *Handler) productInput(c *gin.Context) (service.ProductInput, bool) {
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return service.ProductInput{}, false
	}

	input := service.ProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		Active:      c.PostForm("active") == "true",
	}

	file, err := c.FormFile("image")
	if err != nil {
		// No image uploaded.
		return input, true
	}

	filename := uuid.New().String() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadsDir, filename)); err != nil {
		h.logger.Error("Failed to store uploaded image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return service.ProductInput{}, false
	}

	imageURL := "/uploads/" + filename
	input.Image = &imageURL
	return input, true
}

// removeImageFile deletes a previously stored image file referenced by
// its /uploads URL.
func (h *Handler) removeImageFile(image *string) {
	if image == nil {
		return
	}

	name := strings.TrimPrefix(*image, "/uploads/")
	if name == *image || name == "" || strings.Contains(name, "/") {
		return
	}

	if err := os.Remove(filepath.Join(h.uploadsDir, name)); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("Failed to remove image file", zap.String("image", *image), zap.Error(err))
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
