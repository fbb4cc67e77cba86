package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/order"
	"storefront-service/internal/search"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const sessionHeader = "X-Session-ID"

// ProductSource supplies catalog data to the handlers.
type ProductSource interface {
	Products(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id int64) (models.Product, bool, error)
	Banners(ctx context.Context) ([]models.Banner, error)
	Comments(ctx context.Context) ([]models.Comment, error)
}

// OrderSource fetches canonical orders from the backend.
type OrderSource interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
}

// Canceller runs the cancellation workflow for a fetched order.
type Canceller interface {
	Cancel(ctx context.Context, o *models.Order) error
}

// SnapshotStore persists checkout snapshots. nil disables persistence.
type SnapshotStore interface {
	CreateCheckoutSnapshot(ctx context.Context, snap *models.CheckoutSnapshot) error
	GetSnapshotsBySessionID(ctx context.Context, sessionID string) ([]models.CheckoutSnapshot, error)
}

// CheckoutPublisher publishes the CartCheckedOut event. nil disables it.
type CheckoutPublisher interface {
	PublishCartCheckedOut(ctx context.Context, event *models.CartCheckedOutEvent) error
}

// Handler contains HTTP handlers
type Handler struct {
	catalog   ProductSource
	engine    *search.Engine
	carts     *cart.Manager
	orders    OrderSource
	canceller Canceller
	snapshots SnapshotStore
	publisher CheckoutPublisher
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog ProductSource,
	engine *search.Engine,
	carts *cart.Manager,
	orders OrderSource,
	canceller Canceller,
	snapshots SnapshotStore,
	publisher CheckoutPublisher,
) *Handler {
	return &Handler{
		catalog:   catalog,
		engine:    engine,
		carts:     carts,
		orders:    orders,
		canceller: canceller,
		snapshots: snapshots,
		publisher: publisher,
		logger:    util.GetLogger(),
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
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/search", h.searchProducts)
		v1.GET("/banners", h.listBanners)
		v1.GET("/comments", h.listComments)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:productId", h.updateCartItem)
		v1.DELETE("/cart/items/:productId", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)
		v1.POST("/checkout", h.checkout)
		v1.GET("/checkout/history", h.checkoutHistory)

		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:id/cancel", h.cancelOrder)
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

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.Products(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch catalog",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, ok, err := h.catalog.ProductByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch catalog",
			"details": err.Error(),
		})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) searchProducts(c *gin.Context) {
	products, err := h.catalog.Products(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch catalog",
			"details": err.Error(),
		})
		return
	}

	query := c.Query("q")
	util.SearchQueriesTotal.Inc()

	c.JSON(http.StatusOK, gin.H{
		"results": h.engine.Filter(products, query),
		"total":   h.engine.CountMatches(products, query),
	})
}

func (h *Handler) listBanners(c *gin.Context) {
	banners, err := h.catalog.Banners(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch banners", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, banners)
}

func (h *Handler) listComments(c *gin.Context) {
	comments, err := h.catalog.Comments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch comments", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, comments)
}

// sessionID returns the caller's cart session, minting one when absent.
// The id is always echoed back so clients can persist it.
func (h *Handler) sessionID(c *gin.Context) string {
	sid := c.GetHeader(sessionHeader)
	if sid == "" {
		sid = uuid.New().String()
	}
	c.Header(sessionHeader, sid)
	return sid
}

func (h *Handler) cartResponse(c *gin.Context, sid string, store *cart.Store) {
	c.JSON(http.StatusOK, gin.H{
		"session_id": sid,
		"lines":      store.Lines(),
		"subtotal":   store.Subtotal(),
		"is_empty":   store.IsEmpty(),
	})
}

func (h *Handler) getCart(c *gin.Context) {
	sid := h.sessionID(c)
	h.cartResponse(c, sid, h.carts.Cart(c.Request.Context(), sid))
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, ok, err := h.catalog.ProductByID(c.Request.Context(), req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch catalog",
			"details": err.Error(),
		})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	sid := h.sessionID(c)
	store := h.carts.Cart(c.Request.Context(), sid)

	// Non-positive quantities are silent no-ops inside the store; the
	// response simply reflects the unchanged cart.
	store.AddToCart(product, req.Quantity)
	h.cartResponse(c, sid, store)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	sid := h.sessionID(c)
	store := h.carts.Cart(c.Request.Context(), sid)
	store.UpdateQuantity(productID, req.Quantity)
	h.cartResponse(c, sid, store)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	sid := h.sessionID(c)
	store := h.carts.Cart(c.Request.Context(), sid)
	store.RemoveFromCart(productID)
	h.cartResponse(c, sid, store)
}

func (h *Handler) clearCart(c *gin.Context) {
	sid := h.sessionID(c)
	store := h.carts.Cart(c.Request.Context(), sid)
	store.ClearCart()
	h.cartResponse(c, sid, store)
}

// checkout hands the cart off: persist a snapshot, publish the event,
// then clear the cart. The cart is left intact when persistence fails so
// the user can retry.
func (h *Handler) checkout(c *gin.Context) {
	ctx := c.Request.Context()
	sid := h.sessionID(c)
	store := h.carts.Cart(ctx, sid)

	if store.IsEmpty() {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	lines := store.Lines()
	snap := &models.CheckoutSnapshot{
		ID:        uuid.New().String(),
		SessionID: sid,
		Subtotal:  store.Subtotal(),
		Lines:     make([]models.SnapshotLine, 0, len(lines)),
	}
	for _, line := range lines {
		snap.Lines = append(snap.Lines, models.SnapshotLine{
			SnapshotID:  snap.ID,
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.EffectivePrice(),
		})
	}

	if h.snapshots != nil {
		if err := h.snapshots.CreateCheckoutSnapshot(ctx, snap); err != nil {
			util.CheckoutsFailedTotal.WithLabelValues("db_error").Inc()
			h.logger.Error("Failed to persist checkout snapshot", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete checkout"})
			return
		}
	}

	if h.publisher != nil {
		event := &models.CartCheckedOutEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCartCheckedOut,
				Timestamp: time.Now(),
			},
			SessionID:  sid,
			SnapshotID: snap.ID,
			Subtotal:   snap.Subtotal.String(),
			Items:      make([]models.CartLineData, 0, len(snap.Lines)),
		}
		for _, line := range snap.Lines {
			event.Items = append(event.Items, models.CartLineData{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice.String(),
			})
		}
		if err := h.publisher.PublishCartCheckedOut(ctx, event); err != nil {
			h.logger.Error("Failed to publish CartCheckedOut event", zap.Error(err))
		}
	}

	store.ClearCart()
	h.carts.Forget(ctx, sid)
	util.CheckoutsTotal.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"snapshot_id": snap.ID,
		"subtotal":    snap.Subtotal,
	})
}

// checkoutHistory lists a session's past checkout hand-offs, newest first.
func (h *Handler) checkoutHistory(c *gin.Context) {
	sid := h.sessionID(c)

	snaps := []models.CheckoutSnapshot{}
	if h.snapshots != nil {
		found, err := h.snapshots.GetSnapshotsBySessionID(c.Request.Context(), sid)
		if err != nil {
			h.logger.Error("Failed to load checkout history",
				zap.String("session_id", sid),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load checkout history"})
			return
		}
		snaps = append(snaps, found...)
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sid,
		"snapshots":  snaps,
	})
}

func (h *Handler) getOrder(c *gin.Context) {
	o, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":       o,
		"cancellable": o.Status == models.StatusPending && order.IsCancellable(o.CreatedAt, time.Now()),
	})
}

func (h *Handler) cancelOrder(c *gin.Context) {
	ctx := c.Request.Context()
	o, err := h.orders.GetOrder(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}

	if err := h.canceller.Cancel(ctx, o); err != nil {
		switch {
		case errors.Is(err, order.ErrCancelInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "Cancellation already in progress"})
		case errors.Is(err, order.ErrNotCancellable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Order cancellation is only available for pending orders within 24 hours of placement",
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Failed to cancel order. Please try again.",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": o})
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
