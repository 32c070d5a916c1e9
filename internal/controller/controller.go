package controller

import (
	"errors"
	"net/http"

	"storefront-shipping-service/internal/dto"
	"storefront-shipping-service/internal/repository"
	"storefront-shipping-service/internal/scheduler"
	"storefront-shipping-service/internal/service"

	"github.com/gin-gonic/gin"
)

type StoreController struct {
	Orders   *service.OrderService
	Ledger   *service.NotificationLedger
	Trackers *scheduler.Registry
}

func NewStoreController(orders *service.OrderService, ledger *service.NotificationLedger, trackers *scheduler.Registry) *StoreController {
	return &StoreController{Orders: orders, Ledger: ledger, Trackers: trackers}
}

// POST /checkout
func (ctl *StoreController) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		Items:     req.Items,
		Total:     req.Total,
		Address:   req.Address,
		AddressID: req.AddressID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GET /orders
func (ctl *StoreController) GetOrders(c *gin.Context) {
	orders, err := ctl.Orders.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:orderId
func (ctl *StoreController) GetOrder(c *gin.Context) {
	orderID := c.Param("orderId")

	order, err := ctl.Orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// POST /orders/:orderId/tracking — la vista de seguimiento se abrió
func (ctl *StoreController) StartTracking(c *gin.Context) {
	orderID := c.Param("orderId")

	if _, err := ctl.Orders.GetByID(c.Request.Context(), orderID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	ctl.Trackers.Track(orderID)
	c.JSON(http.StatusOK, gin.H{"message": "tracking started"})
}

// DELETE /orders/:orderId/tracking — la vista de seguimiento se cerró
func (ctl *StoreController) StopTracking(c *gin.Context) {
	ctl.Trackers.Untrack(c.Param("orderId"))
	c.JSON(http.StatusOK, gin.H{"message": "tracking stopped"})
}

// GET /notifications
func (ctl *StoreController) GetNotifications(c *gin.Context) {
	list, err := ctl.Ledger.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /notifications/unread-count
func (ctl *StoreController) GetUnreadCount(c *gin.Context) {
	count, err := ctl.Ledger.UnreadCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// PATCH /notifications/:id/read
func (ctl *StoreController) MarkNotificationRead(c *gin.Context) {
	if err := ctl.Ledger.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification read"})
}

// POST /notifications/read-all
func (ctl *StoreController) MarkAllNotificationsRead(c *gin.Context) {
	if err := ctl.Ledger.MarkAllRead(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications read"})
}

// DELETE /notifications
func (ctl *StoreController) ClearNotifications(c *gin.Context) {
	if err := ctl.Ledger.ClearAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notifications cleared"})
}

// GET /notifications/preferences
func (ctl *StoreController) GetPreferences(c *gin.Context) {
	prefs, err := ctl.Ledger.GetPreferences(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// PUT /notifications/preferences
func (ctl *StoreController) UpdatePreferences(c *gin.Context) {
	var req dto.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := ctl.Ledger.GetPreferences(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	next := req.Apply(current)
	if err := ctl.Ledger.SavePreferences(c.Request.Context(), next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, next)
}
