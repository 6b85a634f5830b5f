package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"freshmart-backend/internal/domain"
	"freshmart-backend/internal/infrastructure/payment"
	"freshmart-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const signatureHeader = "x-paystack-signature"

type OrderHandler struct {
	logger        *zap.Logger
	service       service.OrderService
	gateway       payment.Gateway
	webhookSecret string
}

func NewOrderHandler(logger *zap.Logger, svc service.OrderService, gateway payment.Gateway, webhookSecret string) *OrderHandler {
	return &OrderHandler{
		logger:        logger,
		service:       svc,
		gateway:       gateway,
		webhookSecret: webhookSecret,
	}
}

// RegisterRoutes registers all storefront routes on the provided Gin engine.
func (h *OrderHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/initialize-transaction", h.InitializeTransaction)
	r.GET("/api/verify-transaction/:reference", h.VerifyTransaction)
	r.POST("/api/send-order", h.SendOrder)
	r.POST("/api/verify-and-save-order", h.VerifyAndSaveOrder)
	r.POST("/api/paystack-webhook", h.PaystackWebhook)
	r.GET("/orders", h.ListOrders)
}

type initializeTransactionRequest struct {
	Email        string            `json:"email"`
	Amount       *float64          `json:"amount"`
	CustomerName string            `json:"customer_name"`
	Address      string            `json:"address"`
	Cart         []domain.CartItem `json:"cart"`
}

func (h *OrderHandler) InitializeTransaction(c *gin.Context) {
	var req initializeTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	if req.Email == "" || req.Amount == nil || *req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	data, err := h.gateway.InitializeTransaction(c.Request.Context(), req.Email, *req.Amount, payment.Metadata{
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Cart:         req.Cart,
	})
	if err != nil {
		h.logger.Error("transaction initialization failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (h *OrderHandler) VerifyTransaction(c *gin.Context) {
	data, err := h.gateway.VerifyTransaction(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.logger.Error("transaction verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

type orderRequest struct {
	CustomerName     string            `json:"customer_name"`
	CustomerEmail    string            `json:"customer_email"`
	Address          string            `json:"address"`
	Cart             []domain.CartItem `json:"cart"`
	Total            string            `json:"total"`
	PaymentReference string            `json:"payment_reference"`
}

func (r orderRequest) toInput() service.OrderInput {
	return service.OrderInput{
		CustomerName:     r.CustomerName,
		CustomerEmail:    r.CustomerEmail,
		Address:          r.Address,
		Cart:             r.Cart,
		Total:            r.Total,
		PaymentReference: r.PaymentReference,
	}
}

func (h *OrderHandler) SendOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order data"})
		return
	}

	order, err := h.service.SaveOrder(c.Request.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderData) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order data"})
			return
		}
		h.logger.Error("order save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *OrderHandler) VerifyAndSaveOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order data"})
		return
	}

	order, err := h.service.VerifyAndSaveOrder(c.Request.Context(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrderData):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order data"})
		case errors.Is(err, service.ErrPaymentNotSuccessful):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment not successful"})
		case errors.Is(err, service.ErrAmountMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment amount mismatch"})
		default:
			// Gateway failures, duplicate references and store errors all
			// surface as a generic server error.
			h.logger.Error("order verification failed",
				zap.String("reference", req.PaymentReference), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server verification error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// PaystackWebhook authenticates and applies an asynchronous payment
// notification. The signature is checked over the raw body before any
// parsing. A 404 for an unknown reference makes the processor retry, which
// covers charge.success events arriving before the client saved the order.
func (h *OrderHandler) PaystackWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if !payment.ValidSignature(h.webhookSecret, body, c.GetHeader(signatureHeader)) {
		h.logger.Warn("invalid webhook signature")
		c.Status(http.StatusUnauthorized)
		return
	}

	var event payment.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.service.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		h.logger.Error("webhook processing failed",
			zap.String("event", event.Event), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context())
	if err != nil {
		h.logger.Error("order listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
