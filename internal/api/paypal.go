package api

import (
	"net/http" // HTTP status codes

	"restaurant_system/internal/payment" // Payment orchestrator

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for create-order
type CreateOrderRequest struct {
	OrderID orderRef `json:"orderId"` // Local order id, number or numeric string
}

// Request struct for capture-order
type CaptureOrderRequest struct {
	PayPalOrderID looseString `json:"paypalOrderId"` // Provider order id
	OrderID       orderRef    `json:"orderId"`       // Local order to mark paid, optional
}

// PayPalConfigHandler returns the settings the browser SDK needs
func PayPalConfigHandler(orch *payment.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.PublicConfig())
	}
}

// CreatePayPalOrderHandler opens a provider checkout for a local order
func CreatePayPalOrderHandler(orch *payment.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := bindBody(c, &req); err != nil {
			respondError(c, err)
			return
		}
		id, err := orch.CreateProviderOrder(c.Request.Context(), req.OrderID.ptr())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "id": id})
	}
}

// CapturePayPalOrderHandler settles an approved checkout and marks the order paid
func CapturePayPalOrderHandler(orch *payment.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CaptureOrderRequest
		if err := bindBody(c, &req); err != nil {
			respondError(c, err)
			return
		}
		status, err := orch.CaptureProviderOrder(c.Request.Context(), req.PayPalOrderID.trimmed(), req.OrderID.ptr())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
	}
}
