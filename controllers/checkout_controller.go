package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LogicSense29/addedvalue-store-sub000/checkout"
	"github.com/LogicSense29/addedvalue-store-sub000/middlewares"
	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

const paymentReminderDelay = 15 * time.Minute

func Checkout(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCheckoutOperation("checkout", status)
	}()
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = userID
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	order, err := orchestrator.Checkout(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)

	// Events go out only after the transaction committed.
	if rabbitMQ != nil {
		priority := 5
		if order.Total > 100000 { // large orders jump the queue
			priority = 9
		}
		event := models.OrderEvent{
			Type:    models.EventOrderCreated,
			OrderID: order.ID,
			UserID:  order.UserID,
			Status:  order.Status,
			Total:   order.Total,
		}
		if err := rabbitMQ.PublishOrderEvent(event, priority); err != nil {
			log.Printf("Failed to publish order created event: %v", err)
		}

		if order.PaymentMethod == models.PaymentOnline {
			reminder := event
			reminder.Type = models.EventPaymentReminder
			if err := rabbitMQ.PublishDelayedEvent(reminder, paymentReminderDelay); err != nil {
				log.Printf("Failed to publish payment reminder event: %v", err)
			}
		}
	}
}

func GetUserOrders(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCheckoutOperation("list", status)
	}()
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := checkout.ListOrders(c.Request.Context(), db, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func GetOrderDetails(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCheckoutOperation("details", status)
	}()
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := checkout.LoadOrder(c.Request.Context(), db, orderID)
	if err != nil {
		fail(c, err)
		return
	}
	if order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func AdvanceOrderStatus(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCheckoutOperation("advance_status", status)
	}()

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var request struct {
		Status models.OrderStatus `json:"status" binding:"required,oneof=PLACED PROCESSING SHIPPED DELIVERED"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := manager.AdvanceStatus(c.Request.Context(), orderID, request.Status)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order_id": orderID, "status": order.Status})

	if rabbitMQ != nil {
		event := models.OrderEvent{
			Type:    models.EventOrderStatus,
			OrderID: orderID,
			UserID:  order.UserID,
			Status:  order.Status,
		}
		if err := rabbitMQ.PublishOrderEvent(event, 5); err != nil {
			log.Printf("Failed to publish order status event: %v", err)
		}
	}
}

// ConfirmPayment is the endpoint the payment collaborator calls on success.
// Redelivery is expected: confirming an already-paid order is a no-op 200.
func ConfirmPayment(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCheckoutOperation("confirm_payment", status)
	}()

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	if err := manager.ConfirmPayment(c.Request.Context(), orderID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed", "order_id": orderID})
}
