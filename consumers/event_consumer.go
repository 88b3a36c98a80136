package consumers

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/LogicSense29/addedvalue-store-sub000/config"
	"github.com/LogicSense29/addedvalue-store-sub000/database"
	"github.com/LogicSense29/addedvalue-store-sub000/models"
	"github.com/LogicSense29/addedvalue-store-sub000/utils"
)

// StartEventConsumer drains the event queue and the dead-letter queue.
// Everything here is best-effort notification work downstream of already
// committed transactions; a failure acks out to the dead-letter queue and
// never touches order state.
func StartEventConsumer(ch *amqp.Channel, cfg *config.Config, emailService *utils.EmailService) {
	msgs, err := ch.Consume(
		cfg.EventQueue,
		"storefront-events", // consumer tag
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("Failed to register consumer: %v", err)
	}

	go func() {
		for msg := range msgs {
			processEventMessage(msg, emailService)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"storefront-events-dlq", // consumer tag
		false,                   // auto-ack
		false,                   // exclusive
		false,                   // no-local
		false,                   // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
}

func processEventMessage(msg amqp.Delivery, emailService *utils.EmailService) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
		}
	}()

	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		log.Printf("Invalid message format: %s", msg.Body)
		err := msg.Nack(false, false)
		if err != nil {
			return
		}
		return
	}

	switch envelope.Type {
	case models.EventOrderCreated, models.EventOrderStatus, models.EventPaymentReminder:
		var event models.OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Printf("Invalid order event: %s", msg.Body)
			_ = msg.Nack(false, false)
			return
		}
		handleOrderEvent(event, emailService)
	case models.EventOtpIssued:
		var event models.OtpEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Printf("Invalid otp event: %s", msg.Body)
			_ = msg.Nack(false, false)
			return
		}
		handleOtpIssued(event, emailService)
	default:
		log.Printf("Unknown event type: %s", envelope.Type)
	}

	err := msg.Ack(false)
	if err != nil {
		return
	}
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	err := msg.Ack(false)
	if err != nil {
		return
	}
}

func handleOrderEvent(event models.OrderEvent, emailService *utils.EmailService) {
	log.Printf("Processing order event: ID=%d, Type=%s", event.OrderID, event.Type)

	switch event.Type {
	case models.EventOrderCreated:
		notifyBuyer(event.UserID, "Order placed",
			"Your order has been placed and will be processed shortly.", emailService)
	case models.EventOrderStatus:
		var status string
		err := database.DB.QueryRow(
			"SELECT status FROM orders WHERE id = ?", event.OrderID).Scan(&status)
		if err != nil {
			log.Printf("Failed to get order status: %v", err)
			return
		}
		switch models.OrderStatus(status) {
		case models.StatusShipped:
			notifyBuyer(event.UserID, "Order shipped",
				"Your order is on its way.", emailService)
		case models.StatusDelivered:
			notifyBuyer(event.UserID, "Order delivered",
				"Your order has been delivered. You can now rate the products you bought.", emailService)
		}
	case models.EventPaymentReminder:
		handlePaymentReminder(event, emailService)
	}
}

// handlePaymentReminder nudges buyers whose online order is still unpaid
// when the delayed reminder fires.
func handlePaymentReminder(event models.OrderEvent, emailService *utils.EmailService) {
	var isPaid bool
	err := database.DB.QueryRow(
		"SELECT is_paid FROM orders WHERE id = ? AND payment_method = 'ONLINE'",
		event.OrderID).Scan(&isPaid)
	if err != nil {
		log.Printf("Failed to check payment state for order %d: %v", event.OrderID, err)
		return
	}
	if isPaid {
		return
	}
	notifyBuyer(event.UserID, "Payment pending",
		"We have not received payment for your recent order yet.", emailService)
}

func handleOtpIssued(event models.OtpEvent, emailService *utils.EmailService) {
	if err := emailService.SendOtpEmail(event.Email, event.Purpose, event.Code); err != nil {
		log.Printf("Failed to send otp email to %s: %v", event.Email, err)
	}
}

func notifyBuyer(userID int64, subject, content string, emailService *utils.EmailService) {
	var email string
	err := database.DB.QueryRow(
		"SELECT email FROM users WHERE id = ?", userID).Scan(&email)
	if err != nil {
		log.Printf("Failed to look up user %d: %v", userID, err)
		return
	}
	if err := emailService.SendEmail(email, subject, content); err != nil {
		log.Printf("Failed to send email to %s: %v", email, err)
	}
}
