package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

// Messaging is plain append/read; no delivery semantics.

func SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request struct {
		ReceiverID int64  `json:"receiver_id" binding:"required"`
		Body       string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := db.ExecContext(c.Request.Context(), `
		INSERT INTO messages (sender_id, receiver_id, body)
		VALUES (?, ?, ?)
	`, userID, request.ReceiverID, request.Body)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message_id": id})
}

func GetInbox(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	rows, err := db.QueryContext(c.Request.Context(), `
		SELECT id, sender_id, receiver_id, body, created_at
		FROM messages
		WHERE receiver_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		fail(c, err)
		return
	}
	defer func() {
		_ = rows.Close()
	}()

	var inbox []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt); err != nil {
			fail(c, err)
			return
		}
		inbox = append(inbox, m)
	}
	if err := rows.Err(); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, inbox)
}
