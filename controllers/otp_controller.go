package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LogicSense29/addedvalue-store-sub000/middlewares"
	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

// IssueOtp creates a fresh code for (email, purpose) and hands the plaintext
// to the notification collaborator. The code never appears in the response.
func IssueOtp(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOtpOperation("issue", status)
	}()

	var request struct {
		Email   string            `json:"email" binding:"required,email"`
		Purpose models.OtpPurpose `json:"purpose" binding:"required,oneof=SIGNUP LOGIN RESET_PASSWORD"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Codes for LOGIN and RESET_PASSWORD attach to the existing account;
	// SIGNUP codes precede one.
	var userID *int64
	if request.Purpose != models.OtpSignup {
		var id int64
		err := db.QueryRowContext(c.Request.Context(),
			"SELECT id FROM users WHERE email = ?", request.Email).Scan(&id)
		if err == nil {
			userID = &id
		}
	}

	record, code, err := otpService.Issue(c.Request.Context(), request.Email, request.Purpose, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         record.ID,
		"expires_at": record.ExpiresAt,
	})

	if rabbitMQ != nil {
		event := models.OtpEvent{
			Type:    models.EventOtpIssued,
			Email:   record.Email,
			Purpose: record.Purpose,
			Code:    code,
		}
		if err := rabbitMQ.PublishOtpEvent(event); err != nil {
			log.Printf("Failed to publish otp issued event: %v", err)
		}
	}
}

// VerifyOtp checks a submitted code. The session collaborator consumes the
// outcome; no tokens are minted here.
func VerifyOtp(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOtpOperation("verify", status)
	}()

	var request struct {
		Email   string            `json:"email" binding:"required,email"`
		Purpose models.OtpPurpose `json:"purpose" binding:"required,oneof=SIGNUP LOGIN RESET_PASSWORD"`
		Code    string            `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := otpService.Verify(c.Request.Context(), request.Email, request.Purpose, request.Code); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Code verified"})
}
