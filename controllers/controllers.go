// Package controllers translates HTTP to service calls and back. No business
// rules live here: handlers bind input, invoke the domain services and map
// sentinel errors to status codes.
package controllers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LogicSense29/addedvalue-store-sub000/checkout"
	"github.com/LogicSense29/addedvalue-store-sub000/coupons"
	"github.com/LogicSense29/addedvalue-store-sub000/lifecycle"
	"github.com/LogicSense29/addedvalue-store-sub000/otp"
	"github.com/LogicSense29/addedvalue-store-sub000/rabbitmq"
	"github.com/LogicSense29/addedvalue-store-sub000/ratings"
	"github.com/LogicSense29/addedvalue-store-sub000/stock"
	"github.com/LogicSense29/addedvalue-store-sub000/wishlist"
)

var (
	db           *sql.DB
	rabbitMQ     *rabbitmq.RabbitMQ
	stockLedger  *stock.Ledger
	orchestrator *checkout.Orchestrator
	manager      *lifecycle.Manager
	otpService   *otp.Service
	ratingGate   *ratings.Gate
	wishlistSvc  *wishlist.Service
)

// Init wires the domain services. The broker may be nil; publishing is
// skipped in that case.
func Init(conn *sql.DB, rmq *rabbitmq.RabbitMQ) {
	db = conn
	rabbitMQ = rmq
	stockLedger = stock.NewLedger(conn)
	validator := coupons.NewValidator(conn, &coupons.DBMembership{DB: conn})
	orchestrator = checkout.NewOrchestrator(conn, stockLedger, validator)
	manager = lifecycle.NewManager(conn)
	otpService = otp.NewService(conn)
	ratingGate = ratings.NewGate(conn)
	wishlistSvc = wishlist.NewService(conn)
}

func currentUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	return userID.(int64), true
}

// statusFor maps domain errors to HTTP status codes. Business-rule
// rejections are 4xx with a precise message; anything unrecognized is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, checkout.ErrOrderNotFound),
		errors.Is(err, lifecycle.ErrOrderNotFound),
		errors.Is(err, ratings.ErrOrderNotFound),
		errors.Is(err, stock.ErrProductNotFound),
		errors.Is(err, coupons.ErrCouponNotFound),
		errors.Is(err, otp.ErrNoActiveCode):
		return http.StatusNotFound
	case errors.Is(err, ratings.ErrDuplicateRating),
		errors.Is(err, coupons.ErrCouponAlreadyUsed),
		errors.Is(err, lifecycle.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, coupons.ErrCouponExpired),
		errors.Is(err, coupons.ErrCouponNotEligible),
		errors.Is(err, stock.ErrProductUnavailable),
		errors.Is(err, checkout.ErrInvalidTarget),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, ratings.ErrOrderNotDelivered),
		errors.Is(err, ratings.ErrProductNotInOrder),
		errors.Is(err, ratings.ErrInvalidValue),
		errors.Is(err, otp.ErrExpired),
		errors.Is(err, otp.ErrExhausted),
		errors.Is(err, otp.ErrIncorrect):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrCommitFailed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
