package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LogicSense29/addedvalue-store-sub000/middlewares"
)

func SubmitRating(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCheckoutOperation("rate", status)
	}()
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request struct {
		ProductID int64  `json:"product_id" binding:"required"`
		OrderID   int64  `json:"order_id" binding:"required"`
		Value     int    `json:"value" binding:"required"`
		Review    string `json:"review"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rating, err := ratingGate.Submit(c.Request.Context(), userID,
		request.ProductID, request.OrderID, request.Value, request.Review)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

func GetProductRatings(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	list, err := ratingGate.ListForProduct(c.Request.Context(), productID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
