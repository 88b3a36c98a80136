package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func CheckStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	inStock, err := stockLedger.CheckAvailability(c.Request.Context(), productID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": productID, "in_stock": inStock})
}

// SetStock is the store-owner toggle. Only the owner of the product's store
// may flip it.
func SetStock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var request struct {
		InStock *bool `json:"in_stock" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var owner int64
	err = db.QueryRowContext(c.Request.Context(), `
		SELECT s.user_id FROM products p JOIN stores s ON p.store_id = s.id
		WHERE p.id = ?
	`, productID).Scan(&owner)
	if err != nil || owner != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := stockLedger.SetInStock(c.Request.Context(), productID, *request.InStock); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": productID, "in_stock": *request.InStock})
}
