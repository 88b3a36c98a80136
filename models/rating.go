package models

import "time"

// Rating is unique per (user, product, order): a buyer may rate a product
// once for every order that contained it, not once globally.
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	OrderID   int64     `json:"order_id"`
	Value     int       `json:"value"`
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type WishlistItem struct {
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
