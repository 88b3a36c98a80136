// Package ratings enforces the one-rating-per-(user, product, order) rule.
// The compound unique key on the ratings table settles concurrent
// submissions; the pre-checks here only produce precise error messages.
package ratings

import (
	"context"
	"database/sql"
	"errors"

	"github.com/LogicSense29/addedvalue-store-sub000/database"
	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

var (
	ErrOrderNotFound     = errors.New("ratings: order not found")
	ErrOrderNotDelivered = errors.New("ratings: order has not been delivered")
	ErrProductNotInOrder = errors.New("ratings: product is not part of this order")
	ErrDuplicateRating   = errors.New("ratings: rating already exists for this order")
	ErrInvalidValue      = errors.New("ratings: value must be between 1 and 5")
)

type Gate struct {
	DB *sql.DB
}

func NewGate(db *sql.DB) *Gate {
	return &Gate{DB: db}
}

// Submit records a rating for a product the user bought in the given order.
// The order must be delivered and owned by the user, and the product must
// appear among its items.
func (g *Gate) Submit(ctx context.Context, userID, productID, orderID int64, value int, review string) (models.Rating, error) {
	if value < 1 || value > 5 {
		return models.Rating{}, ErrInvalidValue
	}

	var status models.OrderStatus
	err := g.DB.QueryRowContext(ctx,
		"SELECT status FROM orders WHERE id = ? AND user_id = ?",
		orderID, userID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rating{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Rating{}, err
	}
	if status != models.StatusDelivered {
		return models.Rating{}, ErrOrderNotDelivered
	}

	var inOrder int
	err = g.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM order_items WHERE order_id = ? AND product_id = ?",
		orderID, productID).Scan(&inOrder)
	if err != nil {
		return models.Rating{}, err
	}
	if inOrder == 0 {
		return models.Rating{}, ErrProductNotInOrder
	}

	res, err := g.DB.ExecContext(ctx, `
		INSERT INTO ratings (user_id, product_id, order_id, value, review)
		VALUES (?, ?, ?, ?, ?)
	`, userID, productID, orderID, value, review)
	if database.IsDuplicateKey(err) {
		return models.Rating{}, ErrDuplicateRating
	}
	if err != nil {
		return models.Rating{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Rating{}, err
	}

	return models.Rating{
		ID:        id,
		UserID:    userID,
		ProductID: productID,
		OrderID:   orderID,
		Value:     value,
		Review:    review,
	}, nil
}

// ListForProduct returns all ratings for a product, newest first.
func (g *Gate) ListForProduct(ctx context.Context, productID int64) ([]models.Rating, error) {
	rows, err := g.DB.QueryContext(ctx, `
		SELECT id, user_id, product_id, order_id, value, review, created_at
		FROM ratings
		WHERE product_id = ?
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var list []models.Rating
	for rows.Next() {
		var (
			r      models.Rating
			review sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProductID, &r.OrderID,
			&r.Value, &review, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Review = review.String
		list = append(list, r)
	}
	return list, rows.Err()
}
