// Package wishlist is an idempotent membership set keyed (user, product).
package wishlist

import (
	"context"
	"database/sql"

	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

type Service struct {
	DB *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Add is idempotent: re-adding an existing entry is a silent no-op.
func (s *Service) Add(ctx context.Context, userID, productID int64) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE user_id = user_id
	`, userID, productID)
	return err
}

func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	_, err := s.DB.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE user_id = ? AND product_id = ?",
		userID, productID)
	return err
}

func (s *Service) List(ctx context.Context, userID int64) ([]models.WishlistItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT user_id, product_id, created_at
		FROM wishlist_items
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []models.WishlistItem
	for rows.Next() {
		var item models.WishlistItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
