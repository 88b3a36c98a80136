package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

var ErrOrderNotFound = errors.New("checkout: order not found")

// LoadOrder reads one order with its items.
func LoadOrder(ctx context.Context, db *sql.DB, orderID int64) (models.Order, error) {
	var (
		order      models.Order
		couponJSON sql.NullString
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, user_id, store_id, address_id, total, status, payment_method,
		       is_paid, is_coupon_used, coupon, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, orderID).Scan(&order.ID, &order.UserID, &order.StoreID, &order.AddressID,
		&order.Total, &order.Status, &order.PaymentMethod, &order.IsPaid,
		&order.IsCouponUsed, &couponJSON, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}

	if couponJSON.Valid {
		var snapshot models.CouponSnapshot
		if err := json.Unmarshal([]byte(couponJSON.String), &snapshot); err != nil {
			return models.Order{}, err
		}
		order.Coupon = &snapshot
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price, customizations
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return models.Order{}, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var (
			item           models.OrderItem
			customizations sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.Price, &customizations); err != nil {
			return models.Order{}, err
		}
		if customizations.Valid {
			item.Customizations = json.RawMessage(customizations.String)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ListOrders returns a user's orders, newest first, items included.
func ListOrders(ctx context.Context, db *sql.DB, userID int64) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT o.id, o.store_id, o.address_id, o.total, o.status, o.payment_method,
		       o.is_paid, o.is_coupon_used, o.created_at, o.updated_at,
		       oi.id, oi.product_id, oi.quantity, oi.price
		FROM orders o
		JOIN order_items oi ON o.id = oi.order_id
		WHERE o.user_id = ?
		ORDER BY o.created_at DESC, oi.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	byID := make(map[int64]*models.Order)
	var ordered []int64
	for rows.Next() {
		var (
			o    models.Order
			item models.OrderItem
		)
		if err := rows.Scan(&o.ID, &o.StoreID, &o.AddressID, &o.Total, &o.Status,
			&o.PaymentMethod, &o.IsPaid, &o.IsCouponUsed, &o.CreatedAt, &o.UpdatedAt,
			&item.ID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		existing, ok := byID[o.ID]
		if !ok {
			o.UserID = userID
			byID[o.ID] = &o
			ordered = append(ordered, o.ID)
			existing = &o
		}
		item.OrderID = existing.ID
		existing.Items = append(existing.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(ordered))
	for _, id := range ordered {
		orders = append(orders, *byID[id])
	}
	return orders, nil
}
