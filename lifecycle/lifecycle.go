// Package lifecycle governs post-checkout order transitions. Status moves
// strictly forward through PLACED -> PROCESSING -> SHIPPED -> DELIVERED with
// no skips and no reversals; is_paid flips false -> true exactly once. Both
// use conditional UPDATEs so concurrent callers serialize at the row, not in
// application code.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

var (
	ErrOrderNotFound     = errors.New("lifecycle: order not found")
	ErrIllegalTransition = errors.New("lifecycle: illegal status transition")
)

type Manager struct {
	DB *sql.DB
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{DB: db}
}

// AdvanceStatus moves an order to the immediate successor of its current
// status. Anything else fails with ErrIllegalTransition. Delivering a COD
// order also marks it paid: cash on delivery is confirmed by the delivery
// itself.
func (m *Manager) AdvanceStatus(ctx context.Context, orderID int64, to models.OrderStatus) (models.Order, error) {
	if !to.Valid() {
		return models.Order{}, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, to)
	}

	var (
		current models.OrderStatus
		method  models.PaymentMethod
		userID  int64
	)
	err := m.DB.QueryRowContext(ctx,
		"SELECT user_id, status, payment_method FROM orders WHERE id = ?", orderID).
		Scan(&userID, &current, &method)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}

	if current.NextStatus() != to {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, to)
	}

	markPaid := to == models.StatusDelivered && method == models.PaymentCOD

	// The WHERE status = ? clause is the arbiter: if a concurrent caller
	// advanced the order first, zero rows match and this transition is
	// rejected rather than applied out of order.
	var res sql.Result
	if markPaid {
		res, err = m.DB.ExecContext(ctx,
			"UPDATE orders SET status = ?, is_paid = TRUE, updated_at = NOW() WHERE id = ? AND status = ?",
			to, orderID, current)
	} else {
		res, err = m.DB.ExecContext(ctx,
			"UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?",
			to, orderID, current)
	}
	if err != nil {
		return models.Order{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Order{}, err
	}
	if affected == 0 {
		return models.Order{}, fmt.Errorf("%w: order %d moved concurrently", ErrIllegalTransition, orderID)
	}

	return models.Order{ID: orderID, UserID: userID, Status: to, PaymentMethod: method, IsPaid: markPaid}, nil
}

// ConfirmPayment marks a non-COD order paid. Payment webhooks redeliver, so
// re-invoking on an already-paid order is a no-op success, never an error.
func (m *Manager) ConfirmPayment(ctx context.Context, orderID int64) error {
	res, err := m.DB.ExecContext(ctx,
		"UPDATE orders SET is_paid = TRUE, updated_at = NOW() WHERE id = ? AND is_paid = FALSE",
		orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	// Zero rows: either already paid (fine) or no such order.
	var exists int
	err = m.DB.QueryRowContext(ctx,
		"SELECT 1 FROM orders WHERE id = ?", orderID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	return err
}
