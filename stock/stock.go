// Package stock answers whether a product can be sold right now. The model
// is a binary in/out-of-stock flag inherited from the schema; there is no
// quantity counter, so a sale does not decrement anything. Enforcement
// happens at the admin toggle, not per unit.
package stock

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrProductNotFound    = errors.New("stock: product not found")
	ErrProductUnavailable = errors.New("stock: product is out of stock")
)

type Ledger struct {
	DB *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{DB: db}
}

// CheckAvailability reports whether the product may be sold. A false result
// means no order item may be created against it.
func (l *Ledger) CheckAvailability(ctx context.Context, productID int64) (bool, error) {
	return checkAvailability(ctx, l.DB, productID)
}

// CheckAvailabilityTx is the in-transaction variant used by checkout so the
// stock read shares the checkout transaction's snapshot.
func (l *Ledger) CheckAvailabilityTx(ctx context.Context, tx *sql.Tx, productID int64) (bool, error) {
	return checkAvailability(ctx, tx, productID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func checkAvailability(ctx context.Context, q querier, productID int64) (bool, error) {
	var inStock bool
	err := q.QueryRowContext(ctx,
		"SELECT in_stock FROM products WHERE id = ?", productID,
	).Scan(&inStock)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrProductNotFound
	}
	if err != nil {
		return false, err
	}
	return inStock, nil
}

// SetInStock is the admin toggle and the interface point for an external
// inventory collaborator (e.g. marking a product depleted).
func (l *Ledger) SetInStock(ctx context.Context, productID int64, inStock bool) error {
	res, err := l.DB.ExecContext(ctx,
		"UPDATE products SET in_stock = ? WHERE id = ?", inStock, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Zero rows can also mean the flag already held that value; only
		// report not-found when the product truly does not exist.
		var exists int
		err := l.DB.QueryRowContext(ctx,
			"SELECT 1 FROM products WHERE id = ?", productID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}
