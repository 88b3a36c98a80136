// Package checkout turns a validated cart into a persisted order. A single
// database transaction spans the stock check, coupon validation and all
// writes, so a concurrent checkout can never observe (or produce) a partial
// order. The orchestrator moves a request through
// Draft -> Validating -> Pricing -> Committing -> Committed | Aborted; any
// failure before commit leaves zero rows behind.
package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/LogicSense29/addedvalue-store-sub000/coupons"
	"github.com/LogicSense29/addedvalue-store-sub000/database"
	"github.com/LogicSense29/addedvalue-store-sub000/models"
	"github.com/LogicSense29/addedvalue-store-sub000/pricing"
	"github.com/LogicSense29/addedvalue-store-sub000/stock"
)

var (
	ErrEmptyCart     = errors.New("checkout: order must contain at least one item")
	ErrInvalidTarget = errors.New("checkout: store inactive or address does not belong to user")
	ErrCommitFailed  = errors.New("checkout: commit failed")
)

type ItemRequest struct {
	ProductID      int64           `json:"product_id" binding:"required"`
	Quantity       int             `json:"quantity" binding:"required"`
	UnitPrice      int64           `json:"unit_price" binding:"required"`
	Customizations json.RawMessage `json:"customizations,omitempty"`
}

// Request is one checkout for one store. A cart spanning several stores must
// be split by the caller into one request per store.
type Request struct {
	IdempotencyKey string               `json:"idempotency_key"`
	UserID         int64                `json:"-"`
	StoreID        int64                `json:"store_id" binding:"required"`
	AddressID      int64                `json:"address_id" binding:"required"`
	PaymentMethod  models.PaymentMethod `json:"payment_method" binding:"required"`
	CouponCode     string               `json:"coupon_code,omitempty"`
	Items          []ItemRequest        `json:"items" binding:"required"`
}

type Orchestrator struct {
	DB      *sql.DB
	Stock   *stock.Ledger
	Coupons *coupons.Validator
}

func NewOrchestrator(db *sql.DB, ledger *stock.Ledger, validator *coupons.Validator) *Orchestrator {
	return &Orchestrator{DB: db, Stock: ledger, Coupons: validator}
}

// Checkout validates the request, prices it and commits the order atomically.
// Re-submitting with the same idempotency key returns the original order
// instead of creating a second one; the checkout_requests primary key closes
// the race between concurrent retries.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		return models.Order{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidTarget, req.PaymentMethod)
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}

	if order, ok, err := o.findPrior(ctx, req.IdempotencyKey); err != nil {
		return models.Order{}, err
	} else if ok {
		return order, nil
	}

	tx, err := o.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	order, err := o.checkoutTx(ctx, tx, req)
	if errors.Is(err, errDuplicateSubmission) {
		_ = tx.Rollback()
		prior, ok, err := o.findPrior(ctx, req.IdempotencyKey)
		if err != nil {
			return models.Order{}, err
		}
		if !ok {
			return models.Order{}, ErrCommitFailed
		}
		return prior, nil
	}
	if err != nil {
		return models.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Order{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	return order, nil
}

func (o *Orchestrator) checkoutTx(ctx context.Context, tx *sql.Tx, req Request) (models.Order, error) {
	// Validating: target store and shipping address.
	var isActive bool
	err := tx.QueryRowContext(ctx,
		"SELECT is_active FROM stores WHERE id = ?", req.StoreID).Scan(&isActive)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !isActive) {
		return models.Order{}, ErrInvalidTarget
	}
	if err != nil {
		return models.Order{}, err
	}

	var addressOwner int64
	err = tx.QueryRowContext(ctx,
		"SELECT user_id FROM addresses WHERE id = ?", req.AddressID).Scan(&addressOwner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && addressOwner != req.UserID) {
		return models.Order{}, ErrInvalidTarget
	}
	if err != nil {
		return models.Order{}, err
	}

	// All-or-nothing stock check: a single unavailable item aborts everything.
	for _, item := range req.Items {
		inStock, err := o.Stock.CheckAvailabilityTx(ctx, tx, item.ProductID)
		if err != nil {
			return models.Order{}, err
		}
		if !inStock {
			return models.Order{}, fmt.Errorf("%w: product %d", stock.ErrProductUnavailable, item.ProductID)
		}
	}

	var snapshot *models.CouponSnapshot
	if req.CouponCode != "" {
		snap, err := o.Coupons.Validate(ctx, tx, req.CouponCode, req.UserID)
		if err != nil {
			return models.Order{}, err
		}
		snapshot = &snap
	}

	// Pricing.
	lineItems := make([]pricing.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, pricing.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	quote, err := pricing.Compute(lineItems, snapshot)
	if err != nil {
		return models.Order{}, err
	}

	// Committing: order, items, coupon marker and idempotency record all ride
	// the same transaction.
	order := models.Order{
		UserID:        req.UserID,
		StoreID:       req.StoreID,
		AddressID:     req.AddressID,
		Total:         quote.Total,
		Status:        models.StatusPlaced,
		PaymentMethod: req.PaymentMethod,
		IsPaid:        false,
		IsCouponUsed:  snapshot != nil,
		Coupon:        snapshot,
	}

	var couponJSON any
	if snapshot != nil {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return models.Order{}, err
		}
		couponJSON = raw
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, store_id, address_id, total, status, payment_method, is_paid, is_coupon_used, coupon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, order.UserID, order.StoreID, order.AddressID, order.Total, order.Status,
		order.PaymentMethod, order.IsPaid, order.IsCouponUsed, couponJSON)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	order.ID = orderID

	for _, item := range req.Items {
		var customizations any
		if len(item.Customizations) > 0 {
			customizations = []byte(item.Customizations)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price, customizations)
			VALUES (?, ?, ?, ?, ?)
		`, orderID, item.ProductID, item.Quantity, item.UnitPrice, customizations)
		if err != nil {
			return models.Order{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return models.Order{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
		}
		order.Items = append(order.Items, models.OrderItem{
			ID:             itemID,
			OrderID:        orderID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			Price:          item.UnitPrice,
			Customizations: item.Customizations,
		})
	}

	if snapshot != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO coupon_usages (user_id, coupon_code, order_id)
			VALUES (?, ?, ?)
		`, req.UserID, snapshot.Code, orderID)
		if database.IsDuplicateKey(err) {
			// A concurrent checkout won the race for this user's single use.
			return models.Order{}, coupons.ErrCouponAlreadyUsed
		}
		if err != nil {
			return models.Order{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkout_requests (idempotency_key, user_id, order_id)
		VALUES (?, ?, ?)
	`, req.IdempotencyKey, req.UserID, orderID)
	if database.IsDuplicateKey(err) {
		// A concurrent retry with the same key committed first; surface its
		// order after our rollback.
		return models.Order{}, errDuplicateSubmission
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	return order, nil
}

var errDuplicateSubmission = errors.New("checkout: duplicate submission")

// findPrior returns the committed order for a previously seen idempotency
// key, if any.
func (o *Orchestrator) findPrior(ctx context.Context, key string) (models.Order, bool, error) {
	var orderID int64
	err := o.DB.QueryRowContext(ctx,
		"SELECT order_id FROM checkout_requests WHERE idempotency_key = ?", key).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, err
	}
	order, err := LoadOrder(ctx, o.DB, orderID)
	if err != nil {
		return models.Order{}, false, err
	}
	return order, true, nil
}
