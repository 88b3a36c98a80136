// Package pricing computes order totals. It is a pure calculation layer:
// same inputs always produce the same quote, and nothing here touches
// storage. All amounts are int64 minor currency units.
package pricing

import (
	"errors"

	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

var (
	ErrInvalidQuantity = errors.New("pricing: quantity must be positive")
	ErrInvalidPrice    = errors.New("pricing: unit price must not be negative")
	ErrInvalidDiscount = errors.New("pricing: invalid discount snapshot")
)

// LineItem is a cart line as submitted to checkout: the unit price is the
// price at the time the item was added, not the product's current price.
type LineItem struct {
	ProductID int64
	Quantity  int
	UnitPrice int64
}

type Quote struct {
	LineTotals []int64
	Subtotal   int64
	Discount   int64
	Total      int64
}

// Compute prices a cart. The discount from the coupon snapshot applies to
// the subtotal as a whole, never per line, matching whole-order coupon
// semantics. A nil snapshot means no coupon.
func Compute(items []LineItem, snapshot *models.CouponSnapshot) (Quote, error) {
	q := Quote{LineTotals: make([]int64, 0, len(items))}

	for _, item := range items {
		if item.Quantity <= 0 {
			return Quote{}, ErrInvalidQuantity
		}
		if item.UnitPrice < 0 {
			return Quote{}, ErrInvalidPrice
		}
		line := item.UnitPrice * int64(item.Quantity)
		q.LineTotals = append(q.LineTotals, line)
		q.Subtotal += line
	}

	discount, err := discountFor(q.Subtotal, snapshot)
	if err != nil {
		return Quote{}, err
	}
	q.Discount = discount
	q.Total = q.Subtotal - q.Discount
	return q, nil
}

func discountFor(subtotal int64, snapshot *models.CouponSnapshot) (int64, error) {
	if snapshot == nil {
		return 0, nil
	}
	if snapshot.DiscountValue < 0 {
		return 0, ErrInvalidDiscount
	}
	switch snapshot.DiscountKind {
	case models.DiscountPercent:
		if snapshot.DiscountValue > 100 {
			return 0, ErrInvalidDiscount
		}
		// Integer truncation keeps the result deterministic.
		return subtotal * snapshot.DiscountValue / 100, nil
	case models.DiscountFlat:
		if snapshot.DiscountValue > subtotal {
			return subtotal, nil
		}
		return snapshot.DiscountValue, nil
	}
	return 0, ErrInvalidDiscount
}
