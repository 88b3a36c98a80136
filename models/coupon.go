package models

import "time"

type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountFlat    DiscountKind = "flat"
)

// Coupon is keyed by its human-readable code. Coupons are mutable and may be
// deleted; orders never hold a live reference to one (see CouponSnapshot).
type Coupon struct {
	Code          string       `json:"code"`
	DiscountKind  DiscountKind `json:"discount_kind"`
	DiscountValue int64        `json:"discount_value"`
	IsPublic      bool         `json:"is_public"`
	ForNewUser    bool         `json:"for_new_user"`
	ForMember     bool         `json:"for_member"`
	ExpiresAt     time.Time    `json:"expires_at"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// CouponSnapshot is the immutable copy of a coupon's effect embedded in an
// order at commit time. It is never re-validated or dereferenced afterwards,
// so later edits or deletion of the coupon cannot change order history.
type CouponSnapshot struct {
	Code          string       `json:"code"`
	DiscountKind  DiscountKind `json:"discount_kind"`
	DiscountValue int64        `json:"discount_value"`
}
