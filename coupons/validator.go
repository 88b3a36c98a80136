// Package coupons decides whether a coupon code may be applied to a draft
// order. Validation always re-reads current coupon state; nothing is cached
// across requests. The per-user at-most-once rule is only pre-checked here —
// the UNIQUE(user_id, coupon_code) key written during checkout is the final
// arbiter under concurrency.
package coupons

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

var (
	ErrCouponNotFound    = errors.New("coupons: no such coupon code")
	ErrCouponExpired     = errors.New("coupons: coupon has expired")
	ErrCouponNotEligible = errors.New("coupons: user is not eligible for this coupon")
	ErrCouponAlreadyUsed = errors.New("coupons: coupon already used by this user")
)

// MembershipChecker is the external membership collaborator consulted for
// member-only coupons.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
}

// DBMembership reads the membership flag from the users table. Deployments
// with a separate membership service substitute their own MembershipChecker.
type DBMembership struct {
	DB *sql.DB
}

func (m *DBMembership) IsMember(ctx context.Context, userID int64) (bool, error) {
	var isMember bool
	err := m.DB.QueryRowContext(ctx,
		"SELECT is_member FROM users WHERE id = ?", userID).Scan(&isMember)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isMember, nil
}

type Validator struct {
	DB         *sql.DB
	Membership MembershipChecker
	now        func() time.Time
}

func NewValidator(db *sql.DB, membership MembershipChecker) *Validator {
	return &Validator{DB: db, Membership: membership, now: time.Now}
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Validate runs the eligibility checks in order, short-circuiting on the
// first failure, and returns the immutable snapshot checkout embeds into the
// order. The snapshot is never re-validated after order creation. The q
// argument is either the pool or the checkout transaction so validation can
// share the commit's snapshot.
func (v *Validator) Validate(ctx context.Context, q execQuerier, code string, userID int64) (models.CouponSnapshot, error) {
	if q == nil {
		q = v.DB
	}

	var c models.Coupon
	err := q.QueryRowContext(ctx, `
		SELECT code, discount_kind, discount_value, is_public, for_new_user, for_member, expires_at
		FROM coupons
		WHERE code = ?
	`, code).Scan(&c.Code, &c.DiscountKind, &c.DiscountValue, &c.IsPublic, &c.ForNewUser, &c.ForMember, &c.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CouponSnapshot{}, ErrCouponNotFound
	}
	if err != nil {
		return models.CouponSnapshot{}, err
	}

	if !c.ExpiresAt.After(v.now()) {
		return models.CouponSnapshot{}, ErrCouponExpired
	}

	// Private coupons require an invitation; invitation bookkeeping lives
	// outside this core, so a private code is simply not eligible here.
	if !c.IsPublic {
		return models.CouponSnapshot{}, ErrCouponNotEligible
	}

	if c.ForNewUser {
		var orderCount int
		err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM orders WHERE user_id = ?", userID).Scan(&orderCount)
		if err != nil {
			return models.CouponSnapshot{}, err
		}
		if orderCount > 0 {
			return models.CouponSnapshot{}, ErrCouponNotEligible
		}
	}

	if c.ForMember {
		isMember, err := v.Membership.IsMember(ctx, userID)
		if err != nil {
			return models.CouponSnapshot{}, err
		}
		if !isMember {
			return models.CouponSnapshot{}, ErrCouponNotEligible
		}
	}

	var used int
	err = q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM coupon_usages WHERE user_id = ? AND coupon_code = ?",
		userID, code).Scan(&used)
	if err != nil {
		return models.CouponSnapshot{}, err
	}
	if used > 0 {
		return models.CouponSnapshot{}, ErrCouponAlreadyUsed
	}

	return models.CouponSnapshot{
		Code:          c.Code,
		DiscountKind:  c.DiscountKind,
		DiscountValue: c.DiscountValue,
	}, nil
}
