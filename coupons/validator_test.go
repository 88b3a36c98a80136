package coupons

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type staticMembership struct {
	member bool
}

func (m staticMembership) IsMember(_ context.Context, _ int64) (bool, error) {
	return m.member, nil
}

func newMock(t *testing.T, member bool) (*Validator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	v := NewValidator(db, staticMembership{member: member})
	v.now = func() time.Time { return now }
	return v, mock
}

func couponColumns() []string {
	return []string{"code", "discount_kind", "discount_value", "is_public", "for_new_user", "for_member", "expires_at"}
}

func expectCouponRead(mock sqlmock.Sqlmock, c models.Coupon) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM coupons")).
		WillReturnRows(sqlmock.NewRows(couponColumns()).
			AddRow(c.Code, string(c.DiscountKind), c.DiscountValue, c.IsPublic, c.ForNewUser, c.ForMember, c.ExpiresAt))
}

func TestValidateUnknownCode(t *testing.T) {
	v, mock := newMock(t, false)

	mock.ExpectQuery(regexp.QuoteMeta("FROM coupons")).WillReturnError(sql.ErrNoRows)

	_, err := v.Validate(context.Background(), nil, "NOPE", 1)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestValidateExpired(t *testing.T) {
	v, mock := newMock(t, false)

	expectCouponRead(mock, models.Coupon{
		Code: "OLD", DiscountKind: models.DiscountPercent, DiscountValue: 10,
		IsPublic: true, ExpiresAt: now.Add(-time.Hour),
	})

	_, err := v.Validate(context.Background(), nil, "OLD", 1)
	assert.ErrorIs(t, err, ErrCouponExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatePrivateCouponNotEligible(t *testing.T) {
	v, mock := newMock(t, false)

	expectCouponRead(mock, models.Coupon{
		Code: "VIP", DiscountKind: models.DiscountFlat, DiscountValue: 500,
		IsPublic: false, ExpiresAt: now.Add(time.Hour),
	})

	_, err := v.Validate(context.Background(), nil, "VIP", 1)
	assert.ErrorIs(t, err, ErrCouponNotEligible)
}

func TestValidateNewUserCouponWithPriorOrders(t *testing.T) {
	v, mock := newMock(t, false)

	expectCouponRead(mock, models.Coupon{
		Code: "WELCOME", DiscountKind: models.DiscountPercent, DiscountValue: 20,
		IsPublic: true, ForNewUser: true, ExpiresAt: now.Add(time.Hour),
	})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders WHERE user_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	_, err := v.Validate(context.Background(), nil, "WELCOME", 1)
	assert.ErrorIs(t, err, ErrCouponNotEligible)
}

func TestValidateMemberCouponForNonMember(t *testing.T) {
	v, mock := newMock(t, false)

	expectCouponRead(mock, models.Coupon{
		Code: "CLUB", DiscountKind: models.DiscountPercent, DiscountValue: 15,
		IsPublic: true, ForMember: true, ExpiresAt: now.Add(time.Hour),
	})

	_, err := v.Validate(context.Background(), nil, "CLUB", 1)
	assert.ErrorIs(t, err, ErrCouponNotEligible)
}

func TestValidateAlreadyUsedByUser(t *testing.T) {
	v, mock := newMock(t, false)

	expectCouponRead(mock, models.Coupon{
		Code: "ONCE", DiscountKind: models.DiscountFlat, DiscountValue: 200,
		IsPublic: true, ExpiresAt: now.Add(time.Hour),
	})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM coupon_usages WHERE user_id = ? AND coupon_code = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := v.Validate(context.Background(), nil, "ONCE", 1)
	assert.ErrorIs(t, err, ErrCouponAlreadyUsed)
}

func TestValidateSuccessReturnsSnapshot(t *testing.T) {
	v, mock := newMock(t, true)

	expectCouponRead(mock, models.Coupon{
		Code: "CLUB15", DiscountKind: models.DiscountPercent, DiscountValue: 15,
		IsPublic: true, ForMember: true, ExpiresAt: now.Add(time.Hour),
	})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM coupon_usages WHERE user_id = ? AND coupon_code = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	snapshot, err := v.Validate(context.Background(), nil, "CLUB15", 1)
	require.NoError(t, err)

	assert.Equal(t, models.CouponSnapshot{
		Code:          "CLUB15",
		DiscountKind:  models.DiscountPercent,
		DiscountValue: 15,
	}, snapshot)
	assert.NoError(t, mock.ExpectationsWereMet())
}
