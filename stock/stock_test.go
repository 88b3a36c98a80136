package stock

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Ledger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewLedger(db), mock
}

func TestCheckAvailability(t *testing.T) {
	l, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT in_stock FROM products WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"in_stock"}).AddRow(true))

	inStock, err := l.CheckAvailability(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, inStock)
}

func TestCheckAvailabilityOutOfStock(t *testing.T) {
	l, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT in_stock FROM products WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"in_stock"}).AddRow(false))

	inStock, err := l.CheckAvailability(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, inStock)
}

func TestCheckAvailabilityUnknownProduct(t *testing.T) {
	l, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT in_stock FROM products WHERE id = ?")).
		WillReturnError(sql.ErrNoRows)

	_, err := l.CheckAvailability(context.Background(), 99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSetInStock(t *testing.T) {
	l, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET in_stock = ? WHERE id = ?")).
		WithArgs(false, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, l.SetInStock(context.Background(), 1, false))
}

func TestSetInStockNoChangeIsFine(t *testing.T) {
	l, mock := newMock(t)

	// Flag already held the value; not an error as long as the row exists.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET in_stock = ? WHERE id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM products WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	assert.NoError(t, l.SetInStock(context.Background(), 1, true))
}

func TestSetInStockUnknownProduct(t *testing.T) {
	l, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET in_stock = ? WHERE id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM products WHERE id = ?")).
		WillReturnError(sql.ErrNoRows)

	assert.ErrorIs(t, l.SetInStock(context.Background(), 99, true), ErrProductNotFound)
}
