package ratings

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Gate, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewGate(db), mock
}

func expectOrderStatus(mock sqlmock.Sqlmock, status string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM orders WHERE id = ? AND user_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(status))
}

func TestSubmitHappyPath(t *testing.T) {
	g, mock := newMock(t)

	expectOrderStatus(mock, "DELIVERED")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM order_items WHERE order_id = ? AND product_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ratings")).
		WithArgs(int64(7), int64(100), int64(42), 5, "great").
		WillReturnResult(sqlmock.NewResult(9, 1))

	rating, err := g.Submit(context.Background(), 7, 100, 42, 5, "great")
	require.NoError(t, err)

	assert.Equal(t, int64(9), rating.ID)
	assert.Equal(t, 5, rating.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRejectsValueOutOfRange(t *testing.T) {
	g, _ := newMock(t)

	_, err := g.Submit(context.Background(), 7, 100, 42, 0, "")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = g.Submit(context.Background(), 7, 100, 42, 6, "")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSubmitOrderNotFound(t *testing.T) {
	g, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM orders WHERE id = ? AND user_id = ?")).
		WillReturnError(sql.ErrNoRows)

	_, err := g.Submit(context.Background(), 7, 100, 42, 4, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSubmitOrderNotDelivered(t *testing.T) {
	g, mock := newMock(t)

	expectOrderStatus(mock, "SHIPPED")

	_, err := g.Submit(context.Background(), 7, 100, 42, 4, "")
	assert.ErrorIs(t, err, ErrOrderNotDelivered)
}

func TestSubmitProductNotInOrder(t *testing.T) {
	g, mock := newMock(t)

	expectOrderStatus(mock, "DELIVERED")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM order_items WHERE order_id = ? AND product_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := g.Submit(context.Background(), 7, 100, 42, 4, "")
	assert.ErrorIs(t, err, ErrProductNotInOrder)
}

func TestSubmitDuplicateRating(t *testing.T) {
	g, mock := newMock(t)

	// The second writer passes the pre-checks but loses at the compound
	// unique key; the constraint, not the existence check, is the arbiter.
	expectOrderStatus(mock, "DELIVERED")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM order_items WHERE order_id = ? AND product_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ratings")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := g.Submit(context.Background(), 7, 100, 42, 4, "")
	assert.ErrorIs(t, err, ErrDuplicateRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}
