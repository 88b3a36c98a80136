package otp

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	svc := NewService(db)
	svc.now = func() time.Time { return now }
	return svc, mock
}

func hashOf(t *testing.T, code string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func expectActiveCodeRead(mock sqlmock.Sqlmock, id, codeHash string, expires time.Time, attempts int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code_hash, expires_at, attempts")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code_hash", "expires_at", "attempts"}).
			AddRow(id, codeHash, expires, attempts))
}

func TestIssueInvalidatesPriorCode(t *testing.T) {
	svc, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE otp_codes SET invalidated = TRUE")).
		WithArgs("a@x.com", string(models.OtpSignup)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO otp_codes")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	record, code, err := svc.Issue(context.Background(), "a@x.com", models.OtpSignup, nil)
	require.NoError(t, err)

	assert.Len(t, code, 6)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, now.Add(CodeTTL), record.ExpiresAt)
	assert.Nil(t, record.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRejectsUnknownPurpose(t *testing.T) {
	svc, _ := newMock(t)

	_, _, err := svc.Issue(context.Background(), "a@x.com", "NEWSLETTER", nil)
	assert.Error(t, err)
}

func TestVerifyNoActiveCode(t *testing.T) {
	svc, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code_hash, expires_at, attempts")).
		WillReturnError(sql.ErrNoRows)

	err := svc.Verify(context.Background(), "a@x.com", models.OtpLogin, "123456")
	assert.ErrorIs(t, err, ErrNoActiveCode)
}

func TestVerifyExpired(t *testing.T) {
	svc, mock := newMock(t)

	expectActiveCodeRead(mock, "id-1", hashOf(t, "123456"), now.Add(-time.Minute), 0)

	err := svc.Verify(context.Background(), "a@x.com", models.OtpLogin, "123456")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyExhaustedWithoutComparing(t *testing.T) {
	svc, mock := newMock(t)

	// At the attempt cap the stored hash is irrelevant: no comparison, no
	// further mutation.
	expectActiveCodeRead(mock, "id-1", "not-even-a-hash", now.Add(time.Minute), MaxAttempts)

	err := svc.Verify(context.Background(), "a@x.com", models.OtpLogin, "123456")
	assert.ErrorIs(t, err, ErrExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyIncorrectIncrementsAttempts(t *testing.T) {
	svc, mock := newMock(t)

	expectActiveCodeRead(mock, "id-1", hashOf(t, "123456"), now.Add(time.Minute), 2)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE otp_codes SET attempts = attempts + 1")).
		WithArgs("id-1", MaxAttempts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT attempts FROM otp_codes WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"attempts"}).AddRow(3))

	err := svc.Verify(context.Background(), "a@x.com", models.OtpLogin, "999999")
	assert.ErrorIs(t, err, ErrIncorrect)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyFinalWrongAttemptReportsExhausted(t *testing.T) {
	svc, mock := newMock(t)

	// Fifth wrong code: the increment lands on the cap, so the caller sees
	// Exhausted, not Incorrect.
	expectActiveCodeRead(mock, "id-1", hashOf(t, "123456"), now.Add(time.Minute), MaxAttempts-1)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE otp_codes SET attempts = attempts + 1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT attempts FROM otp_codes WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"attempts"}).AddRow(MaxAttempts))

	err := svc.Verify(context.Background(), "a@x.com", models.OtpLogin, "999999")
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestVerifyIncrementLosesRace(t *testing.T) {
	svc, mock := newMock(t)

	// Concurrent verifies already drove attempts to the cap; the guarded
	// increment refuses to overshoot.
	expectActiveCodeRead(mock, "id-1", hashOf(t, "123456"), now.Add(time.Minute), MaxAttempts-1)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE otp_codes SET attempts = attempts + 1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Verify(context.Background(), "a@x.com", models.OtpLogin, "999999")
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestVerifySuccessConsumesCode(t *testing.T) {
	svc, mock := newMock(t)

	expectActiveCodeRead(mock, "id-1", hashOf(t, "123456"), now.Add(time.Minute), 1)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE otp_codes SET used = TRUE")).
		WithArgs("id-1", MaxAttempts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Verify(context.Background(), "a@x.com", models.OtpSignup, "123456")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifySuccessLosesConsumptionRace(t *testing.T) {
	svc, mock := newMock(t)

	// A concurrent verify consumed the code first; at-most-once means this
	// caller must not also observe success.
	expectActiveCodeRead(mock, "id-1", hashOf(t, "123456"), now.Add(time.Minute), 1)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE otp_codes SET used = TRUE")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Verify(context.Background(), "a@x.com", models.OtpSignup, "123456")
	assert.ErrorIs(t, err, ErrNoActiveCode)
}

func TestRandomCodeShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		code, err := randomCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9')
		}
		seen[code] = true
	}
	// Six random digits should not collide 32 times in a row.
	assert.Greater(t, len(seen), 1)
}
