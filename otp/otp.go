// Package otp issues and verifies short-lived one-time codes per
// (email, purpose) pair. A code is Active until it is used, invalidated by a
// newer issue, expired, or exhausted; all of those are terminal. Attempt
// counting and consumption go through conditional UPDATEs so two concurrent
// verifies can neither under-count attempts nor both succeed.
package otp

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

const (
	MaxAttempts = 5
	CodeTTL     = 10 * time.Minute
	codeDigits  = 6
)

var (
	ErrNoActiveCode = errors.New("otp: no active code for this email and purpose")
	ErrExpired      = errors.New("otp: code has expired")
	ErrExhausted    = errors.New("otp: attempt limit reached")
	ErrIncorrect    = errors.New("otp: incorrect code")
)

type Service struct {
	DB  *sql.DB
	now func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{DB: db, now: time.Now}
}

// Issue creates a fresh code for (email, purpose), invalidating any prior
// Active code first so at most one code per pair is ever live. The plaintext
// code is returned to the caller for delivery and stored only as a bcrypt
// hash. userID may be nil: a SIGNUP code precedes account creation.
func (s *Service) Issue(ctx context.Context, email string, purpose models.OtpPurpose, userID *int64) (models.OtpCode, string, error) {
	if !purpose.Valid() {
		return models.OtpCode{}, "", fmt.Errorf("otp: invalid purpose %q", purpose)
	}

	code, err := randomCode()
	if err != nil {
		return models.OtpCode{}, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return models.OtpCode{}, "", err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.OtpCode{}, "", err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Prior Active codes become Invalidated, never deleted.
	_, err = tx.ExecContext(ctx, `
		UPDATE otp_codes SET invalidated = TRUE
		WHERE email = ? AND purpose = ? AND used = FALSE AND invalidated = FALSE
	`, email, purpose)
	if err != nil {
		return models.OtpCode{}, "", err
	}

	record := models.OtpCode{
		ID:        uuid.NewString(),
		Email:     email,
		Purpose:   purpose,
		UserID:    userID,
		ExpiresAt: s.now().Add(CodeTTL),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO otp_codes (id, email, purpose, code_hash, user_id, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.ID, record.Email, record.Purpose, string(hash), record.UserID, record.ExpiresAt)
	if err != nil {
		return models.OtpCode{}, "", err
	}

	if err := tx.Commit(); err != nil {
		return models.OtpCode{}, "", err
	}
	return record, code, nil
}

// Verify checks a submitted code against the Active code for (email,
// purpose). On success the code is consumed at most once even under
// concurrent calls; every failed comparison increments attempts exactly
// once. Once attempts reach MaxAttempts the code value is no longer even
// compared.
func (s *Service) Verify(ctx context.Context, email string, purpose models.OtpPurpose, submitted string) error {
	var (
		id       string
		codeHash string
		expires  time.Time
		attempts int
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, code_hash, expires_at, attempts
		FROM otp_codes
		WHERE email = ? AND purpose = ? AND used = FALSE AND invalidated = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`, email, purpose).Scan(&id, &codeHash, &expires, &attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoActiveCode
	}
	if err != nil {
		return err
	}

	if s.now().After(expires) {
		return ErrExpired
	}
	if attempts >= MaxAttempts {
		return ErrExhausted
	}

	if bcrypt.CompareHashAndPassword([]byte(codeHash), []byte(submitted)) != nil {
		return s.recordFailure(ctx, id)
	}

	// Consume at most once: the conditional update is the arbiter between
	// concurrent successful verifies.
	res, err := s.DB.ExecContext(ctx, `
		UPDATE otp_codes SET used = TRUE
		WHERE id = ? AND used = FALSE AND invalidated = FALSE AND attempts < ?
	`, id, MaxAttempts)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Lost the race: the code was consumed, invalidated or exhausted
		// between our read and this write.
		return ErrNoActiveCode
	}
	return nil
}

// recordFailure increments the attempt counter atomically. The guard
// attempts < MaxAttempts makes over-counting impossible no matter how many
// verifies race; the increment that lands on the limit reports exhaustion.
func (s *Service) recordFailure(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE otp_codes SET attempts = attempts + 1
		WHERE id = ? AND used = FALSE AND attempts < ?
	`, id, MaxAttempts)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrExhausted
	}

	var attempts int
	if err := s.DB.QueryRowContext(ctx,
		"SELECT attempts FROM otp_codes WHERE id = ?", id).Scan(&attempts); err != nil {
		return err
	}
	if attempts >= MaxAttempts {
		return ErrExhausted
	}
	return ErrIncorrect
}

func randomCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
