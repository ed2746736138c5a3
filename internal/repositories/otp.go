package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"ticketmate-backend/internal/models"
)

// OTPRepository handles one-time code storage.
// Expiry is enforced here: lookups only consider codes younger than
// models.OTPExpiry, and DeleteExpired reaps the rest.
type OTPRepository struct {
	db *sql.DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *sql.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

const otpColumns = `id, phone_number, code, purpose, verified, attempts, created_at`

// Create stores a freshly issued code, replacing any prior codes for the
// same (phone, purpose) pair
func (r *OTPRepository) Create(phone, code string, purpose models.OTPPurpose) (*models.OTP, error) {
	if err := models.ValidateOTPPurpose(purpose); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM otps WHERE phone_number = $1 AND purpose = $2`,
		phone, purpose,
	); err != nil {
		return nil, fmt.Errorf("failed to delete prior codes: %w", err)
	}

	otp := &models.OTP{}
	err = tx.QueryRow(
		`INSERT INTO otps (phone_number, code, purpose, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+otpColumns,
		phone, code, purpose, time.Now(),
	).Scan(&otp.ID, &otp.PhoneNumber, &otp.Code, &otp.Purpose, &otp.Verified, &otp.Attempts, &otp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTP: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit OTP creation: %w", err)
	}

	return otp, nil
}

// GetActive retrieves the unverified, unexpired code for a (phone, purpose) pair
func (r *OTPRepository) GetActive(phone string, purpose models.OTPPurpose) (*models.OTP, error) {
	cutoff := time.Now().Add(-models.OTPExpiry)

	otp := &models.OTP{}
	err := r.db.QueryRow(
		`SELECT `+otpColumns+` FROM otps
		 WHERE phone_number = $1 AND purpose = $2 AND verified = FALSE AND created_at > $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		phone, purpose, cutoff,
	).Scan(&otp.ID, &otp.PhoneNumber, &otp.Code, &otp.Purpose, &otp.Verified, &otp.Attempts, &otp.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOTPNotFound
		}
		return nil, fmt.Errorf("failed to get OTP: %w", err)
	}

	return otp, nil
}

// IncrementAttempts records a failed verification attempt and returns the new count
func (r *OTPRepository) IncrementAttempts(id int) (int, error) {
	var attempts int
	err := r.db.QueryRow(
		`UPDATE otps SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts`,
		id,
	).Scan(&attempts)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, models.ErrOTPNotFound
		}
		return 0, fmt.Errorf("failed to increment OTP attempts: %w", err)
	}

	return attempts, nil
}

// MarkVerified marks a code as consumed
func (r *OTPRepository) MarkVerified(id int) error {
	result, err := r.db.Exec(`UPDATE otps SET verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark OTP verified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrOTPNotFound
	}

	return nil
}

// Delete removes a code record
func (r *OTPRepository) Delete(id int) error {
	_, err := r.db.Exec(`DELETE FROM otps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete OTP: %w", err)
	}
	return nil
}

// DeleteExpired reaps codes that have outlived their window
func (r *OTPRepository) DeleteExpired() error {
	cutoff := time.Now().Add(-models.OTPExpiry)
	_, err := r.db.Exec(`DELETE FROM otps WHERE created_at <= $1`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired OTPs: %w", err)
	}
	return nil
}
