package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ticketmate-backend/internal/models"
)

// UserRepository handles user data operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, first_name, last_name, username, email, password_hash, phone_number,
	gender, profile_image, location, preferences, is_online, is_verified, role, created_at, updated_at`

// Create creates a new user record with a pre-hashed password
func (r *UserRepository) Create(req *models.UserCreateRequest, passwordHash string) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (first_name, last_name, username, email, password_hash, phone_number, gender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	now := time.Now()
	row := r.db.QueryRow(
		query,
		req.FirstName,
		req.LastName,
		req.Username,
		req.Email,
		passwordHash,
		req.PhoneNumber,
		req.Gender,
		now,
		now,
	)

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByEmailOrUsername retrieves a user by email or username for login
func (r *UserRepository) GetByEmailOrUsername(identifier string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $1`

	user, err := scanUser(r.db.QueryRow(query, identifier))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by identifier: %w", err)
	}

	return user, nil
}

// GetByPhoneNumber retrieves a user by phone number
func (r *UserRepository) GetByPhoneNumber(phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`

	user, err := scanUser(r.db.QueryRow(query, phone))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}

	return user, nil
}

// Update applies a profile update and returns the updated user
func (r *UserRepository) Update(id int, req *models.UserUpdateRequest) (*models.User, error) {
	current, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		current.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		current.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		current.PhoneNumber = *req.PhoneNumber
	}
	if req.Location != nil {
		current.Location = *req.Location
	}
	if req.Preferences != nil {
		current.Preferences = req.Preferences
	}
	if req.IsOnline != nil {
		current.IsOnline = *req.IsOnline
	}

	prefs, err := marshalPreferences(current.Preferences)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, phone_number = $4, location = $5, preferences = $6, is_online = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(
		query,
		id,
		current.FirstName,
		current.LastName,
		current.PhoneNumber,
		current.Location,
		prefs,
		current.IsOnline,
		time.Now(),
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// UpdatePreferences applies a partial preferences update
func (r *UserRepository) UpdatePreferences(id int, req *models.PreferencesUpdateRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	current, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	prefs := current.Preferences
	if prefs == nil {
		prefs = &models.Preferences{}
	}

	if req.Categories != nil {
		prefs.Categories = *req.Categories
	}
	if req.AgeRange != nil {
		prefs.AgeRange = *req.AgeRange
	}
	if req.Personality != nil {
		prefs.Personality = *req.Personality
	}
	if req.Role != nil {
		prefs.Role = *req.Role
	}
	if req.PriceRange != nil {
		prefs.PriceRange = req.PriceRange
	}

	data, err := marshalPreferences(prefs)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE users SET preferences = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(query, id, data, time.Now()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	return user, nil
}

// UpdatePassword replaces the stored credential hash
func (r *UserRepository) UpdatePassword(id int, passwordHash string) error {
	result, err := r.db.Exec(
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, passwordHash, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// SetResetToken stores a hashed reset token and its expiry for a user
func (r *UserRepository) SetResetToken(id int, tokenHash string, expiresAt time.Time) error {
	result, err := r.db.Exec(
		`UPDATE users SET reset_password_token = $2, reset_password_expires = $3, updated_at = $4 WHERE id = $1`,
		id, tokenHash, expiresAt, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// GetByResetToken retrieves a user by a hashed, unexpired reset token
func (r *UserRepository) GetByResetToken(tokenHash string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE reset_password_token = $1 AND reset_password_expires > $2`

	user, err := scanUser(r.db.QueryRow(query, tokenHash, time.Now()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	return user, nil
}

// ClearResetToken removes any stored reset token for a user
func (r *UserRepository) ClearResetToken(id int) error {
	_, err := r.db.Exec(
		`UPDATE users SET reset_password_token = NULL, reset_password_expires = NULL, updated_at = $2 WHERE id = $1`,
		id, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

// MarkVerified flips the user's verified flag
func (r *UserRepository) MarkVerified(id int) error {
	result, err := r.db.Exec(
		`UPDATE users SET is_verified = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// scanner matches both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var prefs []byte
	var phone, gender, image, location sql.NullString

	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&phone,
		&gender,
		&image,
		&location,
		&prefs,
		&user.IsOnline,
		&user.IsVerified,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.PhoneNumber = phone.String
	user.Gender = gender.String
	user.ProfileImage = image.String
	user.Location = location.String

	if len(prefs) > 0 {
		var p models.Preferences
		if err := json.Unmarshal(prefs, &p); err != nil {
			return nil, fmt.Errorf("failed to decode preferences: %w", err)
		}
		user.Preferences = &p
	}

	return user, nil
}

func marshalPreferences(prefs *models.Preferences) ([]byte, error) {
	if prefs == nil {
		return nil, nil
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	return data, nil
}

// isUniqueViolation reports whether the error is a Postgres unique constraint violation
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
