package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mindmate/mindmate-backend/internal/models"
)

type UserService struct {
	sqlStore
	now func() time.Time
}

func NewUserService(db *sql.DB, driver string) *UserService {
	return &UserService{sqlStore: sqlStore{db: db, driver: driver}, now: time.Now}
}

// Create inserts a user. The email must already be normalized; a duplicate
// yields ErrEmailExists even when two registrations race.
func (s *UserService) Create(ctx context.Context, fullName, email, passwordHash string) (*models.User, error) {
	u := &models.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO users (full_name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), u.FullName, u.Email, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.get(ctx, `SELECT id, full_name, email, password_hash, created_at FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.get(ctx, `SELECT id, full_name, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

// EmailExists is the cheap pre-check before hashing a password on register.
func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT 1 FROM users WHERE email = ?`), email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

func (s *UserService) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET password_hash = ? WHERE id = ?`), hash, id)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return affectedOne(res)
}

func (s *UserService) get(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, s.q(query), arg).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
