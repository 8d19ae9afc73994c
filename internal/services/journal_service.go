package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mindmate/mindmate-backend/internal/models"
)

// JournalInput is a new or synced journal entry. Empty Title and Mood take
// their defaults.
type JournalInput struct {
	ClientID string
	Title    string
	Content  string
	Mood     string
}

type JournalService struct {
	sqlStore
	now func() time.Time
}

func NewJournalService(db *sql.DB, driver string) *JournalService {
	return &JournalService{sqlStore: sqlStore{db: db, driver: driver}, now: time.Now}
}

const journalColumns = `id, user_id, COALESCE(client_id, ''), title, content, mood, created_at, updated_at`

// List returns the user's entries, newest first. limit <= 0 means no limit.
func (s *JournalService) List(ctx context.Context, userID int64, limit, offset int) ([]models.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, max(offset, 0))
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ClientID, &e.Title, &e.Content, &e.Mood, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *JournalService) Get(ctx context.Context, userID, id int64) (*models.JournalEntry, error) {
	return s.getOne(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE id = ? AND user_id = ?`, id, userID)
}

// Save creates an entry. When the client supplied an id it has synced
// before, the existing entry is updated instead, so retried offline syncs
// never duplicate entries.
func (s *JournalService) Save(ctx context.Context, userID int64, in JournalInput) (*models.JournalEntry, error) {
	if in.Title == "" {
		in.Title = models.DefaultJournalTitle
	}
	if in.Mood == "" {
		in.Mood = models.DefaultJournalMood
	}
	now := s.now().UTC().Truncate(time.Second)

	if in.ClientID != "" {
		entry, err := s.updateByClientID(ctx, userID, in, now)
		if !errors.Is(err, ErrNotFound) {
			return entry, err
		}
	}

	var clientID any
	if in.ClientID != "" {
		clientID = in.ClientID
	}
	var id int64
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO journal_entries (user_id, client_id, title, content, mood, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), userID, clientID, in.Title, in.Content, in.Mood, now, now).Scan(&id)
	if err != nil {
		if in.ClientID != "" && isUniqueViolation(err) {
			// Another request inserted the same client id first.
			return s.updateByClientID(ctx, userID, in, now)
		}
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}

	return &models.JournalEntry{
		ID:        id,
		UserID:    userID,
		ClientID:  in.ClientID,
		Title:     in.Title,
		Content:   in.Content,
		Mood:      in.Mood,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *JournalService) updateByClientID(ctx context.Context, userID int64, in JournalInput, now time.Time) (*models.JournalEntry, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE journal_entries SET title = ?, content = ?, mood = ?, updated_at = ?
		WHERE user_id = ? AND client_id = ?
	`), in.Title, in.Content, in.Mood, now, userID, in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("sync journal entry: %w", err)
	}
	if err := affectedOne(res); err != nil {
		return nil, err
	}
	return s.getOne(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE user_id = ? AND client_id = ?`, userID, in.ClientID)
}

// Update changes an entry only if userID owns it; otherwise ErrNotFound.
func (s *JournalService) Update(ctx context.Context, userID, id int64, title, content, mood string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE journal_entries SET title = ?, content = ?, mood = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`), title, content, mood, s.now().UTC().Truncate(time.Second), id, userID)
	if err != nil {
		return fmt.Errorf("update journal entry: %w", err)
	}
	return affectedOne(res)
}

// Delete removes an entry only if userID owns it; otherwise ErrNotFound.
func (s *JournalService) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM journal_entries WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	return affectedOne(res)
}

func (s *JournalService) getOne(ctx context.Context, query string, args ...any) (*models.JournalEntry, error) {
	var e models.JournalEntry
	err := s.db.QueryRowContext(ctx, s.q(query), args...).Scan(&e.ID, &e.UserID, &e.ClientID, &e.Title, &e.Content, &e.Mood, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return &e, nil
}
