package models

import "time"

const (
	DefaultJournalTitle = "Journal Entry"
	DefaultJournalMood  = "neutral"
)

// JournalEntry is a private journal entry owned by exactly one user.
// ClientID is the identifier the offline client generated, used to make
// repeated syncs of the same entry idempotent.
type JournalEntry struct {
	ID        int64     `json:"id,string"`
	UserID    int64     `json:"user_id,string"`
	ClientID  string    `json:"client_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
