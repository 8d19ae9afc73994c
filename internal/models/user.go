package models

import "time"

type User struct {
	ID           int64     `json:"id,string"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Don't return password in JSON
	CreatedAt    time.Time `json:"created_at"`
}
