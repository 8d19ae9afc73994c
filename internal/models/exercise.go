package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExerciseCategory string

const (
	CategoryBreathing  ExerciseCategory = "breathing"
	CategoryMeditation ExerciseCategory = "meditation"
	CategoryCBT        ExerciseCategory = "cbt"
)

// BreathingPattern is the number of seconds spent in each phase of one breath.
type BreathingPattern struct {
	Inhale  int `json:"inhale"`
	HoldIn  int `json:"hold_in"`
	Exhale  int `json:"exhale"`
	HoldOut int `json:"hold_out"`
}

type Exercise struct {
	ID              string            `json:"id"`
	Category        ExerciseCategory  `json:"category"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	DurationMinutes int               `json:"duration_minutes,omitempty"`
	Pattern         *BreathingPattern `json:"pattern,omitempty"`
	Fields          []string          `json:"fields,omitempty"` // CBT worksheet prompts
}

// ExerciseSession records one completed guided exercise.
type ExerciseSession struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          int64              `bson:"user_id" json:"user_id,string"`
	ExerciseID      string             `bson:"exercise_id" json:"exercise_id"`
	Category        ExerciseCategory   `bson:"category" json:"category"`
	DurationSeconds int                `bson:"duration_seconds" json:"duration_seconds"`
	Responses       map[string]string  `bson:"responses,omitempty" json:"responses,omitempty"`
	CompletedAt     time.Time          `bson:"completed_at" json:"completed_at"`
}
