package services

import (
	"errors"

	"github.com/mindmate/mindmate-backend/internal/models"
)

var ErrUnknownExercise = errors.New("unknown exercise")

var catalogue = []models.Exercise{
	{
		ID: "box-breathing", Category: models.CategoryBreathing, Title: "Box Breathing",
		Description:     "Breathe in, hold, breathe out and hold again for four seconds each.",
		DurationMinutes: 5,
		Pattern:         &models.BreathingPattern{Inhale: 4, HoldIn: 4, Exhale: 4, HoldOut: 4},
	},
	{
		ID: "4-7-8", Category: models.CategoryBreathing, Title: "4-7-8 Breathing",
		Description:     "Inhale for 4 seconds, hold for 7 and exhale slowly for 8.",
		DurationMinutes: 7,
		Pattern:         &models.BreathingPattern{Inhale: 4, HoldIn: 7, Exhale: 8},
	},
	{
		ID: "deep-breathing", Category: models.CategoryBreathing, Title: "Deep Breathing",
		Description:     "Slow belly breaths to settle the nervous system.",
		DurationMinutes: 3,
		Pattern:         &models.BreathingPattern{Inhale: 5, HoldIn: 2, Exhale: 5},
	},
	{
		ID: "body-scan", Category: models.CategoryMeditation, Title: "Body Scan",
		Description:     "Move your attention slowly from your toes to the top of your head.",
		DurationMinutes: 10,
	},
	{
		ID: "loving-kindness", Category: models.CategoryMeditation, Title: "Loving-Kindness",
		Description:     "Offer kind wishes to yourself, someone close, and eventually everyone.",
		DurationMinutes: 15,
	},
	{
		ID: "mindful-observation", Category: models.CategoryMeditation, Title: "Mindful Observation",
		Description:     "Pick one object nearby and notice it as if seeing it for the first time.",
		DurationMinutes: 8,
	},
	{
		ID: "thought-record", Category: models.CategoryCBT, Title: "Thought Record",
		Description: "Write down a difficult moment and test the thought behind it.",
		Fields:      []string{"situation", "thoughts", "emotions", "evidence_for", "evidence_against", "balanced_thought"},
	},
	{
		ID: "behavioral-activation", Category: models.CategoryCBT, Title: "Behavioral Activation",
		Description: "Plan a small, meaningful activity and notice how it changes your mood.",
		Fields:      []string{"activity", "when", "mood_before", "mood_after"},
	},
	{
		ID: "cognitive-restructuring", Category: models.CategoryCBT, Title: "Cognitive Restructuring",
		Description: "Catch a negative thought, challenge it and find a more helpful alternative.",
		Fields:      []string{"negative_thought", "challenge", "alternative"},
	},
}

// Catalogue returns the built-in exercises, optionally narrowed to one category.
func Catalogue(category models.ExerciseCategory) []models.Exercise {
	out := make([]models.Exercise, 0, len(catalogue))
	for _, ex := range catalogue {
		if category == "" || ex.Category == category {
			out = append(out, ex)
		}
	}
	return out
}

func FindExercise(id string) (models.Exercise, bool) {
	for _, ex := range catalogue {
		if ex.ID == id {
			return ex, true
		}
	}
	return models.Exercise{}, false
}
