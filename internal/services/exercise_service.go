package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mindmate/mindmate-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseSessionCollection = "exercise_sessions"

// ExerciseService stores completed exercise sessions in MongoDB.
type ExerciseService struct {
	col *mongo.Collection
	now func() time.Time
}

func NewExerciseService(db *mongo.Database) *ExerciseService {
	return &ExerciseService{col: db.Collection(exerciseSessionCollection), now: time.Now}
}

// EnsureIndexes is called on startup after Mongo has connected.
func (s *ExerciseService) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "completed_at", Value: -1},
		},
		Options: options.Index().SetName("idx_user_completed"),
	})
	return err
}

// Record validates the session against the catalogue and stores it.
func (s *ExerciseService) Record(ctx context.Context, session *models.ExerciseSession) error {
	ex, ok := FindExercise(session.ExerciseID)
	if !ok {
		return ErrUnknownExercise
	}
	session.Category = ex.Category
	if session.DurationSeconds < 0 {
		session.DurationSeconds = 0
	}
	if session.CompletedAt.IsZero() {
		session.CompletedAt = s.now().UTC()
	}

	res, err := s.col.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("insert exercise session: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		session.ID = id
	}
	return nil
}

// List returns the user's sessions newest first along with the total count.
func (s *ExerciseService) List(ctx context.Context, userID int64, limit, skip int64) ([]models.ExerciseSession, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}
	filter := bson.M{"user_id": userID}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip)
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	sessions := []models.ExerciseSession{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}
