package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pi-senac-4/studybuddy-web/internal/models"
)

// MongoRecorder appends submission attempts to a MongoDB collection.
type MongoRecorder struct {
	col *mongo.Collection
}

func NewMongoRecorder(db *mongo.Database) *MongoRecorder {
	return &MongoRecorder{col: db.Collection("submission_attempts")}
}

func (s *MongoRecorder) Record(ctx context.Context, a models.Attempt) error {
	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}
