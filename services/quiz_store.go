package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pptx-quiz-service/models"
)

// QuizStore persists finished quizzes.
type QuizStore interface {
	InsertQuiz(ctx context.Context, quiz *models.Quiz) (string, error)
}

type MongoQuizStore struct {
	quizzes *mongo.Collection
}

func NewQuizStore(db *mongo.Database) *MongoQuizStore {
	return &MongoQuizStore{quizzes: db.Collection("quizzes")}
}

// InsertQuiz assigns the id and timestamps and writes the document once.
// Quizzes are never mutated after this write.
func (s *MongoQuizStore) InsertQuiz(ctx context.Context, quiz *models.Quiz) (string, error) {
	now := time.Now()
	quiz.ID = primitive.NewObjectID()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	if _, err := s.quizzes.InsertOne(ctx, quiz); err != nil {
		return "", err
	}
	return quiz.ID.Hex(), nil
}
