package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Quiz is the persisted quiz document. Created once when a pipeline run
// completes; never mutated afterward.
type Quiz struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Type           string             `bson:"type" json:"type"` // always "learning" for generated quizzes
	Tags           []string           `bson:"tags" json:"tags"`
	Questions      []QuizQuestion     `bson:"questions" json:"questions"`
	CreatorID      string             `bson:"creatorId" json:"creatorId"`
	IsPublic       bool               `bson:"isPublic" json:"isPublic"`
	TotalQuestions int                `bson:"totalQuestions" json:"totalQuestions"`
	SourceType     string             `bson:"sourceType" json:"sourceType"`
	SlideCount     int                `bson:"slideCount" json:"slideCount"`
	Keywords       []string           `bson:"keywords" json:"keywords"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// QuizQuestion is a Question embedded in a Quiz with its sequential id.
type QuizQuestion struct {
	ID          string   `bson:"id" json:"id"`     // q1, q2, ...
	Type        string   `bson:"type" json:"type"` // "multiple"
	Text        string   `bson:"text" json:"text"`
	Choices     []string `bson:"choices" json:"choices"`
	Answer      int      `bson:"answer" json:"answer"`
	Explanation string   `bson:"explanation" json:"explanation"`
	Topic       string   `bson:"topic" json:"topic"`
}

const (
	QuizTypeLearning     = "learning"
	QuestionTypeMultiple = "multiple"
	SourceTypePPTX       = "pptx"
)
