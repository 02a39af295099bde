package models

import "time"

// JobStatus is the durable status record for one quiz-generation job.
// The pipeline orchestrator is the single writer; an external poller reads
// it. Each update replaces the previous snapshot, no history is retained.
type JobStatus struct {
	JobID         string    `bson:"_id" json:"jobId"`
	Status        string    `bson:"status" json:"status"`
	Progress      int       `bson:"progress" json:"progress"`
	Message       string    `bson:"message,omitempty" json:"message,omitempty"`
	Error         string    `bson:"error,omitempty" json:"error,omitempty"`
	QuizID        string    `bson:"quizId,omitempty" json:"quizId,omitempty"`
	QuestionCount int       `bson:"questionCount,omitempty" json:"questionCount,omitempty"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Job status values. processing is the only in-flight state; completed and
// failed are terminal.
const (
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)
