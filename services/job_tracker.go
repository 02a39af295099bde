package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Tracker mutates the persisted status record for a job. Each update
// replaces the previous snapshot and stamps the update time.
type Tracker interface {
	Update(ctx context.Context, jobID, status string, progress int, extra bson.M) error
}

// MongoJobTracker writes job status to the quiz_jobs collection, addressed
// by the job id.
type MongoJobTracker struct {
	jobs *mongo.Collection
}

func NewJobTracker(db *mongo.Database) *MongoJobTracker {
	return &MongoJobTracker{jobs: db.Collection("quiz_jobs")}
}

func (t *MongoJobTracker) Update(ctx context.Context, jobID, status string, progress int, extra bson.M) error {
	update := bson.M{
		"status":    status,
		"progress":  progress,
		"updatedAt": time.Now(),
	}
	for k, v := range extra {
		update[k] = v
	}

	// Upsert so a status write never depends on the caller having created
	// the record first.
	_, err := t.jobs.UpdateOne(ctx,
		bson.M{"_id": jobID},
		bson.M{"$set": update},
		options.Update().SetUpsert(true),
	)
	return err
}
