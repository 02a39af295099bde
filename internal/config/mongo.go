package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// Quizzes collection indexes
	quizzesCollection := db.Collection("quizzes")
	quizIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "creatorId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "creatorId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
	}
	_, err := quizzesCollection.Indexes().CreateMany(context.Background(), quizIndexes)
	if err != nil {
		return err
	}

	// Quiz jobs collection indexes (documents are addressed by _id = jobId,
	// the status index serves poller dashboards)
	jobsCollection := db.Collection("quiz_jobs")
	jobIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "updatedAt", Value: -1}},
		},
	}
	_, err = jobsCollection.Indexes().CreateMany(context.Background(), jobIndexes)
	if err != nil {
		return err
	}

	return nil
}
