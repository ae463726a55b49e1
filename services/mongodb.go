package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bendaklara/restaurantsaround/models"
)

const processedEventsCollection = "processed_events"

// InitMongoDB connects and pings MongoDB.
func InitMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	slog.Info("Connected to MongoDB")
	return client, nil
}

// MongoDeduplicator remembers processed message ids for ttl so platform
// redeliveries of the same webhook are not answered twice.
type MongoDeduplicator struct {
	collection *mongo.Collection
}

// NewMongoDeduplicator creates the processed_events indexes and returns the store.
func NewMongoDeduplicator(ctx context.Context, db *mongo.Database, ttl time.Duration) (*MongoDeduplicator, error) {
	collection := db.Collection(processedEventsCollection)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"event_key": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"processed_at": 1}, Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds()))},
	})
	if err != nil {
		return nil, fmt.Errorf("create processed_events indexes: %w", err)
	}

	return &MongoDeduplicator{collection: collection}, nil
}

// MarkProcessed records the event and reports whether it had been recorded before.
func (d *MongoDeduplicator) MarkProcessed(ctx context.Context, event models.ProcessedEvent) (bool, error) {
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now()
	}

	_, err := d.collection.InsertOne(ctx, event)
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert processed event: %w", err)
	}
	return false, nil
}
