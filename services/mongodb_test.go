package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bendaklara/restaurantsaround/models"
)

// Runs against a real server only when MONGO_TEST_URI is set.
func TestMongoDeduplicator(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := InitMongoDB(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	db := client.Database("restaurantsaround_test_" + ulid.Make().String())
	defer db.Drop(ctx)

	dedup, err := NewMongoDeduplicator(ctx, db, time.Hour)
	require.NoError(t, err)

	event := models.ProcessedEvent{EventKey: "mid.abc", Kind: models.KindMessage, PageID: "page-1"}

	seen, err := dedup.MarkProcessed(ctx, event)
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = dedup.MarkProcessed(ctx, event)
	require.NoError(t, err)
	assert.True(t, seen)
}
