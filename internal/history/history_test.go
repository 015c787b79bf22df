package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMemory_RecentNewestFirst(t *testing.T) {
	m := NewMemory(3)
	ctx := context.Background()
	for _, in := range []string{"1", "2", "3", "4"} {
		require.NoError(t, m.Record(ctx, Entry{Input: in}))
	}
	got, err := m.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "4", got[0].Input)
	assert.Equal(t, "2", got[2].Input)
	assert.False(t, got[0].CreatedAt.IsZero())

	got, err = m.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].Input)
}

func TestMemory_Empty(t *testing.T) {
	got, err := NewMemory(0).Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMongoRecorder_RoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("skipping: cannot connect to mongo: %v", err)
	}
	defer func() { _ = cli.Disconnect(context.Background()) }()
	if err := cli.Ping(ctx, nil); err != nil {
		t.Skipf("skipping: mongo ping failed: %v", err)
	}
	db := cli.Database("sumapi_test")
	_ = db.Collection(sumsCollection).Drop(ctx)

	r, err := NewMongoRecorder(ctx, db)
	require.NoError(t, err)
	base := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, r.Record(ctx, Entry{Input: "1,2", Sum: 3, CreatedAt: base}))
	require.NoError(t, r.Record(ctx, Entry{Input: "1,-2", Error: "negatives not allowed: -2", CreatedAt: base.Add(time.Second)}))

	got, err := r.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1,-2", got[0].Input)
	assert.Equal(t, "negatives not allowed: -2", got[0].Error)
}
