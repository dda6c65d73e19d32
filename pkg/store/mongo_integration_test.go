//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/splitplan/pkg/errors"
)

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SPLITPLAN_MONGO_URI")
	if uri == "" {
		t.Skip("SPLITPLAN_MONGO_URI not set")
	}
	ctx := context.Background()

	s, err := NewMongoStore(ctx, MongoOptions{
		URI:        uri,
		Database:   "splitplan_test",
		Collection: "plans_" + uuid.NewString()[:8],
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.coll.Drop(context.Background())
		_ = s.Close(context.Background())
	})

	first, err := s.Save(ctx, mustSolve(t, 54, 18, 24))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := s.Save(ctx, mustSolve(t, 3, 1))
	require.NoError(t, err)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Plan, got.Plan)

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = s.Get(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}
