package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/splitplan/pkg/errors"
)

func TestPlanDocBSON(t *testing.T) {
	rec := newRecord(mustSolve(t, 5, 3), time.Now())

	raw, err := bson.Marshal(toDoc(rec))
	require.NoError(t, err)

	var doc planDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, rec.ID, doc.ID)

	got, err := fromDoc(doc)
	require.NoError(t, err)
	assert.Equal(t, rec.Plan, got.Plan)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
}

func TestFromDocRejectsCorruptPlan(t *testing.T) {
	doc := toDoc(newRecord(mustSolve(t, 3, 1), time.Now()))
	doc.Layers[0].Arity = 5

	_, err := fromDoc(doc)
	assert.True(t, errors.Is(err, errors.ErrCodeInvariant))
}
