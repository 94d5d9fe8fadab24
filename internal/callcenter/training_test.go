package callcenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthworkers/callcenter/internal/model"
)

func TestTrainingBatch_RelabelsAndFillsPlaceholders(t *testing.T) {
	trained := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	withWorker := msg("known", "P", training, func(m *model.Message) {
		m.WorkerName = district("Alice")
		m.TrainingDate = &trained
	})
	anonymous := msg("anon", "Z", training)
	anonymous.District = nil

	batch := TrainingBatch([]model.Message{withWorker, anonymous}, 500, "Test", seeded())
	require.Len(t, batch, 2)

	byID := map[string]model.Message{}
	for _, m := range batch {
		assert.Equal(t, "Test", *m.District)
		byID[m.ID] = m
	}
	assert.Equal(t, "Alice", *byID["known"].WorkerName)
	assert.Equal(t, trained, *byID["known"].TrainingDate)
	assert.Equal(t, PlaceholderWorkerName, *byID["anon"].WorkerName)
	assert.Equal(t, time.Unix(0, 0).UTC(), *byID["anon"].TrainingDate)
	assert.Nil(t, anonymous.District, "input untouched")
}

func TestTrainingBatch_SampleSize(t *testing.T) {
	pool := phoneMessages("Z", 20, training)

	batch := TrainingBatch(pool, 5, "Test", seeded())
	assert.Len(t, batch, 5)

	seen := map[string]bool{}
	for _, m := range batch {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
	assert.Empty(t, TrainingBatch(nil, 500, "Test", seeded()))
}
