package callcenter

import (
	"time"

	"github.com/healthworkers/callcenter/internal/model"
)

// PlaceholderWorkerName fills the worker name of test queue records.
const PlaceholderWorkerName = "Tester McTesterson"

// TrainingBatch samples up to size training messages and relabels them for
// the test district. Missing training dates become the Unix epoch and
// missing worker names become PlaceholderWorkerName.
func TrainingBatch(training []model.Message, size int, district string, rng Shuffler) []model.Message {
	pool := make([]model.Message, len(training))
	copy(pool, training)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	pool = pool[:min(max(size, 0), len(pool))]

	for i := range pool {
		d := district
		pool[i].District = &d
		if pool[i].TrainingDate == nil {
			epoch := time.Unix(0, 0).UTC()
			pool[i].TrainingDate = &epoch
		}
		if pool[i].WorkerName == nil {
			name := PlaceholderWorkerName
			pool[i].WorkerName = &name
		}
	}
	return pool
}
