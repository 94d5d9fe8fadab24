package pipeline

import (
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/model"
)

// AddEvents folds the outcome stream into the message flags. Events whose
// identifier is not in the batch, or whose kind is unknown, are discarded.
// It returns the updated messages and the number of discarded events.
func AddEvents(messages []model.Message, events []model.Event) ([]model.Message, int) {
	zap.L().Debug("pipeline: adding events", zap.Int("events", len(events)))

	out := make([]model.Message, len(messages))
	index := make(map[string]*model.Message, len(messages))
	for i, m := range messages {
		m.Called, m.NoConsent, m.Attempted = false, false, false
		out[i] = m
		index[m.ID] = &out[i]
	}

	var discarded int
	for _, e := range events {
		m, ok := index[e.RecordID]
		if !ok {
			zap.L().Debug("pipeline: event for unknown message", zap.String("id", e.RecordID))
			discarded++
			continue
		}
		switch e.Kind {
		case model.EventCalled:
			m.Called = true
		case model.EventNoConsent:
			m.NoConsent = true
		case model.EventAttempted:
			m.Attempted = true
		default:
			zap.L().Debug("pipeline: unknown event kind", zap.String("event", string(e.Kind)), zap.String("id", e.RecordID))
			discarded++
		}
	}
	return out, discarded
}
