package pipeline

import (
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/model"
)

// AssignTesterNumbers flags messages whose payment phone is not a roster
// reporting number as training.
func AssignTesterNumbers(messages []model.Message, reporting map[string]struct{}) []model.Message {
	zap.L().Debug("pipeline: tagging tester messages")

	out := make([]model.Message, len(messages))
	for i, m := range messages {
		if _, ok := reporting[m.PaymentPhone]; !ok {
			m.Training = true
		}
		out[i] = m
	}
	return out
}

// AssignTrainingMessages flags messages sent on or before the worker's
// training day as training. Messages without a training date are left as is.
func AssignTrainingMessages(messages []model.Message) []model.Message {
	zap.L().Debug("pipeline: tagging training messages")

	out := make([]model.Message, len(messages))
	for i, m := range messages {
		if IsTrainingDay(m) {
			m.Training = true
		}
		out[i] = m
	}
	return out
}

// IsTrainingDay reports whether the message's service day is on or before
// the worker's training date.
func IsTrainingDay(m model.Message) bool {
	if m.TrainingDate == nil {
		return false
	}
	return !m.TrainingDate.Before(midnight(m.ServiceDate))
}

// AssignInvalidMessages flags messages reported at or after the worker's
// endline. Messages without an endline are never invalid.
func AssignInvalidMessages(messages []model.Message) []model.Message {
	zap.L().Debug("pipeline: tagging invalid messages")

	out := make([]model.Message, len(messages))
	for i, m := range messages {
		m.Invalid = m.Endline != nil && !m.Timestamp.Before(*m.Endline)
		out[i] = m
	}
	return out
}
