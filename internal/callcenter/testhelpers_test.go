package callcenter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/healthworkers/callcenter/internal/model"
	"github.com/healthworkers/callcenter/internal/pipeline"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func district(name string) *string { return &name }

func msg(id, phone string, opts ...func(*model.Message)) model.Message {
	m := model.Message{
		ID:           id,
		PaymentPhone: phone,
		District:     district("Gulu"),
		ServiceDate:  time.Date(2021, 3, 10, 0, 0, 0, 0, time.UTC),
		Timestamp:    time.Date(2021, 3, 10, 8, 0, 0, 0, time.UTC),
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

func called(m *model.Message)    { m.Called = true }
func noConsent(m *model.Message) { m.NoConsent = true }
func training(m *model.Message)  { m.Training = true }

func inDistrict(name string) func(*model.Message) {
	return func(m *model.Message) { m.District = district(name) }
}

func phoneMessages(phone string, n int, opts ...func(*model.Message)) []model.Message {
	out := make([]model.Message, n)
	for i := range out {
		out[i] = msg(fmt.Sprintf("%s-%d", phone, i), phone, opts...)
	}
	return out
}

// memorySink replaces queues in memory.
type memorySink struct {
	mu     sync.Mutex
	queues map[string][]string
	calls  int
	err    error
}

func newMemorySink() *memorySink {
	return &memorySink{queues: make(map[string][]string)}
}

func (s *memorySink) ReplaceQueues(_ context.Context, batches map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	for name, records := range batches {
		s.queues[name] = append([]string(nil), records...)
	}
	return nil
}

type staticEnricher struct {
	messages []model.Message
	err      error
}

func (e staticEnricher) Run(context.Context) ([]model.Message, pipeline.Stats, error) {
	return e.messages, pipeline.Stats{Messages: len(e.messages)}, e.err
}
