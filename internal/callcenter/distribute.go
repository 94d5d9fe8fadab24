package callcenter

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/model"
)

// QueueSink replaces the content of named queues. All queues in one call
// must be replaced atomically: each ends up holding exactly its records,
// in order, with nothing left from earlier content.
type QueueSink interface {
	ReplaceQueues(ctx context.Context, batches map[string][]string) error
}

// Partition groups messages by district. Messages without a district, or
// with an empty one, are skipped and counted.
func Partition(messages []model.Message) (map[string][]model.Message, int) {
	parts := make(map[string][]model.Message)
	var skipped int
	for _, m := range messages {
		name := m.DistrictName()
		if name == "" {
			skipped++
			continue
		}
		parts[name] = append(parts[name], m)
	}
	return parts, skipped
}

// Distributor writes selected messages to district queues.
type Distributor struct {
	sink QueueSink
}

// NewDistributor creates a Distributor writing to sink.
func NewDistributor(sink QueueSink) *Distributor {
	return &Distributor{sink: sink}
}

// Write replaces the queue of every district present in calls or training
// with that district's records, in a single sink submission. Training
// messages carry their target queue as district and follow any calls bound
// for the same queue. Nothing is written if any message fails to encode.
// It returns the number of calls loaded per district.
func (d *Distributor) Write(ctx context.Context, calls, training []model.Message) (map[string]int, error) {
	parts, skipped := Partition(calls)
	if skipped > 0 {
		zap.L().Info("callcenter: skipped messages without district", zap.Int("skipped", skipped))
	}
	extra, _ := Partition(training)

	batches := make(map[string][]string, len(parts)+len(extra))
	loaded := make(map[string]int, len(parts))
	for district, msgs := range parts {
		records, err := encodeAll(msgs)
		if err != nil {
			return nil, err
		}
		batches[district] = records
		loaded[district] = len(records)
	}
	for district, msgs := range extra {
		records, err := encodeAll(msgs)
		if err != nil {
			return nil, err
		}
		batches[district] = append(batches[district], records...)
	}
	if len(batches) == 0 {
		return loaded, nil
	}

	districts := make([]string, 0, len(batches))
	for district := range batches {
		districts = append(districts, district)
	}
	sort.Strings(districts)
	for _, district := range districts {
		zap.L().Info("callcenter: loading new messages",
			zap.String("district", district),
			zap.Int("calls", loaded[district]),
			zap.Int("training", len(extra[district])),
		)
	}

	if err := d.sink.ReplaceQueues(ctx, batches); err != nil {
		return nil, eris.Wrap(err, "callcenter: replace district queues")
	}
	return loaded, nil
}

func encodeAll(messages []model.Message) ([]string, error) {
	records := make([]string, 0, len(messages))
	for _, m := range messages {
		rec, err := Encode(m)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
