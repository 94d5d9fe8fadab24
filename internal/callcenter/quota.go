// Package callcenter computes per-worker call quotas, selects messages to
// verify and distributes them to district call queues.
package callcenter

import (
	"math"
	"sort"
	"time"

	"github.com/healthworkers/callcenter/internal/model"
)

// Window returns the messages eligible for quota accounting: service date
// after now-since, not training and not refused consent.
func Window(messages []model.Message, now time.Time, since time.Duration) []model.Message {
	start := now.Add(-since)
	out := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if m.ServiceDate.After(start) && !m.Training && !m.NoConsent {
			out = append(out, m)
		}
	}
	return out
}

// Training returns the messages flagged as training.
func Training(messages []model.Message) []model.Message {
	var out []model.Message
	for _, m := range messages {
		if m.Training {
			out = append(out, m)
		}
	}
	return out
}

// CallCounts counts reports and completed calls per payment phone.
func CallCounts(messages []model.Message) map[string]*model.CallQuota {
	counts := make(map[string]*model.CallQuota)
	for _, m := range messages {
		q, ok := counts[m.PaymentPhone]
		if !ok {
			q = &model.CallQuota{PaymentPhone: m.PaymentPhone}
			counts[m.PaymentPhone] = q
		}
		q.Reports++
		if m.Called {
			q.Called++
		}
	}
	return counts
}

// AddNeededCalls sets needed = ceil(reports * target) - called on every
// quota. The result may be negative when a phone is already over quota.
func AddNeededCalls(counts map[string]*model.CallQuota, target float64) map[string]*model.CallQuota {
	for _, q := range counts {
		q.Needed = int(math.Ceil(float64(q.Reports)*target)) - q.Called
	}
	return counts
}

// Quotas computes the call quota of every payment phone in the window,
// sorted by payment phone.
func Quotas(window []model.Message, target float64) []model.CallQuota {
	counts := AddNeededCalls(CallCounts(window), target)
	out := make([]model.CallQuota, 0, len(counts))
	for _, q := range counts {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentPhone < out[j].PaymentPhone })
	return out
}
