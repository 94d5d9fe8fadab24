package callcenter

import (
	"sort"

	"github.com/healthworkers/callcenter/internal/model"
)

// Shuffler permutes n elements. *rand.Rand from math/rand/v2 satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// PickNeededCalls draws up to the needed count of uncalled, consenting
// messages per payment phone, then shuffles the combined picks. Phones
// without a quota, or with a non-positive one, contribute nothing.
func PickNeededCalls(quotas []model.CallQuota, messages []model.Message, rng Shuffler) []model.Message {
	needed := make(map[string]int, len(quotas))
	for _, q := range quotas {
		needed[q.PaymentPhone] = q.Needed
	}

	groups := make(map[string][]model.Message)
	for _, m := range messages {
		if m.Called || m.NoConsent {
			continue
		}
		groups[m.PaymentPhone] = append(groups[m.PaymentPhone], m)
	}

	phones := make([]string, 0, len(groups))
	for p := range groups {
		phones = append(phones, p)
	}
	sort.Strings(phones)

	var picks []model.Message
	for _, p := range phones {
		group := groups[p]
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		n := min(max(needed[p], 0), len(group))
		picks = append(picks, group[:n]...)
	}

	rng.Shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })
	return picks
}
