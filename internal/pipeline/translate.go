package pipeline

import "github.com/healthworkers/callcenter/internal/model"

// Crosswalk maps old phone numbers to their current value.
type Crosswalk map[string]string

// NewCrosswalk indexes renumbering entries by old number. Old numbers are
// expected to be unique; a repeated old number keeps its last mapping.
func NewCrosswalk(entries []model.RenumberingEntry) Crosswalk {
	cw := make(Crosswalk, len(entries))
	for _, e := range entries {
		cw[e.OldNumber] = e.NewNumber
	}
	return cw
}

// Translate returns the current number for n, or n itself when unmapped.
func (c Crosswalk) Translate(n string) string {
	if mapped, ok := c[n]; ok {
		return mapped
	}
	return n
}

// TranslateNumbers returns a copy of rows where the target field holds the
// translated value of the source field. Rows are never duplicated or dropped.
func TranslateNumbers[T any](rows []T, cw Crosswalk, source func(T) string, target func(*T, string)) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		target(&row, cw.Translate(source(row)))
		out[i] = row
	}
	return out
}
