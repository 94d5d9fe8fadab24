package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthworkers/callcenter/internal/model"
)

func TestMergeWorkerInfo(t *testing.T) {
	roster := []model.RosterEntry{
		{ReportingNumber: "111", Name: "Alice", District: "Gulu", Area: "North", TrainingDate: dayPtr(2021, 1, 5)},
		{ReportingNumber: "222", Name: "Bob", District: "Lira"},
	}
	messages := []model.Message{
		{ID: "a", PaymentPhone: "111"},
		{ID: "b", PaymentPhone: "333"},
		{ID: "c", PaymentPhone: "222"},
	}

	out := MergeWorkerInfo(messages, roster)
	require.Len(t, out, 3)

	require.NotNil(t, out[0].WorkerName)
	assert.Equal(t, "Alice", *out[0].WorkerName)
	assert.Equal(t, "Gulu", *out[0].District)
	assert.Equal(t, "North", *out[0].Area)
	assert.Equal(t, day(2021, 1, 5), *out[0].TrainingDate)

	assert.Nil(t, out[1].WorkerName)
	assert.Nil(t, out[1].District)
	assert.Nil(t, out[1].TrainingDate)

	assert.Equal(t, "Bob", *out[2].WorkerName)
	assert.Nil(t, out[2].Area, "empty cells become nil")
	assert.Nil(t, out[2].TrainingDate)
}

func TestMergeEndline(t *testing.T) {
	endline := []model.EndlineEntry{{ReportingNumber: "111", Endline: day(2021, 6, 1)}}
	messages := []model.Message{{ID: "a", PaymentPhone: "111"}, {ID: "b", PaymentPhone: "222"}}

	out := MergeEndline(messages, endline)
	require.NotNil(t, out[0].Endline)
	assert.Equal(t, day(2021, 6, 1), *out[0].Endline)
	assert.Nil(t, out[1].Endline)
}
