package callcenter

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/healthworkers/callcenter/internal/model"
)

// jsonDate is the extended-JSON date form read by the call-center dashboard.
type jsonDate struct {
	Date int64 `json:"$date"`
}

func dateOf(t time.Time) *jsonDate {
	return &jsonDate{Date: t.UnixMilli()}
}

func optionalDate(t *time.Time) *jsonDate {
	if t == nil {
		return nil
	}
	return dateOf(*t)
}

// wireMessage is the queue record. Every missing value encodes as null.
type wireMessage struct {
	ID            string    `json:"_id"`
	OGServiceDate string    `json:"ogServiceDate"`
	PatientName   string    `json:"patientName"`
	PatientPhone  string    `json:"patientPhone"`
	SenderPhone   string    `json:"senderPhone"`
	Timestamp     *jsonDate `json:"timestamp"`
	Code          string    `json:"code"`
	PaymentPhone  string    `json:"paymentPhone"`
	WorkerName    *string   `json:"workerName"`
	District      *string   `json:"chw_district"`
	Area          *string   `json:"chw_area"`
	TrainingDate  *jsonDate `json:"training_date"`
	Endline       *jsonDate `json:"endline"`
	ServiceDate   *jsonDate `json:"serviceDate"`
	Training      bool      `json:"training"`
	Invalid       bool      `json:"invalid"`
	Called        bool      `json:"called"`
	NoConsent     bool      `json:"noConsent"`
	Attempted     bool      `json:"attempted"`
}

// Encode serializes a message into its queue record.
func Encode(m model.Message) (string, error) {
	w := wireMessage{
		ID:            m.ID,
		OGServiceDate: m.OGServiceDate,
		PatientName:   m.PatientName,
		PatientPhone:  m.PatientPhone,
		SenderPhone:   m.SenderPhone,
		Code:          m.Code,
		PaymentPhone:  m.PaymentPhone,
		WorkerName:    m.WorkerName,
		District:      m.District,
		Area:          m.Area,
		TrainingDate:  optionalDate(m.TrainingDate),
		Endline:       optionalDate(m.Endline),
		Training:      m.Training,
		Invalid:       m.Invalid,
		Called:        m.Called,
		NoConsent:     m.NoConsent,
		Attempted:     m.Attempted,
	}
	if !m.Timestamp.IsZero() {
		w.Timestamp = dateOf(m.Timestamp)
	}
	if !m.ServiceDate.IsZero() {
		w.ServiceDate = dateOf(m.ServiceDate)
	}

	b, err := json.Marshal(w)
	if err != nil {
		return "", eris.Wrapf(err, "callcenter: encode message %s", m.ID)
	}
	return string(b), nil
}
