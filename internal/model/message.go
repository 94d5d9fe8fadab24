package model

import "time"

// Message is the canonical, fully tagged form of a report.
//
// Fields filled by joins are pointers: nil means the join missed.
type Message struct {
	ID            string
	OGServiceDate string
	PatientName   string
	PatientPhone  string
	SenderPhone   string
	Timestamp     time.Time
	Code          string

	PaymentPhone string
	WorkerName   *string
	District     *string
	Area         *string
	TrainingDate *time.Time
	Endline      *time.Time
	ServiceDate  time.Time

	Training  bool
	Invalid   bool
	Called    bool
	NoConsent bool
	Attempted bool
}

// NewMessage starts a message from a converted entry with all flags false.
func NewMessage(e Entry) Message {
	return Message{
		ID:            e.ID,
		OGServiceDate: e.OGServiceDate,
		PatientName:   e.PatientName,
		PatientPhone:  e.PatientPhone,
		SenderPhone:   e.SenderPhone,
		Timestamp:     e.Timestamp,
		Code:          e.Code,
	}
}

// DistrictName returns the district or "" when the roster join missed.
func (m Message) DistrictName() string {
	if m.District == nil {
		return ""
	}
	return *m.District
}
