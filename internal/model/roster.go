package model

import "time"

// RenumberingEntry maps a worker's old phone number to the current one.
type RenumberingEntry struct {
	OldNumber string
	NewNumber string
}

// RosterEntry describes an active field worker.
type RosterEntry struct {
	ReportingNumber string
	Name            string
	District        string
	Area            string
	TrainingDate    *time.Time
}

// EndlineEntry marks when data collection ended for a worker.
type EndlineEntry struct {
	ReportingNumber string
	Endline         time.Time
}
