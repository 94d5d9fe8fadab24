// Package model defines the records that flow through the call-center pipeline.
package model

import "time"

// RawReport is a field-worker service report as received from the report source.
type RawReport struct {
	ServiceDate  string    `json:"Service_Date"`
	PatientName  string    `json:"Patient_Name"`
	PatientPhone string    `json:"Patient_Phone_Number"`
	SenderPhone  string    `json:"Sender_Phone_Number"`
	ReportDate   time.Time `json:"Report_Date"`
	ServiceCode  string    `json:"Service_Code"`
}

// Entry is a raw report after key renaming and identifier assignment.
type Entry struct {
	ID            string
	OGServiceDate string
	PatientName   string
	PatientPhone  string
	SenderPhone   string
	Timestamp     time.Time
	Code          string
}
