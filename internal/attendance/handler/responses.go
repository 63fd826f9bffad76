package handler

import (
	"time"

	"rollcall/internal/attendance"
)

// RecordResponse is the JSON shape of an attendance record. Location uses
// the [longitude, latitude] storage ordering.
type RecordResponse struct {
	ID        string     `json:"id"`
	StudentID string     `json:"studentId"`
	SessionID string     `json:"sessionId"`
	Timestamp time.Time  `json:"timestamp"`
	Location  [2]float64 `json:"location"`
	Verified  bool       `json:"verified"`
}

// StatsResponse summarizes a student's attendance. Percentage is formatted
// with one decimal, matching the dashboard contract.
type StatsResponse struct {
	Attended   int    `json:"attended"`
	Total      int    `json:"total"`
	Percentage string `json:"percentage"`
}

// FromRecord converts a domain record to its HTTP response shape.
func FromRecord(rec *attendance.Record) *RecordResponse {
	return &RecordResponse{
		ID:        rec.ID.String(),
		StudentID: rec.StudentID.String(),
		SessionID: rec.SessionID.String(),
		Timestamp: rec.Timestamp,
		Location:  rec.Location.Coordinates(),
		Verified:  rec.Verified,
	}
}

// FromRecords converts a list of records.
func FromRecords(records []*attendance.Record) []*RecordResponse {
	out := make([]*RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out
}
