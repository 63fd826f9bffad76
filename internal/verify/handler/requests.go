package handler

import (
	"rollcall/internal/biometric"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// MarkRequest is the HTTP request body for POST /verify. Latitude and
// longitude stay optional at the decode layer; the pipeline turns their
// absence into a MissingLocationInput rejection so the client sees the
// rejection taxonomy rather than a generic validation error.
type MarkRequest struct {
	StudentID      string    `json:"studentId"`
	SessionID      string    `json:"sessionId"`
	QRToken        string    `json:"qrToken,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	FaceDescriptor []float64 `json:"faceDescriptor"`

	// Parsed values (populated by Validate)
	parsedStudentID  id.UserID
	parsedSessionID  id.SessionID
	parsedDescriptor biometric.Descriptor
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *MarkRequest) Validate() error {
	studentID, err := id.ParseUserID(r.StudentID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "studentId is not a valid id")
	}
	r.parsedStudentID = studentID

	sessionID, err := id.ParseSessionID(r.SessionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "sessionId is not a valid id")
	}
	r.parsedSessionID = sessionID

	descriptor, err := biometric.ParseDescriptor(r.FaceDescriptor)
	if err != nil {
		return err
	}
	r.parsedDescriptor = descriptor

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		return dErrors.New(dErrors.CodeValidation, "latitude must be within [-90, 90]")
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		return dErrors.New(dErrors.CodeValidation, "longitude must be within [-180, 180]")
	}

	return nil
}

// ParsedStudentID returns the parsed student id. Only valid after Validate.
func (r *MarkRequest) ParsedStudentID() id.UserID { return r.parsedStudentID }

// ParsedSessionID returns the parsed session id. Only valid after Validate.
func (r *MarkRequest) ParsedSessionID() id.SessionID { return r.parsedSessionID }

// ParsedDescriptor returns the parsed descriptor. Only valid after Validate.
func (r *MarkRequest) ParsedDescriptor() biometric.Descriptor { return r.parsedDescriptor }
