package handler

import (
	"strings"

	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// CreateSessionRequest is the HTTP request body for POST /admin/sessions.
// Coordinates arrive as named latitude/longitude fields; the stored anchor
// uses [longitude, latitude] ordering.
type CreateSessionRequest struct {
	Title        string   `json:"title"`
	CreatedBy    string   `json:"createdBy,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters float64  `json:"radiusMeters,omitempty"`

	// Parsed values (populated by Validate)
	parsedCreatedBy id.UserID
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateSessionRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		return dErrors.New(dErrors.CodeValidation, "latitude and longitude must be provided together")
	}
	if r.Latitude != nil {
		if *r.Latitude < -90 || *r.Latitude > 90 {
			return dErrors.New(dErrors.CodeValidation, "latitude must be within [-90, 90]")
		}
		if *r.Longitude < -180 || *r.Longitude > 180 {
			return dErrors.New(dErrors.CodeValidation, "longitude must be within [-180, 180]")
		}
	}

	if r.RadiusMeters < 0 {
		return dErrors.New(dErrors.CodeValidation, "radiusMeters must not be negative")
	}

	if r.CreatedBy != "" {
		createdBy, err := id.ParseUserID(r.CreatedBy)
		if err != nil {
			return err
		}
		r.parsedCreatedBy = createdBy
	}

	return nil
}

// ParsedCreatedBy returns the validated owner id (zero when omitted).
func (r *CreateSessionRequest) ParsedCreatedBy() id.UserID {
	return r.parsedCreatedBy
}
