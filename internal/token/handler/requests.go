package handler

import (
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// TokenRequest is the HTTP request body for POST /token.
type TokenRequest struct {
	SessionID string `json:"sessionId"`

	// Parsed values (populated by Validate)
	parsedSessionID id.SessionID
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *TokenRequest) Validate() error {
	sessionID, err := id.ParseSessionID(r.SessionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "sessionId is not a valid id")
	}
	r.parsedSessionID = sessionID
	return nil
}

// ParsedSessionID returns the parsed session id. Only valid after Validate.
func (r *TokenRequest) ParsedSessionID() id.SessionID { return r.parsedSessionID }
