package handler

import (
	"net/http"
	"time"

	"rollcall/internal/verify"
)

// VerifyResponse is the JSON outcome of a claim. Accepted claims carry the
// persisted record; rejected claims carry the reason code plus the numeric
// evidence that produced it.
type VerifyResponse struct {
	Status    string    `json:"status"`
	CheckedAt time.Time `json:"checkedAt"`

	Record *RecordResponse `json:"record,omitempty"`

	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`

	DistanceMeters      *float64 `json:"distanceMeters,omitempty"`
	AllowedRadiusMeters *float64 `json:"allowedRadiusMeters,omitempty"`
	FaceDistance        *float64 `json:"faceDistance,omitempty"`
}

// RecordResponse is the JSON shape of the appended attendance record.
// Location uses the [longitude, latitude] storage ordering.
type RecordResponse struct {
	ID        string     `json:"id"`
	StudentID string     `json:"studentId"`
	SessionID string     `json:"sessionId"`
	Timestamp time.Time  `json:"timestamp"`
	Location  [2]float64 `json:"location"`
	Verified  bool       `json:"verified"`
}

// FromResult converts a pipeline result to its HTTP shape and status code.
func FromResult(result *verify.Result) (int, *VerifyResponse) {
	if result.Accepted() {
		rec := result.Record
		return http.StatusCreated, &VerifyResponse{
			Status:    "verified",
			CheckedAt: result.CheckedAt,
			Record: &RecordResponse{
				ID:        rec.ID.String(),
				StudentID: rec.StudentID.String(),
				SessionID: rec.SessionID.String(),
				Timestamp: rec.Timestamp,
				Location:  rec.Location.Coordinates(),
				Verified:  rec.Verified,
			},
		}
	}

	rej := result.Rejection
	resp := &VerifyResponse{
		Status:    "rejected",
		CheckedAt: result.CheckedAt,
		Reason:    string(rej.Reason),
		Message:   rej.Message,
	}
	switch rej.Reason {
	case verify.ReasonOutOfRange:
		distance, radius := rej.DistanceM, rej.AllowedRadiusM
		resp.DistanceMeters = &distance
		resp.AllowedRadiusMeters = &radius
	case verify.ReasonIdentityMismatch:
		faceDistance := rej.FaceDistance
		resp.FaceDistance = &faceDistance
	}
	return statusForReason(rej.Reason), resp
}

func statusForReason(reason verify.Reason) int {
	switch reason {
	case verify.ReasonSessionNotFound, verify.ReasonProfileNotFound:
		return http.StatusNotFound
	case verify.ReasonDuplicateClaim:
		return http.StatusConflict
	case verify.ReasonDependencyUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
