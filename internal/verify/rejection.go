package verify

import "fmt"

// Reason is a stable machine-readable rejection code. Codes are part of the
// wire contract; renaming one breaks clients.
type Reason string

const (
	ReasonSessionNotFound        Reason = "SessionNotFound"
	ReasonSessionInactive        Reason = "SessionInactive"
	ReasonInvalidSessionLocation Reason = "InvalidSessionLocation"
	ReasonTokenSignatureInvalid  Reason = "TokenSignatureInvalid"
	ReasonTokenSessionMismatch   Reason = "TokenSessionMismatch"
	ReasonTokenExpired           Reason = "TokenExpired"
	ReasonOutOfRange             Reason = "OutOfRange"
	ReasonProfileNotFound        Reason = "ProfileNotFound"
	ReasonIdentityMismatch       Reason = "IdentityMismatch"
	ReasonMissingLocationInput   Reason = "MissingLocationInput"
	ReasonDependencyUnavailable  Reason = "DependencyUnavailable"
	ReasonDuplicateClaim         Reason = "DuplicateClaim"
)

// Rejection explains a refused claim. Numeric fields are populated only for
// the reasons that produced them.
type Rejection struct {
	Reason  Reason
	Message string

	// Geofence measurements, set for OutOfRange.
	DistanceM      float64
	AllowedRadiusM float64

	// Biometric distance, set for IdentityMismatch.
	FaceDistance float64
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("claim rejected: %s: %s", r.Reason, r.Message)
}

func outOfRange(distanceM, radiusM float64) *Rejection {
	return &Rejection{
		Reason:         ReasonOutOfRange,
		Message:        fmt.Sprintf("location is %.1fm from the session anchor, outside the %.0fm radius", distanceM, radiusM),
		DistanceM:      distanceM,
		AllowedRadiusM: radiusM,
	}
}

func identityMismatch(faceDistance float64) *Rejection {
	return &Rejection{
		Reason:       ReasonIdentityMismatch,
		Message:      "face descriptor does not match the enrolled reference",
		FaceDistance: faceDistance,
	}
}

func reject(reason Reason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}
