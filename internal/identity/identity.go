// Package identity holds the enrolled reference descriptors that claims are
// matched against. Enrollment itself (capture, liveness, quality gating) is
// an external pipeline; this package only stores one reference vector per
// identity and treats it as read-only ground truth.
package identity

import (
	"rollcall/internal/biometric"
	id "rollcall/pkg/domain"
)

// Identity is an enrolled person.
type Identity struct {
	ID   id.UserID
	Name string
	// Descriptor is the reference vector captured at enrollment. An empty
	// descriptor means the identity can never be verified.
	Descriptor biometric.Descriptor
}

// Enrolled reports whether the identity carries a usable reference vector.
func (i *Identity) Enrolled() bool {
	return i != nil && len(i.Descriptor) == biometric.Dimension
}

// Clone returns a deep copy for snapshot reads.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.Descriptor != nil {
		c.Descriptor = make(biometric.Descriptor, len(i.Descriptor))
		copy(c.Descriptor, i.Descriptor)
	}
	return &c
}
