package domain

// Identity is the resolved caller for one unit of work. It is established by
// the authentication layer before any resource access and is immutable for
// the lifetime of the unit.
type Identity struct {
	SubjectID string
	IsAdmin   bool
}

// Anonymous returns the fail-closed default identity: no subject, no admin.
func Anonymous() Identity { return Identity{} }

// IsAnonymous reports whether the identity carries no subject.
func (id Identity) IsAnonymous() bool { return id.SubjectID == "" }
