package session

// Profile defines a public type used by goGuard APIs.
//
// Profile carries the account fields the guard's decision rules read. Active is a
// pointer on purpose: a profile payload that never mentioned is_active must stay
// distinguishable from one that said is_active=false, because only the explicit
// false marks a deactivated account. JSON round-trips preserve the distinction
// through omitempty.
type Profile struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	Active   *bool  `json:"is_active,omitempty"`
}

// ActiveOrDefault reports whether the profile is active. A nil profile or a profile
// whose payload omitted is_active yields absentActive; an explicit value wins.
func (p *Profile) ActiveOrDefault(absentActive bool) bool {
	if p == nil || p.Active == nil {
		return absentActive
	}
	return *p.Active
}

// RoleOrEmpty returns the profile's role, or "" for a nil profile. A missing
// role matches no required role; it never widens access.
func (p *Profile) RoleOrEmpty() string {
	if p == nil {
		return ""
	}
	return p.Role
}

// Clone returns a deep copy of the profile, or nil for a nil receiver.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	out := *p
	if p.Active != nil {
		v := *p.Active
		out.Active = &v
	}
	return &out
}

// Snapshot defines a public type used by goGuard APIs.
//
// Snapshot is an immutable view of the session at one instant. Authenticated and
// Loading are the two axes the guard's rules branch on; Initialized records whether
// an initialization attempt has completed at least once, and Version increases with
// every store mutation. Profile is a private copy owned by the snapshot holder.
type Snapshot struct {
	Authenticated bool
	Loading       bool
	Initialized   bool

	Version   uint64
	SessionID string

	Profile *Profile
}
