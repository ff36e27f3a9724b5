package shared

// Actor is the caller identity resolved once at the request boundary and
// threaded through every lifecycle operation.
type Actor struct {
	ActorID   string
	IsStaff   bool
	PartnerID *int64
}

// NewStaffActor creates an actor with staff privileges
func NewStaffActor(actorID string) Actor {
	return Actor{ActorID: actorID, IsStaff: true}
}

// NewPartnerActor creates a non-staff actor bound to a partner profile
func NewPartnerActor(actorID string, partnerID int64) Actor {
	return Actor{ActorID: actorID, PartnerID: &partnerID}
}

// HasPartner reports whether the actor has an associated partner profile
func (a Actor) HasPartner() bool {
	return a.PartnerID != nil
}

// CanAccessPartner reports whether the actor may read or mutate data owned by partnerID.
// Staff can access every partner; everyone else only their own.
func (a Actor) CanAccessPartner(partnerID int64) bool {
	if a.IsStaff {
		return true
	}
	return a.PartnerID != nil && *a.PartnerID == partnerID
}

// ScopePartnerID returns the partner id that list queries must be restricted to.
// For staff the requested id is passed through (nil means all partners).
// Non-staff callers are always pinned to their own partner.
func (a Actor) ScopePartnerID(requested *int64) (*int64, error) {
	if a.IsStaff {
		return requested, nil
	}
	if a.PartnerID == nil {
		return nil, ErrForbidden
	}
	id := *a.PartnerID
	return &id, nil
}

// RequireStaff returns ErrForbidden unless the actor is staff
func (a Actor) RequireStaff() error {
	if !a.IsStaff {
		return ErrForbidden
	}
	return nil
}
