package domain

// Principal is the identity an access decision is made for.
type Principal struct {
	ID string
}

// Anonymous has no ACL entries of its own.
var Anonymous = Principal{}

// IsAnonymous reports whether p carries no identity.
func (p Principal) IsAnonymous() bool { return p.ID == "" }
