package types

import "fmt"

// Identity selects how an insert assigns a primary key: either the store
// generates a fresh one, or the caller supplies it and an existing row with
// that key is replaced in place.
type Identity struct {
	id       int64
	assigned bool
}

// NewIdentity requests a freshly generated identity
func NewIdentity() Identity {
	return Identity{}
}

// WithIdentity requests an identity-preserving insert of id. A row that already
// holds id is updated in place rather than duplicated.
func WithIdentity(id int64) Identity {
	return Identity{id: id, assigned: true}
}

// IdentityOf maps the zero-means-generate convention onto an Identity:
// 0 yields NewIdentity, anything else WithIdentity.
func IdentityOf(id int64) Identity {
	if id == 0 {
		return NewIdentity()
	}
	return WithIdentity(id)
}

// Value returns the supplied identity and whether one was supplied
func (i Identity) Value() (int64, bool) {
	return i.id, i.assigned
}

// IsNew reports whether the store must generate the identity
func (i Identity) IsNew() bool {
	return !i.assigned
}

func (i Identity) String() string {
	if !i.assigned {
		return "new"
	}
	return fmt.Sprintf("id=%d", i.id)
}

// ConflictPolicy selects how a duplicate note/tag association is handled
type ConflictPolicy int

const (
	// ConflictIgnore keeps the existing association (idempotent add)
	ConflictIgnore ConflictPolicy = iota
	// ConflictReplace overwrites the existing association (upsert)
	ConflictReplace
)

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictIgnore:
		return "ignore"
	case ConflictReplace:
		return "replace"
	default:
		return fmt.Sprintf("ConflictPolicy(%d)", int(p))
	}
}
