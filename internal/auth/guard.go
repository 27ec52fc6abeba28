package auth

import "github.com/homelet/homelet/internal/model"

// IsOwner reports whether the identity may mutate the given home.
// False for anonymous callers and for a nil home; existence of the
// record is the caller's concern, not the guard's. The comparison is
// always on the stable user identifier, never on email: email is
// mutable collaborator-owned data.
func IsOwner(ident *model.Identity, home *model.Home) bool {
	if ident == nil || home == nil {
		return false
	}
	return ident.ID == home.OwnerID
}

// FindOwned returns the home with the given id from the owned set, or
// nil when it is not there. A missing id and a foreign id are
// indistinguishable to the caller, which is what the edit-page gate
// relies on to avoid id enumeration.
func FindOwned(owned []*model.Home, id string) *model.Home {
	for _, h := range owned {
		if h.ID == id {
			return h
		}
	}
	return nil
}
