// Package policy holds the authorization predicates shared by the booking,
// listing and payment services. All predicates are pure functions of their
// inputs.
package policy

import (
	"net/http"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
)

// Actor is the authenticated caller resolved from the request. An Actor with
// an empty ID is anonymous.
type Actor struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

var Anonymous = Actor{}

func (a Actor) IsAnonymous() bool {
	return a.ID == ""
}

// CanWrite reports whether actor owns the resource.
func CanWrite(actor Actor, resourceOwner string) bool {
	return !actor.IsAnonymous() && actor.ID == resourceOwner
}

// CanRead reports whether method is a safe, read-only HTTP method.
func CanRead(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// IsHost reports whether actor is the host of listing.
func IsHost(actor Actor, listing *models.Listing) bool {
	return listing != nil && CanWrite(actor, listing.HostID)
}
