package address

import (
	"net/url"

	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

// Scope область чтения адресов: все адреса или адреса одного владельца.
type Scope struct {
	All     bool
	OwnerID string
}

// ScopeFor единственное место, где роль превращается в область чтения.
// ADMIN читает всё, любая другая роль - только свои адреса.
func ScopeFor(p models.Profile) Scope {
	if p.IsAdmin() {
		return Scope{All: true}
	}
	return Scope{OwnerID: p.ID}
}

// Path путь списка адресов для области.
func (s Scope) Path() string {
	if s.All {
		return "/address/all"
	}
	return "/address/all/" + url.PathEscape(s.OwnerID)
}

func (s Scope) String() string {
	if s.All {
		return "all"
	}
	return "ownedBy(" + s.OwnerID + ")"
}
