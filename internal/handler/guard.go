// internal/handler/guard.go
package handler

import (
	"net/http"

	"github.com/grundwerk/grundwerk/internal/middleware"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/service"
)

// Guard resolves the authenticated caller into a user + organization
// membership and enforces the minimum role for the route. Every protected
// handler goes through it, so tenant scoping starts from the same place.
type Guard struct {
	users *service.UserService
}

func NewGuard(users *service.UserService) *Guard {
	return &Guard{users: users}
}

// Require returns the caller's membership, or writes the error response and
// returns ok=false. No membership is a 403, not a 404; the caller exists but
// has no tenant.
func (g *Guard) Require(w http.ResponseWriter, r *http.Request, minRole model.OrgRole) (*service.Membership, bool) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	m, err := g.users.ResolveMembership(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}

	if !m.Org.Role.AtLeast(minRole) {
		respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return nil, false
	}
	return m, true
}
