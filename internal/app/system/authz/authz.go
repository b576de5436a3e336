// internal/app/system/authz/authz.go

// Package authz answers "who is this request and what may they see"
// questions for handlers and templates. Route-level enforcement lives in
// the auth middleware; these helpers cover in-handler decisions like
// which navigation links to render.
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. This ensures callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsWriter reports whether the current request's user is a writer.
func IsWriter(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleWriter
}

// CanManageWorkspace reports whether the current user may use the
// admin-only areas: domains, leads, writer management, and the stats
// overview. This is the single place that decision is made; templates
// and handlers ask here instead of comparing role strings.
func CanManageWorkspace(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && models.RoleCanManageWorkspace(role)
}

// IsLoggedIn reports whether there is a user in the request context.
func IsLoggedIn(r *http.Request) bool {
	_, ok := auth.CurrentUser(r)
	return ok
}

// HasRole reports whether the current user has one of the specified roles.
func HasRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, allowed := range roles {
		if strings.ToLower(allowed) == role {
			return true
		}
	}
	return false
}

