// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a member of the team: either an admin who manages the
// whole workspace or a writer who only works on blog content.
//
// Email is the login identifier and is stored lowercase; EmailCI holds
// the case/diacritic-folded form used for lookups and the unique index.
type User struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped

	Email   string `bson:"email" json:"email"`       // login identifier (lowercase)
	EmailCI string `bson:"email_ci" json:"email_ci"` // folded for case/diacritic-insensitive matching

	PasswordHash string `bson:"password_hash" json:"-"` // bcrypt hash (never in JSON)

	Role   string `bson:"role" json:"role"`                         // admin, writer
	Status string `bson:"status,omitempty" json:"status,omitempty"` // active, disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User roles
const (
	RoleAdmin  = "admin"
	RoleWriter = "writer"
)

// AllRoles returns all valid user roles.
func AllRoles() []string {
	return []string{
		RoleAdmin,
		RoleWriter,
	}
}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// RoleCanManageWorkspace reports whether a role may use the admin-only
// areas: domains, leads, writer management, and the stats overview.
// Writers are limited to blog content.
func RoleCanManageWorkspace(role string) bool {
	return role == RoleAdmin
}
