// internal/domain/models/domain.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Domain represents a web property tracked in the workspace. Blogs are
// published under a domain and inbound leads are attributed to one.
//
// A domain is "secured" when it has an API key: only secured domains can
// accept leads through the public capture endpoint. The key is generated
// server-side and shown to the admin once on creation.
type Domain struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped

	URL   string `bson:"url" json:"url"`       // canonical site URL (lowercase)
	URLCI string `bson:"url_ci" json:"url_ci"` // folded, unique per workspace

	APIKey string `bson:"api_key,omitempty" json:"api_key,omitempty"` // empty = unsecured

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Secured reports whether the domain can accept captured leads.
func (d *Domain) Secured() bool {
	return d.APIKey != ""
}
