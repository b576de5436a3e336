// internal/domain/models/blog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog represents a single blog post belonging to a domain.
//
// The slug defaults to a derivation of the title, may be edited
// independently, and is unique within its domain;
// two posts on different domains may share a slug. DomainName is a
// denormalized copy of the owning domain's name stamped at creation so
// list views never fan out into per-row domain lookups. It is display
// data only and is never written back to the domains collection.
type Blog struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DomainID primitive.ObjectID `bson:"domain_id" json:"domain_id"`

	Title string `bson:"title" json:"title"`
	Slug  string `bson:"slug" json:"slug"`

	DomainName string `bson:"domain_name" json:"domain_name"` // denormalized for display

	Content string `bson:"content" json:"content"` // sanitized HTML
	Excerpt string `bson:"excerpt,omitempty" json:"excerpt,omitempty"`

	Status      string     `bson:"status" json:"status"` // draft, published, scheduled
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`

	AuthorID primitive.ObjectID `bson:"author_id,omitempty" json:"author_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Blog statuses
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	BlogStatusScheduled = "scheduled"
)

// AllBlogStatuses returns all valid blog statuses.
func AllBlogStatuses() []string {
	return []string{
		BlogStatusDraft,
		BlogStatusPublished,
		BlogStatusScheduled,
	}
}

// IsValidBlogStatus checks if a blog status is valid.
func IsValidBlogStatus(status string) bool {
	for _, s := range AllBlogStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
