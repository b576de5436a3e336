// internal/domain/models/lead.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead represents an inbound contact captured from one of the tracked
// domains. Leads only enter the system through the capture API; the
// dashboard reads and triages them but never creates them by hand.
//
// DomainName is a denormalized copy of the owning domain's name stamped
// at capture time so list views never fan out into per-row lookups. It
// is display data only and is never accepted from clients.
//
// Metadata is an open document: whatever extra fields the submitting
// form sends are kept as-is, alongside the attribution fields the
// capture endpoint stamps in (client IP, referrer).
type Lead struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DomainID   primitive.ObjectID `bson:"domain_id" json:"domain_id"`
	DomainName string             `bson:"domain_name" json:"domain_name"` // denormalized for display

	FirstName string `bson:"first_name" json:"first_name"`
	LastName  string `bson:"last_name,omitempty" json:"last_name,omitempty"`
	NameCI    string `bson:"name_ci" json:"-"` // folded "first last" for search

	Email string `bson:"email" json:"email"` // lowercase
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`

	Subject string `bson:"subject,omitempty" json:"subject,omitempty"`
	Message string `bson:"message,omitempty" json:"message,omitempty"`

	Source string `bson:"source" json:"source"` // e.g. "contact_form"
	Status string `bson:"status" json:"status"` // new, contacted, qualified, closed

	// Optional project-style fields some capture forms submit.
	Deadline  *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
	WordCount int        `bson:"word_count,omitempty" json:"word_count,omitempty"`
	Files     []string   `bson:"files,omitempty" json:"files,omitempty"`

	Metadata bson.M `bson:"metadata,omitempty" json:"metadata,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName returns the lead's display name.
func (l *Lead) FullName() string {
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// DefaultLeadSource is stamped on captures that do not declare a source.
const DefaultLeadSource = "contact_form"

// Lead statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusClosed    = "closed"
)

// AllLeadStatuses returns all valid lead statuses.
func AllLeadStatuses() []string {
	return []string{
		LeadStatusNew,
		LeadStatusContacted,
		LeadStatusQualified,
		LeadStatusClosed,
	}
}

// IsValidLeadStatus checks if a lead status is valid.
func IsValidLeadStatus(status string) bool {
	for _, s := range AllLeadStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
