// Package leadstore persists inbound leads captured from registered domains.
package leadstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/leadcentral/internal/app/store/storeutil"
	"github.com/dalemusser/leadcentral/internal/app/system/normalize"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

var (
	// ErrMissingFirstName is returned when a capture omits the first name.
	ErrMissingFirstName = errors.New("lead first name is required")
	// ErrMissingEmail is returned when a capture omits the email address.
	ErrMissingEmail = errors.New("lead email is required")

	errBadStatus = errors.New("invalid lead status")
)

// Store wraps the leads collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store backed by the given database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("leads")}
}

// GetByID returns one lead by its ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Lead, error) {
	var l models.Lead
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateInput carries a captured lead submission. DomainID and
// DomainName come from the resolved capture key, never from the client.
type CreateInput struct {
	DomainID   primitive.ObjectID
	DomainName string

	FirstName string
	LastName  string
	Email     string
	Phone     string

	Subject string
	Message string

	Source string // defaults to models.DefaultLeadSource

	Deadline  *time.Time
	WordCount int
	Files     []string

	// Metadata carries capture context (client IP, referrer, extras).
	Metadata bson.M
}

// Create inserts a lead with status "new". First name and email are the
// only required submission fields.
func (s *Store) Create(ctx context.Context, in CreateInput) (*models.Lead, error) {
	firstName := normalize.Name(in.FirstName)
	if firstName == "" {
		return nil, ErrMissingFirstName
	}
	email := normalize.Email(in.Email)
	if email == "" {
		return nil, ErrMissingEmail
	}

	lastName := normalize.Name(in.LastName)
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = models.DefaultLeadSource
	}

	now := time.Now().UTC()
	l := &models.Lead{
		ID:         primitive.NewObjectID(),
		DomainID:   in.DomainID,
		DomainName: in.DomainName,
		FirstName:  firstName,
		LastName:   lastName,
		NameCI:     text.Fold(strings.TrimSpace(firstName + " " + lastName)),
		Email:      email,
		Phone:      strings.TrimSpace(in.Phone),
		Subject:    strings.TrimSpace(in.Subject),
		Message:    in.Message,
		Source:     source,
		Status:     models.LeadStatusNew,
		Deadline:   in.Deadline,
		WordCount:  in.WordCount,
		Files:      in.Files,
		Metadata:   in.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateStatus moves a lead through the pipeline.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, leadStatus string) error {
	if !models.IsValidLeadStatus(leadStatus) {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": leadStatus, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a lead.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListFilter narrows List queries. Zero-valued fields are ignored.
type ListFilter struct {
	DomainID primitive.ObjectID
	Status   string
	Search   string // prefix match on folded name or email
	Since    time.Time
	Page     int64
}

func (f ListFilter) build() bson.M {
	filter := bson.M{}
	if !f.DomainID.IsZero() {
		filter["domain_id"] = f.DomainID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": f.Since}
	}
	if q := text.Fold(strings.TrimSpace(f.Search)); q != "" {
		prefix := bson.M{"$gte": q, "$lt": q + "￿"}
		filter["$or"] = []bson.M{
			{"name_ci": prefix},
			{"email": prefix},
		}
	}
	return filter
}

// List returns leads matching the filter, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Lead, error) {
	opts := storeutil.Paginate(storeutil.DefaultPageSize, f.Page).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := s.c.Find(ctx, f.build(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var leads []models.Lead
	if err := cur.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// CountByFilter returns the number of leads matching the filter.
func (s *Store) CountByFilter(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.build())
}

// Count returns the total number of leads.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountSince returns the number of leads captured at or after t.
func (s *Store) CountSince(ctx context.Context, t time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": t}})
}

// CountPending returns the number of leads still awaiting contact.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": models.LeadStatusNew})
}
