// Package domainstore persists registered marketing domains.
package domainstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/leadcentral/internal/app/system/normalize"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

// ErrDuplicateURL is returned when a domain with the same URL already exists.
var ErrDuplicateURL = errors.New("a domain with that URL already exists")

// Store wraps the domains collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store backed by the given database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("domains")}
}

// GetByID returns one domain by its ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Domain, error) {
	var d models.Domain
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByURL returns the domain registered for the given URL,
// case-insensitively and ignoring a trailing slash.
func (s *Store) GetByURL(ctx context.Context, url string) (*models.Domain, error) {
	var d models.Domain
	err := s.c.FindOne(ctx, bson.M{"url_ci": text.Fold(normalize.URL(url))}).Decode(&d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByAPIKey resolves a capture key to its domain. Unsecured domains have
// no key and can never match.
func (s *Store) GetByAPIKey(ctx context.Context, apiKey string) (*models.Domain, error) {
	if apiKey == "" {
		return nil, mongo.ErrNoDocuments
	}
	var d models.Domain
	err := s.c.FindOne(ctx, bson.M{"api_key": apiKey}).Decode(&d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateInput carries the fields for registering a domain.
type CreateInput struct {
	Name string
	URL  string

	// APIKey installs a caller-supplied capture key verbatim.
	APIKey string

	// Secured generates a fresh capture key when no explicit APIKey is
	// given. Domains without a key cannot receive public lead
	// submissions.
	Secured bool
}

// Create registers a domain. An explicit capture key is stored as-is;
// otherwise one is generated when in.Secured is set.
func (s *Store) Create(ctx context.Context, in CreateInput) (*models.Domain, error) {
	now := time.Now().UTC()

	d := &models.Domain{
		ID:        primitive.NewObjectID(),
		Name:      normalize.Name(in.Name),
		NameCI:    text.Fold(normalize.Name(in.Name)),
		URL:       normalize.URL(in.URL),
		URLCI:     text.Fold(normalize.URL(in.URL)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch {
	case strings.TrimSpace(in.APIKey) != "":
		d.APIKey = strings.TrimSpace(in.APIKey)
	case in.Secured:
		d.APIKey = uuid.NewString()
	}

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateURL
		}
		return nil, err
	}
	return d, nil
}

// RotateAPIKey generates a new capture key for a domain and returns it.
func (s *Store) RotateAPIKey(ctx context.Context, id primitive.ObjectID) (string, error) {
	key := uuid.NewString()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"api_key": key, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return "", err
	}
	if res.MatchedCount == 0 {
		return "", mongo.ErrNoDocuments
	}
	return key, nil
}

// UpdateInput carries optional fields for updating a domain.
// Nil pointers leave the stored value untouched.
type UpdateInput struct {
	Name *string
	URL  *string
}

// UpdateFromInput applies the provided fields to a domain.
func (s *Store) UpdateFromInput(ctx context.Context, id primitive.ObjectID, in UpdateInput) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if in.Name != nil {
		name := normalize.Name(*in.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if in.URL != nil {
		url := normalize.URL(*in.URL)
		set["url"] = url
		set["url_ci"] = text.Fold(url)
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if wafflemongo.IsDup(err) {
		return ErrDuplicateURL
	}
	return err
}

// Delete removes a domain. Blogs and leads referencing it are left in place
// for history; their denormalized domain name keeps lists readable.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// List returns domains sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Domain, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var domains []models.Domain
	if err := cur.All(ctx, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// Count returns the total number of registered domains.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// ExistsByURL reports whether a domain is already registered for the URL.
func (s *Store) ExistsByURL(ctx context.Context, url string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"url_ci": text.Fold(normalize.URL(url))})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
