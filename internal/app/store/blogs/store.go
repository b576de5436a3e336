// Package blogstore persists blog posts and their slug/status workflow.
package blogstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/leadcentral/internal/app/store/storeutil"
	"github.com/dalemusser/leadcentral/internal/app/system/htmlsanitize"
	"github.com/dalemusser/leadcentral/internal/app/system/slug"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

var (
	// ErrDuplicateSlug is returned when the generated slug already exists
	// on the same domain.
	ErrDuplicateSlug = errors.New("a post with that slug already exists on this domain")

	// ErrEmptySlug is returned when neither the supplied slug nor the
	// title reduce to a usable slug.
	ErrEmptySlug = errors.New("slug is empty after normalization")

	errBadStatus = errors.New("invalid blog status")
)

// Store wraps the blogs collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store backed by the given database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("blogs")}
}

// GetByID returns one blog post by its ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var b models.Blog
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBySlug returns the post with the given slug on a domain.
func (s *Store) GetBySlug(ctx context.Context, domainID primitive.ObjectID, postSlug string) (*models.Blog, error) {
	var b models.Blog
	err := s.c.FindOne(ctx, bson.M{"domain_id": domainID, "slug": postSlug}).Decode(&b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateInput carries the fields for creating a blog post.
type CreateInput struct {
	DomainID   primitive.ObjectID
	DomainName string
	Title      string

	// Slug overrides the title derivation when set. It still goes
	// through the same normalization rule.
	Slug string

	Content string
	Excerpt string
	Status  string

	AuthorID primitive.ObjectID

	// PublishedAt is only honored for scheduled posts.
	PublishedAt *time.Time
}

// Create inserts a blog post. The slug is derived from the title unless
// an explicit one is supplied, and the content is sanitized before
// storage.
func (s *Store) Create(ctx context.Context, in CreateInput) (*models.Blog, error) {
	st := in.Status
	if st == "" {
		st = models.BlogStatusDraft
	}
	if !models.IsValidBlogStatus(st) {
		return nil, errBadStatus
	}

	postSlug := slug.Make(in.Slug)
	if postSlug == "" {
		postSlug = slug.Make(in.Title)
	}
	if postSlug == "" {
		return nil, ErrEmptySlug
	}

	now := time.Now().UTC()
	b := &models.Blog{
		ID:         primitive.NewObjectID(),
		DomainID:   in.DomainID,
		DomainName: in.DomainName,
		Title:      in.Title,
		Slug:       postSlug,
		Content:    htmlsanitize.Sanitize(in.Content),
		Excerpt:    in.Excerpt,
		Status:     st,
		AuthorID:   in.AuthorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	switch st {
	case models.BlogStatusPublished:
		b.PublishedAt = &now
	case models.BlogStatusScheduled:
		b.PublishedAt = in.PublishedAt
	}

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return b, nil
}

// UpdateInput carries optional fields for updating a blog post.
// Nil pointers leave the stored value untouched.
type UpdateInput struct {
	Title       *string
	Slug        *string
	Content     *string
	Excerpt     *string
	Status      *string
	PublishedAt *time.Time
}

// UpdateFromInput applies the provided fields. A stored slug is never
// re-derived from a title change; it only moves when an explicit slug
// is supplied.
func (s *Store) UpdateFromInput(ctx context.Context, id primitive.ObjectID, in UpdateInput) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Slug != nil {
		postSlug := slug.Make(*in.Slug)
		if postSlug == "" {
			return ErrEmptySlug
		}
		set["slug"] = postSlug
	}
	if in.Content != nil {
		set["content"] = htmlsanitize.Sanitize(*in.Content)
	}
	if in.Excerpt != nil {
		set["excerpt"] = *in.Excerpt
	}
	if in.Status != nil {
		if !models.IsValidBlogStatus(*in.Status) {
			return errBadStatus
		}
		set["status"] = *in.Status
		if *in.Status == models.BlogStatusPublished && in.PublishedAt == nil {
			set["published_at"] = time.Now().UTC()
		}
	}
	if in.PublishedAt != nil {
		set["published_at"] = *in.PublishedAt
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if wafflemongo.IsDup(err) {
		return ErrDuplicateSlug
	}
	return err
}

// Delete removes a blog post.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListFilter narrows List queries. Zero-valued fields are ignored.
type ListFilter struct {
	DomainID primitive.ObjectID
	AuthorID primitive.ObjectID
	Status   string
	Page     int64
}

func (f ListFilter) build() bson.M {
	filter := bson.M{}
	if !f.DomainID.IsZero() {
		filter["domain_id"] = f.DomainID
	}
	if !f.AuthorID.IsZero() {
		filter["author_id"] = f.AuthorID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

// List returns blog posts matching the filter, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Blog, error) {
	opts := storeutil.Paginate(storeutil.DefaultPageSize, f.Page).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := s.c.Find(ctx, f.build(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var blogs []models.Blog
	if err := cur.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// CountByFilter returns the number of posts matching the filter.
func (s *Store) CountByFilter(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.build())
}

// Count returns the total number of blog posts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountByStatus returns per-status post counts.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Count
	}
	return counts, cur.Err()
}
