// Package audit persists security and administrative audit events.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event is a single audit log entry.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	// Category groups events: "auth", "admin", or "capture".
	Category string `bson:"category" json:"category"`

	// EventType is the specific event, e.g. "login_success".
	EventType string `bson:"event_type" json:"event_type"`

	// UserID is the subject of the event (the account being acted on),
	// nil for anonymous events such as rejected capture requests.
	UserID *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`

	// ActorID is who performed the action, when different from UserID
	// (an admin editing another account).
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"`

	IP        string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	// Details carries event-specific context (email attempted, domain
	// name, blog slug, changed fields).
	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// Event categories.
const (
	CategoryAuth    = "auth"
	CategoryAdmin   = "admin"
	CategoryCapture = "capture"
)

// Auth event types.
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedUserDisabled  = "login_failed_user_disabled"
	EventLoginRateLimited         = "login_rate_limited"
	EventLoginLockedOut           = "login_locked_out"
	EventLogout                   = "logout"
	EventPasswordChanged          = "password_changed"
)

// Admin event types.
const (
	EventUserCreated   = "user_created"
	EventUserUpdated   = "user_updated"
	EventUserDisabled  = "user_disabled"
	EventUserEnabled   = "user_enabled"
	EventUserDeleted   = "user_deleted"
	EventDomainCreated = "domain_created"
	EventDomainUpdated = "domain_updated"
	EventDomainDeleted = "domain_deleted"
	EventBlogCreated   = "blog_created"
	EventBlogUpdated   = "blog_updated"
	EventBlogDeleted   = "blog_deleted"
)

// Capture event types.
const (
	EventLeadCaptured        = "lead_captured"
	EventLeadCaptureRejected = "lead_capture_rejected"
	EventLeadStatusChanged   = "lead_status_changed"
)

// Store reads and writes audit events.
type Store struct {
	c *mongo.Collection
}

// New returns a Store backed by the given database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// EnsureIndexes creates the indexes used by audit queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_user"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_category"),
		},
		{
			Keys:    bson.D{{Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_event_type"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, models)
	return err
}

// Log writes one audit event. CreatedAt is stamped if unset.
func (s *Store) Log(ctx context.Context, ev *Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, ev)
	return err
}

// QueryFilter narrows audit queries. Zero-valued fields are ignored.
type QueryFilter struct {
	UserID    *primitive.ObjectID
	ActorID   *primitive.ObjectID
	Category  string
	EventType string
	StartTime time.Time
	EndTime   time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) build() bson.M {
	filter := bson.M{}
	if f.UserID != nil {
		filter["user_id"] = *f.UserID
	}
	if f.ActorID != nil {
		filter["actor_id"] = *f.ActorID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.EventType != "" {
		filter["event_type"] = f.EventType
	}
	if !f.StartTime.IsZero() || !f.EndTime.IsZero() {
		created := bson.M{}
		if !f.StartTime.IsZero() {
			created["$gte"] = f.StartTime
		}
		if !f.EndTime.IsZero() {
			created["$lte"] = f.EndTime
		}
		filter["created_at"] = created
	}
	return filter
}

// Query returns events matching the filter, newest first.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(f.Offset)

	cur, err := s.c.Find(ctx, f.build(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the number of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, f QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.build())
}

// GetByUser returns recent events where the user is the subject.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{UserID: &userID, Limit: limit})
}

// GetRecent returns the most recent events across all categories.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}

// GetFailedLogins returns failed login events since the given time.
func (s *Store) GetFailedLogins(ctx context.Context, since time.Time, limit int64) ([]Event, error) {
	lim := limit
	if lim <= 0 {
		lim = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(lim)

	filter := bson.M{
		"category": CategoryAuth,
		"success":  false,
		"event_type": bson.M{"$in": []string{
			EventLoginFailedUserNotFound,
			EventLoginFailedWrongPassword,
			EventLoginFailedUserDisabled,
			EventLoginRateLimited,
			EventLoginLockedOut,
		}},
		"created_at": bson.M{"$gte": since},
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
