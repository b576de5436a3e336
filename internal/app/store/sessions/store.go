// internal/app/store/sessions/store.go

// Package sessions tracks server-side session rows. Each login - browser
// or API - creates one row keyed by a random token. The browser carries
// the token inside its signed cookie; API clients send it back as a
// bearer token. Either way the row is the single source of truth for
// whether the login is still live.
package sessions

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Session end reasons
const (
	EndReasonLogout   = "logout"   // User explicitly logged out
	EndReasonExpired  = "expired"  // Session expired via TTL
	EndReasonInactive = "inactive" // Closed due to inactivity
)

// Session represents a stored session in the database.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"` // Unique 32-byte random token
	UserID    primitive.ObjectID `bson:"user_id"`
	IPAddress string             `bson:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty"`

	LoginAt      time.Time  `bson:"login_at"`                // When session started
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`     // When session ended (nil if active)
	LastActivity time.Time  `bson:"last_activity"`           // Last request seen on this session
	EndReason    string     `bson:"end_reason,omitempty"`    // "logout", "expired", "inactive"
	DurationSecs int64      `bson:"duration_secs,omitempty"` // Computed on close

	// TTL expiration
	ExpiresAt time.Time `bson:"expires_at"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store manages session records in MongoDB.
type Store struct {
	c *mongo.Collection
}

// New creates a new session Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates indexes for efficient querying and TTL expiration.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_session_token"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_session_user"),
		},
		// TTL index for automatic cleanup
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_session_ttl"),
		},
		// Active sessions query (who's online)
		{
			Keys:    bson.D{{Key: "logout_at", Value: 1}, {Key: "last_activity", Value: -1}},
			Options: options.Index().SetName("idx_session_active"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create creates a new session.
func (s *Store) Create(ctx context.Context, session Session) error {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.LoginAt.IsZero() {
		session.LoginAt = now
	}
	if session.LastActivity.IsZero() {
		session.LastActivity = now
	}
	_, err := s.c.InsertOne(ctx, session)
	return err
}

// GetByToken retrieves an active session by token.
// Returns mongo.ErrNoDocuments if the session was logged out or expired.
func (s *Store) GetByToken(ctx context.Context, token string) (*Session, error) {
	var session Session
	err := s.c.FindOne(ctx, bson.M{
		"token":      token,
		"logout_at":  nil,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ResolveToken implements auth.TokenResolver for the API bearer
// middleware: it returns the hex user ID behind a live token, or ""
// when the token is unknown, closed, or expired.
func (s *Store) ResolveToken(ctx context.Context, token string) (string, error) {
	session, err := s.GetByToken(ctx, token)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return session.UserID.Hex(), nil
}

// UpdateActivity updates the last activity time and optionally the IP and user agent.
func (s *Store) UpdateActivity(ctx context.Context, token string, ip string, userAgent string) error {
	now := time.Now()
	set := bson.M{
		"last_activity": now,
		"updated_at":    now,
	}
	if ip != "" {
		set["ip_address"] = ip
	}
	if userAgent != "" {
		set["user_agent"] = userAgent
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"token": token, "logout_at": nil}, bson.M{"$set": set})
	return err
}

// Close closes a session with a reason and computes the duration.
// This marks the session as ended but does not delete it (for audit purposes).
func (s *Store) Close(ctx context.Context, token string, reason string) error {
	var session Session
	err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&session)
	if err != nil {
		return err
	}

	now := time.Now()
	duration := int64(now.Sub(session.LoginAt).Seconds())

	_, err = s.c.UpdateOne(ctx, bson.M{"token": token}, bson.M{
		"$set": bson.M{
			"logout_at":     now,
			"end_reason":    reason,
			"duration_secs": duration,
			"updated_at":    now,
		},
	})
	return err
}

// CloseByUser closes all open sessions for a user with the given reason.
// Used when an account is disabled or its password changes.
func (s *Store) CloseByUser(ctx context.Context, userID primitive.ObjectID, reason string) error {
	now := time.Now()
	_, err := s.c.UpdateMany(ctx,
		bson.M{
			"user_id":   userID,
			"logout_at": nil,
		},
		bson.M{
			"$set": bson.M{
				"logout_at":  now,
				"end_reason": reason,
				"updated_at": now,
			},
		},
	)
	return err
}

// CloseInactiveSessions closes sessions that haven't had activity within the threshold.
// Returns the number of sessions closed.
func (s *Store) CloseInactiveSessions(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().Add(-threshold)
	now := time.Now()

	result, err := s.c.UpdateMany(ctx,
		bson.M{
			"logout_at":     nil,
			"last_activity": bson.M{"$lt": cutoff},
		},
		bson.M{
			"$set": bson.M{
				"logout_at":  now,
				"end_reason": EndReasonInactive,
				"updated_at": now,
			},
		},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// GetActiveByUser retrieves all active (not logged out) sessions for a user.
func (s *Store) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]Session, error) {
	cursor, err := s.c.Find(ctx, bson.M{
		"user_id":    userID,
		"logout_at":  nil,
		"expires_at": bson.M{"$gt": time.Now()},
	}, options.Find().SetSort(bson.D{{Key: "last_activity", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountActive counts currently active sessions (not logged out and not expired).
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"logout_at":  nil,
		"expires_at": bson.M{"$gt": time.Now()},
	})
}

// DeleteByUser removes all sessions for a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
