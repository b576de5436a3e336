// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/app/system/status"
	"github.com/dalemusser/leadcentral/internal/app/system/timeouts"
	"github.com/dalemusser/leadcentral/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Fetcher implements auth.UserFetcher backed by the users collection.
// It runs on every authenticated request; the query is a projected
// FindOne by _id so the cost stays one index hit.
type Fetcher struct {
	users  *mongo.Collection
	logger *zap.Logger
}

// NewFetcher creates a Fetcher for the session middleware.
func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		users:  db.Collection("users"),
		logger: logger,
	}
}

// FetchUser retrieves a user by hex ID. Returns nil if the ID is
// malformed, the user is missing, or the account is disabled - any of
// which invalidates the session.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	opts := options.FindOne().SetProjection(bson.M{
		"name":   1,
		"email":  1,
		"role":   1,
		"status": 1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&u); err != nil {
		if err != mongo.ErrNoDocuments {
			f.logger.Warn("user fetch failed",
				zap.String("user_id", userID),
				zap.Error(err))
		}
		return nil
	}

	if u.Status == status.Disabled {
		return nil
	}

	return &auth.SessionUser{
		ID:    userID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
