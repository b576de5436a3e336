// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	statsstore "github.com/dalemusser/leadcentral/internal/app/store/stats"
)

// SessionCleanupJob creates a job that removes expired sessions from the database.
func SessionCleanupJob(db *mongo.Database, logger *zap.Logger) Job {
	return Job{
		Name:     "session-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			coll := db.Collection("sessions")
			result, err := coll.DeleteMany(ctx, bson.M{
				"expires_at": bson.M{"$lt": time.Now()},
			})
			if err != nil {
				return err
			}
			if result.DeletedCount > 0 {
				logger.Info("cleaned up expired sessions",
					zap.Int64("deleted", result.DeletedCount))
			}
			return nil
		},
	}
}

// InactiveSessionCleanupJob creates a job that closes sessions inactive for longer
// than the specified threshold. Sessions are marked as ended (end_reason="inactive")
// rather than deleted, preserving session history for auditing. Closing the row also
// revokes the session's bearer token.
func InactiveSessionCleanupJob(db *mongo.Database, logger *zap.Logger, threshold, interval time.Duration) Job {
	return Job{
		Name:     "inactive-session-cleanup",
		Interval: interval,
		Run: func(ctx context.Context) error {
			coll := db.Collection("sessions")
			cutoff := time.Now().Add(-threshold)
			now := time.Now()

			result, err := coll.UpdateMany(ctx,
				bson.M{
					"logout_at":     nil,
					"last_activity": bson.M{"$lt": cutoff},
				},
				bson.M{
					"$set": bson.M{
						"logout_at":  now,
						"end_reason": "inactive",
						"updated_at": now,
					},
				},
			)
			if err != nil {
				return err
			}
			if result.ModifiedCount > 0 {
				logger.Info("closed inactive sessions",
					zap.Int64("count", result.ModifiedCount),
					zap.Duration("threshold", threshold))
			}
			return nil
		},
	}
}

// captureStatsRetention bounds how long daily capture counters are kept.
const captureStatsRetention = 365 * 24 * time.Hour

// CaptureStatsRetentionJob creates a job that prunes daily capture counters
// older than the retention window.
func CaptureStatsRetentionJob(db *mongo.Database, logger *zap.Logger) Job {
	return Job{
		Name:     "capture-stats-retention",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			store := statsstore.New(db)
			deleted, err := store.DeleteOlderThan(ctx, time.Now().Add(-captureStatsRetention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned old capture stats",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}
