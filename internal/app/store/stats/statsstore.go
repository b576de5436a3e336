// Package statsstore keeps per-day capture counters for trend charts.
// Live dashboard totals are computed from the source collections; this
// store exists so history survives lead deletion and status changes.
package statsstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Stat types.
const (
	TypeCapture = "capture"
)

// Counter names for TypeCapture.
const (
	CounterLeadsAccepted = "leads_accepted"
	CounterLeadsRejected = "leads_rejected"
)

// DailyStats holds counters for a single UTC day and stat type.
type DailyStats struct {
	ID        primitive.ObjectID `bson:"_id"`
	Date      time.Time          `bson:"date"` // truncated to UTC midnight
	StatType  string             `bson:"stat_type"`
	Counters  map[string]int64   `bson:"counters"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// ErrNotFound is returned when no stats exist for the requested day.
var ErrNotFound = errors.New("stats not found")

// Store provides statistics persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a stats store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("daily_stats")}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IncrementCounter atomically increments a counter for the given date and
// stat type, creating the day document on first touch.
func (s *Store) IncrementCounter(ctx context.Context, date time.Time, statType, counter string, delta int64) error {
	day := truncateToDay(date)
	now := time.Now().UTC()

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{
		"date":      day,
		"stat_type": statType,
	}, bson.M{
		"$inc": bson.M{
			"counters." + counter: delta,
		},
		"$set": bson.M{
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id": primitive.NewObjectID(),
		},
	}, opts)
	return err
}

// GetForDate retrieves stats for a specific date and type.
func (s *Store) GetForDate(ctx context.Context, date time.Time, statType string) (*DailyStats, error) {
	day := truncateToDay(date)
	var stats DailyStats
	err := s.c.FindOne(ctx, bson.M{
		"date":      day,
		"stat_type": statType,
	}).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// GetRange retrieves stats for a date range and type, oldest first.
// Both endpoints are inclusive.
func (s *Store) GetRange(ctx context.Context, startDate, endDate time.Time, statType string) ([]DailyStats, error) {
	start := truncateToDay(startDate)
	end := truncateToDay(endDate).Add(24 * time.Hour)

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{
		"date":      bson.M{"$gte": start, "$lt": end},
		"stat_type": statType,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var stats []DailyStats
	if err := cur.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// SumCounters sums counters across a date range.
func (s *Store) SumCounters(ctx context.Context, startDate, endDate time.Time, statType string) (map[string]int64, error) {
	start := truncateToDay(startDate)
	end := truncateToDay(endDate).Add(24 * time.Hour)

	pipeline := []bson.M{
		{
			"$match": bson.M{
				"date":      bson.M{"$gte": start, "$lt": end},
				"stat_type": statType,
			},
		},
		{
			"$project": bson.M{
				"counters": bson.M{"$objectToArray": "$counters"},
			},
		},
		{
			"$unwind": "$counters",
		},
		{
			"$group": bson.M{
				"_id":   "$counters.k",
				"total": bson.M{"$sum": "$counters.v"},
			},
		},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := make(map[string]int64)
	for cur.Next(ctx) {
		var doc struct {
			Key   string `bson:"_id"`
			Total int64  `bson:"total"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		result[doc.Key] = doc.Total
	}

	return result, nil
}

// CounterTimeSeries is one point of a counter chart.
type CounterTimeSeries struct {
	Date  time.Time
	Value int64
}

// GetCounterTimeSeries returns a time series of a specific counter.
func (s *Store) GetCounterTimeSeries(ctx context.Context, startDate, endDate time.Time, statType, counter string) ([]CounterTimeSeries, error) {
	stats, err := s.GetRange(ctx, startDate, endDate, statType)
	if err != nil {
		return nil, err
	}

	result := make([]CounterTimeSeries, 0, len(stats))
	for _, stat := range stats {
		value := int64(0)
		if stat.Counters != nil {
			if v, ok := stat.Counters[counter]; ok {
				value = v
			}
		}
		result = append(result, CounterTimeSeries{
			Date:  stat.Date,
			Value: value,
		})
	}

	return result, nil
}

// DeleteOlderThan deletes stats older than the cutoff date.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	day := truncateToDay(cutoff)
	result, err := s.c.DeleteMany(ctx, bson.M{
		"date": bson.M{"$lt": day},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
