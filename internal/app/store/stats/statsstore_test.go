package statsstore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/leadcentral/internal/testutil"
)

func TestIncrementCounterUpserts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	day := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := store.IncrementCounter(ctx, day, TypeCapture, CounterLeadsAccepted, 1); err != nil {
			t.Fatalf("IncrementCounter: %v", err)
		}
	}
	if err := store.IncrementCounter(ctx, day, TypeCapture, CounterLeadsRejected, 2); err != nil {
		t.Fatalf("IncrementCounter: %v", err)
	}

	got, err := store.GetForDate(ctx, day, TypeCapture)
	if err != nil {
		t.Fatalf("GetForDate: %v", err)
	}
	if got.Counters[CounterLeadsAccepted] != 3 {
		t.Fatalf("accepted = %d, want 3", got.Counters[CounterLeadsAccepted])
	}
	if got.Counters[CounterLeadsRejected] != 2 {
		t.Fatalf("rejected = %d, want 2", got.Counters[CounterLeadsRejected])
	}
	if !got.Date.Equal(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date not truncated to midnight: %v", got.Date)
	}
}

func TestGetForDateNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	_, err := store.GetForDate(ctx, time.Now().UTC(), TypeCapture)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRangeQueries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		day := base.AddDate(0, 0, i)
		if err := store.IncrementCounter(ctx, day, TypeCapture, CounterLeadsAccepted, int64(i+1)); err != nil {
			t.Fatalf("IncrementCounter: %v", err)
		}
	}

	stats, err := store.GetRange(ctx, base, base.AddDate(0, 0, 2), TypeCapture)
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("range days = %d, want 3 (inclusive endpoints)", len(stats))
	}

	sums, err := store.SumCounters(ctx, base, base.AddDate(0, 0, 4), TypeCapture)
	if err != nil {
		t.Fatalf("SumCounters: %v", err)
	}
	if sums[CounterLeadsAccepted] != 15 {
		t.Fatalf("sum = %d, want 15", sums[CounterLeadsAccepted])
	}

	series, err := store.GetCounterTimeSeries(ctx, base, base.AddDate(0, 0, 4), TypeCapture, CounterLeadsAccepted)
	if err != nil {
		t.Fatalf("GetCounterTimeSeries: %v", err)
	}
	if len(series) != 5 || series[0].Value != 1 || series[4].Value != 5 {
		t.Fatalf("unexpected series: %+v", series)
	}

	deleted, err := store.DeleteOlderThan(ctx, base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("deleted = %d, want 3", deleted)
	}
}
