// internal/app/store/sessions/store_test.go
package sessions

import (
	"testing"
	"time"

	"github.com/dalemusser/leadcentral/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateAndGetByToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	userID := primitive.NewObjectID()
	err := store.Create(ctx, Session{
		Token:     "tok-alive",
		UserID:    userID,
		IPAddress: "203.0.113.9",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.GetByToken(ctx, "tok-alive")
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if got.UserID != userID {
		t.Errorf("UserID = %v, want %v", got.UserID, userID)
	}
	if got.LoginAt.IsZero() || got.LastActivity.IsZero() {
		t.Error("timestamps not defaulted on create")
	}
}

func TestGetByTokenExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	err := store.Create(ctx, Session{
		Token:     "tok-expired",
		UserID:    primitive.NewObjectID(),
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := store.GetByToken(ctx, "tok-expired"); err != mongo.ErrNoDocuments {
		t.Fatalf("GetByToken() error = %v, want ErrNoDocuments", err)
	}
}

func TestResolveToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	userID := primitive.NewObjectID()
	if err := store.Create(ctx, Session{
		Token:     "tok-api",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.ResolveToken(ctx, "tok-api")
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if got != userID.Hex() {
		t.Errorf("ResolveToken() = %q, want %q", got, userID.Hex())
	}

	// Unknown tokens resolve to empty with no error.
	got, err = store.ResolveToken(ctx, "tok-unknown")
	if err != nil || got != "" {
		t.Errorf("ResolveToken(unknown) = (%q, %v), want (\"\", nil)", got, err)
	}
}

func TestCloseEndsSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	if err := store.Create(ctx, Session{
		Token:     "tok-close",
		UserID:    primitive.NewObjectID(),
		LoginAt:   time.Now().Add(-5 * time.Minute),
		ExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Close(ctx, "tok-close", EndReasonLogout); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Closed session no longer resolves.
	if _, err := store.GetByToken(ctx, "tok-close"); err != mongo.ErrNoDocuments {
		t.Fatalf("GetByToken() after close error = %v, want ErrNoDocuments", err)
	}
	if got, _ := store.ResolveToken(ctx, "tok-close"); got != "" {
		t.Errorf("ResolveToken() after close = %q, want empty", got)
	}
}

func TestCloseByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	for _, tok := range []string{"u-1", "u-2"} {
		if err := store.Create(ctx, Session{Token: tok, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("Create(%s): %v", tok, err)
		}
	}
	if err := store.Create(ctx, Session{Token: "other-1", UserID: otherID, ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("Create(other-1): %v", err)
	}

	if err := store.CloseByUser(ctx, userID, EndReasonLogout); err != nil {
		t.Fatalf("CloseByUser() error = %v", err)
	}

	active, err := store.GetActiveByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetActiveByUser() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("user still has %d active sessions", len(active))
	}

	// Other user's session untouched.
	if _, err := store.GetByToken(ctx, "other-1"); err != nil {
		t.Errorf("other user's session was closed: %v", err)
	}
}

func TestCloseInactiveSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	stale := Session{
		Token:        "tok-stale",
		UserID:       primitive.NewObjectID(),
		LastActivity: time.Now().Add(-2 * time.Hour),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	fresh := Session{
		Token:     "tok-fresh",
		UserID:    primitive.NewObjectID(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	for _, sess := range []Session{stale, fresh} {
		if err := store.Create(ctx, sess); err != nil {
			t.Fatalf("Create(%s): %v", sess.Token, err)
		}
	}

	closed, err := store.CloseInactiveSessions(ctx, time.Hour)
	if err != nil {
		t.Fatalf("CloseInactiveSessions() error = %v", err)
	}
	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}

	if _, err := store.GetByToken(ctx, "tok-fresh"); err != nil {
		t.Errorf("fresh session was closed: %v", err)
	}
}

func TestCountActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	for _, tok := range []string{"c-1", "c-2"} {
		if err := store.Create(ctx, Session{Token: tok, UserID: primitive.NewObjectID(), ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("Create(%s): %v", tok, err)
		}
	}
	if err := store.Close(ctx, "c-2", EndReasonLogout); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	n, err := store.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountActive() = %d, want 1", n)
	}
}
