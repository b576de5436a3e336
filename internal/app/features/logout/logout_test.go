package logout

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/leadcentral/internal/app/store/sessions"
	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *sessions.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionsStore := sessions.New(db)

	sessionMgr, err := auth.NewSessionManager(
		"test-session-key-for-testing-1234567890",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	// auditLogger can be nil - it's nil-safe
	handler := NewHandler(sessionMgr, nil, sessionsStore, logger)

	return handler, sessionsStore
}

func seedSession(t *testing.T, store *sessions.Store, userID primitive.ObjectID, token string) {
	t.Helper()
	err := store.Create(testutil.TestContext(t), sessions.Session{
		UserID:    userID,
		Token:     token,
		IPAddress: "127.0.0.1",
		UserAgent: "test-agent",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
}

func TestLogoutRedirectsToRoot(t *testing.T) {
	h, _ := newTestHandler(t)

	user := testutil.AdminUser()
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/logout", user)
	rec := httptest.NewRecorder()

	h.handleLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("Location = %q, want %q", location, "/")
	}
}

func TestLogoutClosesSessionInDB(t *testing.T) {
	h, sessionsStore := newTestHandler(t)
	ctx := testutil.TestContext(t)

	userID := primitive.NewObjectID()
	token := "test-session-token-12345"
	seedSession(t, sessionsStore, userID, token)

	sessionUser := &auth.SessionUser{
		ID:    userID.Hex(),
		Name:  "Test User",
		Email: "test@example.com",
		Role:  "admin",
		Token: token,
	}
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = auth.WithTestUser(req, sessionUser)
	rec := httptest.NewRecorder()

	h.handleLogout(rec, req)

	// GetByToken only returns open sessions, so a closed one disappears.
	if _, err := sessionsStore.GetByToken(ctx, token); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("session still resolvable after logout: err = %v", err)
	}
}

func TestLogoutNoUserInContext(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()

	h.handleLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestAPILogoutRevokesToken(t *testing.T) {
	h, sessionsStore := newTestHandler(t)
	ctx := testutil.TestContext(t)

	userID := primitive.NewObjectID()
	token := "api-bearer-token-67890"
	seedSession(t, sessionsStore, userID, token)

	sessionUser := &auth.SessionUser{
		ID:    userID.Hex(),
		Name:  "API User",
		Email: "api@example.com",
		Role:  "admin",
		Token: token,
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req = auth.WithTestUser(req, sessionUser)
	rec := httptest.NewRecorder()

	h.APILogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if _, err := sessionsStore.GetByToken(ctx, token); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("token still resolvable after API logout: err = %v", err)
	}
}

func TestAPILogoutWithoutUser(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()

	h.APILogout(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
