package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	blogstore "github.com/dalemusser/leadcentral/internal/app/store/blogs"
	domainstore "github.com/dalemusser/leadcentral/internal/app/store/domains"
	leadstore "github.com/dalemusser/leadcentral/internal/app/store/leads"
	"github.com/dalemusser/leadcentral/internal/app/store/sessions"
	"github.com/dalemusser/leadcentral/internal/domain/models"
	"github.com/dalemusser/leadcentral/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewHandler(db, sessions.New(db), zap.NewNop()), db
}

func seedWorkspace(t *testing.T, h *Handler) {
	t.Helper()
	ctx := testutil.TestContext(t)

	dom, err := h.domainStore.Create(ctx, domainstore.CreateInput{
		Name: "Acme",
		URL:  "https://acme.example.com",
	})
	if err != nil {
		t.Fatalf("create domain: %v", err)
	}

	authorID := primitive.NewObjectID()
	for i, status := range []string{models.BlogStatusDraft, models.BlogStatusPublished, models.BlogStatusPublished} {
		_, err := h.blogStore.Create(ctx, blogstore.CreateInput{
			DomainID:   dom.ID,
			DomainName: dom.Name,
			Title:      "Post " + string(rune('A'+i)),
			Content:    "<p>Body</p>",
			Status:     status,
			AuthorID:   authorID,
		})
		if err != nil {
			t.Fatalf("create blog: %v", err)
		}
	}

	for _, email := range []string{"one@lead.com", "two@lead.com"} {
		if _, err := h.leadStore.Create(ctx, leadstore.CreateInput{
			DomainID:   dom.ID,
			DomainName: dom.Name,
			FirstName:  "Lead",
			Email:      email,
			Message:    "hello",
		}); err != nil {
			t.Fatalf("create lead: %v", err)
		}
	}

	if err := h.sessionsStore.Create(ctx, sessions.Session{
		Token:     "dashboard-test-token-0001",
		UserID:    authorID,
		ExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}
}

func TestCollectStats(t *testing.T) {
	h, _ := newTestHandler(t)
	seedWorkspace(t, h)

	stats := h.collectStats(testutil.TestContext(t))

	if stats.TotalDomains != 1 {
		t.Errorf("TotalDomains = %d, want 1", stats.TotalDomains)
	}
	if stats.TotalBlogs != 3 {
		t.Errorf("TotalBlogs = %d, want 3", stats.TotalBlogs)
	}
	if stats.PublishedBlogs != 2 {
		t.Errorf("PublishedBlogs = %d, want 2", stats.PublishedBlogs)
	}
	if stats.DraftBlogs != 1 {
		t.Errorf("DraftBlogs = %d, want 1", stats.DraftBlogs)
	}
	if stats.TotalLeads != 2 {
		t.Errorf("TotalLeads = %d, want 2", stats.TotalLeads)
	}
	if stats.Leads24h != 2 {
		t.Errorf("Leads24h = %d, want 2", stats.Leads24h)
	}
	if stats.PendingLeads != 2 {
		t.Errorf("PendingLeads = %d, want 2", stats.PendingLeads)
	}
	if stats.ActiveSessions != 1 {
		t.Errorf("ActiveSessions = %d, want 1", stats.ActiveSessions)
	}
}

func TestShowDashboardRendersForAdmin(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _ := newTestHandler(t)
	seedWorkspace(t, h)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.showDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Total Leads") {
		t.Errorf("body missing stats cards:\n%s", body)
	}
}

func TestShowDashboardRedirectsWriter(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", testutil.WriterUser())
	rec := httptest.NewRecorder()

	h.showDashboard(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if location := rec.Header().Get("Location"); location != "/dashboard/blogs" {
		t.Errorf("Location = %q, want %q", location, "/dashboard/blogs")
	}
}

func TestAPIStatsEnvelope(t *testing.T) {
	h, _ := newTestHandler(t)
	seedWorkspace(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/dashboard", nil)
	rec := httptest.NewRecorder()

	h.APIStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Data Stats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.TotalLeads != 2 {
		t.Errorf("data.total_leads = %d, want 2", resp.Data.TotalLeads)
	}
	if resp.Data.TotalDomains != 1 {
		t.Errorf("data.total_domains = %d, want 1", resp.Data.TotalDomains)
	}
}
