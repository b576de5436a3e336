package blogs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	blogstore "github.com/dalemusser/leadcentral/internal/app/store/blogs"
	domainstore "github.com/dalemusser/leadcentral/internal/app/store/domains"
	"github.com/dalemusser/leadcentral/internal/domain/models"
	"github.com/dalemusser/leadcentral/internal/testutil"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewHandler(db, nil, zap.NewNop())
}

func seedDomain(t *testing.T, h *Handler) *models.Domain {
	t.Helper()
	d, err := h.domainStore.Create(testutil.TestContext(t), domainstore.CreateInput{
		Name: "Acme",
		URL:  "https://acme.example.com",
	})
	if err != nil {
		t.Fatalf("seed domain: %v", err)
	}
	return d
}

func postJSON(t *testing.T, user testutil.TestUser, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/blogs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return testutil.WithUser(req, user)
}

func postForm(t *testing.T, user testutil.TestUser, values url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/blogs/new", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func TestAPICreateAsWriter(t *testing.T) {
	h := newTestHandler(t)
	dom := seedDomain(t, h)

	body := fmt.Sprintf(`{"title":"Launch Week Recap","content":"<p>Hi</p>","domain_id":%q,"status":"published"}`, dom.ID.Hex())
	rec := httptest.NewRecorder()
	h.APICreate(rec, postJSON(t, testutil.WriterUser(), body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Slug       string `json:"slug"`
			Status     string `json:"status"`
			DomainName string `json:"domain_name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Slug != "launch-week-recap" {
		t.Errorf("slug = %q", resp.Data.Slug)
	}
	if resp.Data.Status != models.BlogStatusPublished {
		t.Errorf("status = %q", resp.Data.Status)
	}
	if resp.Data.DomainName != "Acme" {
		t.Errorf("domain_name = %q", resp.Data.DomainName)
	}
}

func TestAPICreateMissingDomain(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.APICreate(rec, postJSON(t, testutil.AdminUser(), `{"title":"Orphan Post"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "Please select a domain first") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAPICreateDuplicateSlug(t *testing.T) {
	h := newTestHandler(t)
	dom := seedDomain(t, h)

	body := fmt.Sprintf(`{"title":"Same Title","domain_id":%q}`, dom.ID.Hex())
	rec := httptest.NewRecorder()
	h.APICreate(rec, postJSON(t, testutil.AdminUser(), body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.APICreate(rec, postJSON(t, testutil.AdminUser(), body))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestAPIListFiltersByStatus(t *testing.T) {
	h := newTestHandler(t)
	dom := seedDomain(t, h)
	ctx := testutil.TestContext(t)

	for title, status := range map[string]string{
		"Draft One":     models.BlogStatusDraft,
		"Published One": models.BlogStatusPublished,
	} {
		if _, err := h.blogStore.Create(ctx, blogstore.CreateInput{
			DomainID:   dom.ID,
			DomainName: dom.Name,
			Title:      title,
			Status:     status,
		}); err != nil {
			t.Fatalf("seed blog %s: %v", title, err)
		}
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/blogs?status=draft", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.APIList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "draft-one") || strings.Contains(body, "published-one") {
		t.Errorf("filtered list wrong: %s", body)
	}
}

func TestWebComposerGuardWithoutDomain(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.handleCreate(rec, postForm(t, testutil.WriterUser(), url.Values{
		"title":  {"Guarded Post"},
		"action": {"publish"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want re-render", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please select a domain first") {
		t.Errorf("guard message missing:\n%s", rec.Body.String())
	}

	// No post was created.
	count, err := h.blogStore.Count(testutil.TestContext(t))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestWebCreateDraftRedirects(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := newTestHandler(t)
	dom := seedDomain(t, h)

	rec := httptest.NewRecorder()
	h.handleCreate(rec, postForm(t, testutil.WriterUser(), url.Values{
		"title":     {"Work In Progress"},
		"content":   {"<p>Draft body</p>"},
		"domain_id": {dom.ID.Hex()},
		"action":    {"draft"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want redirect: %s", rec.Code, rec.Body.String())
	}

	got, err := h.blogStore.GetBySlug(testutil.TestContext(t), dom.ID, "work-in-progress")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.Status != models.BlogStatusDraft {
		t.Errorf("status = %q, want draft", got.Status)
	}
}
