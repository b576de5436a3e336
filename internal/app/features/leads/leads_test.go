package leads

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	domainstore "github.com/dalemusser/leadcentral/internal/app/store/domains"
	leadstore "github.com/dalemusser/leadcentral/internal/app/store/leads"
	"github.com/dalemusser/leadcentral/internal/domain/models"
	"github.com/dalemusser/leadcentral/internal/testutil"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(testutil.SetupTestDB(t), zap.NewNop())
}

func seedLeads(t *testing.T, h *Handler) *models.Domain {
	t.Helper()
	ctx := testutil.TestContext(t)

	dom, err := h.domainStore.Create(ctx, domainstore.CreateInput{
		Name: "Acme",
		URL:  "https://acme.example.com",
	})
	if err != nil {
		t.Fatalf("seed domain: %v", err)
	}

	seed := func(first, email string) *models.Lead {
		t.Helper()
		l, err := h.leadStore.Create(ctx, leadstore.CreateInput{
			DomainID:   dom.ID,
			DomainName: dom.Name,
			FirstName:  first,
			Email:      email,
		})
		if err != nil {
			t.Fatalf("seed lead %s: %v", email, err)
		}
		return l
	}

	seed("Jordan", "jordan@example.com")
	contacted := seed("Morgan", "morgan@example.com")
	if err := h.leadStore.UpdateStatus(ctx, contacted.ID, models.LeadStatusContacted); err != nil {
		t.Fatalf("update status: %v", err)
	}
	return dom
}

func TestAPIListReturnsLeads(t *testing.T) {
	h := newTestHandler(t)
	seedLeads(t, h)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/leads", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.APIList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Data []models.Lead `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("leads = %d, want 2", len(resp.Data))
	}
}

func TestAPIListStatusFilter(t *testing.T) {
	h := newTestHandler(t)
	seedLeads(t, h)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/leads?status=contacted", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.APIList(rec, req)

	var resp struct {
		Data []models.Lead `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].FirstName != "Morgan" {
		t.Fatalf("filtered leads = %+v", resp.Data)
	}
}

func TestAPIListBadDomainID(t *testing.T) {
	h := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/leads?domain_id=nonsense", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.APIList(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestWebListRendersWithFilters(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := newTestHandler(t)
	seedLeads(t, h)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard/leads?q=jordan", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.showList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "jordan@example.com") {
		t.Errorf("expected matching lead in body")
	}
	if strings.Contains(body, "morgan@example.com") {
		t.Errorf("non-matching lead leaked into filtered list")
	}
}

func TestWebWriterRedirectedToBlogs(t *testing.T) {
	h := newTestHandler(t)
	router := Routes(h, testutil.NewSessionManager(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	req = testutil.WithUser(req, testutil.WriterUser())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/blogs" {
		t.Fatalf("Location = %q, want %q", loc, "/dashboard/blogs")
	}
}
