package leadcapture

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	domainstore "github.com/dalemusser/leadcentral/internal/app/store/domains"
	statsstore "github.com/dalemusser/leadcentral/internal/app/store/stats"
	"github.com/dalemusser/leadcentral/internal/domain/models"
	"github.com/dalemusser/leadcentral/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	return h, Routes(h)
}

func seedSecuredDomain(t *testing.T, h *Handler) *models.Domain {
	t.Helper()
	d, err := h.domainStore.Create(testutil.TestContext(t), domainstore.CreateInput{
		Name:    "Acme",
		URL:     "https://acme.example.com",
		Secured: true,
	})
	if err != nil {
		t.Fatalf("seed domain: %v", err)
	}
	return d
}

func capture(router http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCaptureStampsAttribution(t *testing.T) {
	h, router := newTestHandler(t)
	dom := seedSecuredDomain(t, h)

	rec := capture(router, dom.APIKey,
		`{"first_name":"Jordan","last_name":"Smith","email":"jordan@example.com","message":"Need a quote","metadata":{"plan":"pro"}}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.Lead `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.DomainName != "Acme" {
		t.Errorf("domain_name = %q, want Acme", resp.Data.DomainName)
	}
	if resp.Data.Source != models.DefaultLeadSource {
		t.Errorf("source = %q, want %q", resp.Data.Source, models.DefaultLeadSource)
	}
	if resp.Data.Status != models.LeadStatusNew {
		t.Errorf("status = %q, want new", resp.Data.Status)
	}

	stored, err := h.leadStore.GetByID(testutil.TestContext(t), resp.Data.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Metadata["client_ip"] != "203.0.113.9" {
		t.Errorf("client_ip = %v", stored.Metadata["client_ip"])
	}
	if stored.Metadata["plan"] != "pro" {
		t.Errorf("client metadata lost: %+v", stored.Metadata)
	}

	day, err := h.statsStore.GetForDate(testutil.TestContext(t), time.Now().UTC(), statsstore.TypeCapture)
	if err != nil {
		t.Fatalf("GetForDate: %v", err)
	}
	if day.Counters[statsstore.CounterLeadsAccepted] != 1 {
		t.Errorf("accepted counter = %d, want 1", day.Counters[statsstore.CounterLeadsAccepted])
	}
}

func TestCaptureClientCannotSpoofAttribution(t *testing.T) {
	h, router := newTestHandler(t)
	dom := seedSecuredDomain(t, h)

	rec := capture(router, dom.APIKey,
		`{"first_name":"Jordan","email":"jordan@example.com","metadata":{"client_ip":"1.2.3.4"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Data models.Lead `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	stored, err := h.leadStore.GetByID(testutil.TestContext(t), resp.Data.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Metadata["client_ip"] != "203.0.113.9" {
		t.Errorf("spoofed client_ip survived: %v", stored.Metadata["client_ip"])
	}
}

func TestCaptureRejectsMissingKey(t *testing.T) {
	_, router := newTestHandler(t)

	rec := capture(router, "", `{"first_name":"Jordan","email":"jordan@example.com"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "message") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCaptureRejectsUnknownKey(t *testing.T) {
	h, router := newTestHandler(t)
	seedSecuredDomain(t, h)

	rec := capture(router, "not-a-real-key", `{"first_name":"Jordan","email":"jordan@example.com"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	day, err := h.statsStore.GetForDate(testutil.TestContext(t), time.Now().UTC(), statsstore.TypeCapture)
	if err != nil {
		t.Fatalf("GetForDate: %v", err)
	}
	if day.Counters[statsstore.CounterLeadsRejected] != 1 {
		t.Errorf("rejected counter = %d, want 1", day.Counters[statsstore.CounterLeadsRejected])
	}
}

func TestCaptureUnsecuredDomainCannotSubmit(t *testing.T) {
	h, router := newTestHandler(t)
	_, err := h.domainStore.Create(testutil.TestContext(t), domainstore.CreateInput{
		Name: "Open Site",
		URL:  "https://open.example.com",
	})
	if err != nil {
		t.Fatalf("seed domain: %v", err)
	}

	// An unsecured domain has no key at all, so no bearer value works.
	rec := capture(router, "", `{"first_name":"Jordan","email":"jordan@example.com"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	count, err := h.leadStore.Count(testutil.TestContext(t))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("lead count = %d, want 0", count)
	}
}

func TestCaptureValidation(t *testing.T) {
	h, router := newTestHandler(t)
	dom := seedSecuredDomain(t, h)

	rec := capture(router, dom.APIKey, `{"email":"jordan@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing first name status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "First name is required.") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = capture(router, dom.APIKey, `{"first_name":"Jordan"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing email status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "Email is required.") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCaptureHonorsExplicitSource(t *testing.T) {
	h, router := newTestHandler(t)
	dom := seedSecuredDomain(t, h)

	rec := capture(router, dom.APIKey,
		`{"first_name":"Jordan","email":"jordan@example.com","source":"landing_page"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Data models.Lead `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Source != "landing_page" {
		t.Errorf("source = %q, want landing_page", resp.Data.Source)
	}
}
