// Package dashboard renders the operations overview and serves its JSON
// counterpart.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	blogstore "github.com/dalemusser/leadcentral/internal/app/store/blogs"
	domainstore "github.com/dalemusser/leadcentral/internal/app/store/domains"
	leadstore "github.com/dalemusser/leadcentral/internal/app/store/leads"
	"github.com/dalemusser/leadcentral/internal/app/store/sessions"
	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/app/system/jsonutil"
	"github.com/dalemusser/leadcentral/internal/app/system/viewdata"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

// Handler provides dashboard handlers.
type Handler struct {
	domainStore   *domainstore.Store
	blogStore     *blogstore.Store
	leadStore     *leadstore.Store
	sessionsStore *sessions.Store
	logger        *zap.Logger
}

// NewHandler creates a new dashboard Handler.
func NewHandler(db *mongo.Database, sessionsStore *sessions.Store, logger *zap.Logger) *Handler {
	return &Handler{
		domainStore:   domainstore.New(db),
		blogStore:     blogstore.New(db),
		leadStore:     leadstore.New(db),
		sessionsStore: sessionsStore,
		logger:        logger,
	}
}

// Stats are the overview counters shown on the dashboard cards.
type Stats struct {
	TotalLeads     int64 `json:"total_leads"`
	Leads24h       int64 `json:"leads_24h"`
	PendingLeads   int64 `json:"pending_leads"`
	TotalDomains   int64 `json:"total_domains"`
	TotalBlogs     int64 `json:"total_blogs"`
	PublishedBlogs int64 `json:"published_blogs"`
	DraftBlogs     int64 `json:"draft_blogs"`
	ActiveSessions int64 `json:"active_sessions"`
}

// DashboardVM is the view model for the dashboard page.
type DashboardVM struct {
	viewdata.BaseVM
	Stats Stats
}

// Routes returns a chi.Router with dashboard routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAuth)
	r.Get("/", h.showDashboard)
	return r
}

// collectStats gathers the overview counters. Individual failures are
// logged and leave that counter at zero rather than failing the page.
func (h *Handler) collectStats(ctx context.Context) Stats {
	var s Stats

	count := func(name string, fn func(context.Context) (int64, error)) int64 {
		n, err := fn(ctx)
		if err != nil {
			h.logger.Warn("dashboard counter failed", zap.String("counter", name), zap.Error(err))
			return 0
		}
		return n
	}

	s.TotalLeads = count("total_leads", h.leadStore.Count)
	s.PendingLeads = count("pending_leads", h.leadStore.CountPending)
	s.TotalDomains = count("total_domains", h.domainStore.Count)
	s.TotalBlogs = count("total_blogs", h.blogStore.Count)
	s.ActiveSessions = count("active_sessions", h.sessionsStore.CountActive)
	s.Leads24h = count("leads_24h", func(ctx context.Context) (int64, error) {
		return h.leadStore.CountSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	})

	if byStatus, err := h.blogStore.CountByStatus(ctx); err != nil {
		h.logger.Warn("dashboard counter failed", zap.String("counter", "blogs_by_status"), zap.Error(err))
	} else {
		s.PublishedBlogs = byStatus[models.BlogStatusPublished]
		s.DraftBlogs = byStatus[models.BlogStatusDraft]
	}

	return s
}

// showDashboard displays the role-based dashboard.
func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// Writers only work with blogs; keep them on the blog list.
	if !models.RoleCanManageWorkspace(sessionUser.Role) {
		http.Redirect(w, r, "/dashboard/blogs", http.StatusSeeOther)
		return
	}

	vm := DashboardVM{
		BaseVM: viewdata.New(r),
		Stats:  h.collectStats(r.Context()),
	}
	vm.Title = "Dashboard"

	templates.Render(w, r, "dashboard/index", vm)
}

// APIStats returns the overview counters as JSON.
// GET /api/stats/dashboard
func (h *Handler) APIStats(w http.ResponseWriter, r *http.Request) {
	jsonutil.Data(w, h.collectStats(r.Context()))
}
