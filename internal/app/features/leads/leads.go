// Package leads implements the admin lead triage list and its JSON API.
// Leads are created only by the public capture endpoint; these handlers
// read.
package leads

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	domainstore "github.com/dalemusser/leadcentral/internal/app/store/domains"
	leadstore "github.com/dalemusser/leadcentral/internal/app/store/leads"
	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/app/system/formutil"
	"github.com/dalemusser/leadcentral/internal/app/system/jsonutil"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

// Handler provides lead triage handlers.
type Handler struct {
	leadStore   *leadstore.Store
	domainStore *domainstore.Store
	logger      *zap.Logger
}

// NewHandler creates a new leads Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		leadStore:   leadstore.New(db),
		domainStore: domainstore.New(db),
		logger:      logger,
	}
}

// Routes returns the admin-only web routes.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAuth)
	r.Use(sessionMgr.RequireRoleRedirect("/dashboard/blogs", models.RoleAdmin))
	r.Get("/", h.showList)
	return r
}

// ListVM is the view model for the lead list page.
type ListVM struct {
	formutil.Base
	Leads   []models.Lead
	Domains []models.Domain

	Status   string
	DomainID string
	Search   string
	Page     int64
	Total    int64
}

// filterFromQuery translates list query params into a store filter.
func filterFromQuery(r *http.Request) (leadstore.ListFilter, string) {
	q := r.URL.Query()
	f := leadstore.ListFilter{
		Status: q.Get("status"),
		Search: q.Get("q"),
	}
	if page, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil && page > 0 {
		f.Page = page
	}

	rawDomain := q.Get("domain_id")
	if rawDomain != "" {
		id, err := primitive.ObjectIDFromHex(rawDomain)
		if err != nil {
			return f, ""
		}
		f.DomainID = id
	}
	return f, rawDomain
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	f, rawDomain := filterFromQuery(r)

	vm := ListVM{
		Base:     formutil.NewBase(r, "Leads", "/dashboard"),
		Status:   f.Status,
		DomainID: rawDomain,
		Search:   f.Search,
		Page:     f.Page,
	}

	list, err := h.leadStore.List(r.Context(), f)
	if err != nil {
		h.logger.Error("list leads failed", zap.Error(err))
	} else {
		vm.Leads = list
	}

	if total, err := h.leadStore.CountByFilter(r.Context(), f); err != nil {
		h.logger.Error("count leads failed", zap.Error(err))
	} else {
		vm.Total = total
	}

	if domains, err := h.domainStore.List(r.Context()); err != nil {
		h.logger.Error("list domains failed", zap.Error(err))
	} else {
		vm.Domains = domains
	}

	templates.Render(w, r, "leads/list", vm)
}

// APIList returns captured leads, optionally filtered.
// GET /api/leads
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("domain_id"); raw != "" {
		if _, err := primitive.ObjectIDFromHex(raw); err != nil {
			jsonutil.BadRequest(w, "Invalid domain_id.")
			return
		}
	}
	f, _ := filterFromQuery(r)

	list, err := h.leadStore.List(r.Context(), f)
	if err != nil {
		h.logger.Error("list leads failed", zap.Error(err))
		jsonutil.InternalError(w, "Could not list leads.")
		return
	}
	jsonutil.Data(w, list)
}
