// Package domains implements the admin domain registry: the web list +
// create page and the matching JSON API.
package domains

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	domainstore "github.com/dalemusser/leadcentral/internal/app/store/domains"
	"github.com/dalemusser/leadcentral/internal/app/system/auditlog"
	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/app/system/formutil"
	"github.com/dalemusser/leadcentral/internal/app/system/jsonutil"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

// Handler provides domain management handlers.
type Handler struct {
	store       *domainstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new domains Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		store:       domainstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Routes returns the admin-only web routes.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAuth)
	r.Use(sessionMgr.RequireRoleRedirect("/dashboard/blogs", models.RoleAdmin))
	r.Get("/", h.showList)
	r.Post("/", h.handleCreate)
	return r
}

// ListVM is the view model for the domain list + create page.
type ListVM struct {
	formutil.Base
	Domains []models.Domain

	// NewKey holds a freshly generated capture key, shown exactly once
	// after a secured create.
	NewKey     string
	NewKeyFor  string
	FormName   string
	FormURL    string
	FormSecure bool
}

func (h *Handler) newListVM(r *http.Request) ListVM {
	vm := ListVM{Base: formutil.NewBase(r, "Domains", "/dashboard")}

	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list domains failed", zap.Error(err))
	} else {
		vm.Domains = list
	}
	return vm
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "domains/list", h.newListVM(r))
}

// createForm is the shared shape of a domain create, from either the
// web form or the JSON API.
type createForm struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	APIKey   string `json:"api_key"`
	Generate bool   `json:"generate_key"`
}

func (f *createForm) validate() string {
	if strings.TrimSpace(f.Name) == "" {
		return "Domain name is required."
	}
	if strings.TrimSpace(f.URL) == "" {
		return "Domain URL is required."
	}
	return ""
}

func (h *Handler) create(r *http.Request, f createForm) (*models.Domain, error) {
	d, err := h.store.Create(r.Context(), domainstore.CreateInput{
		Name:    f.Name,
		URL:     f.URL,
		APIKey:  f.APIKey,
		Secured: f.Generate,
	})
	if err != nil {
		return nil, err
	}

	if user, ok := auth.CurrentUser(r); ok {
		h.auditLogger.DomainCreated(r.Context(), r, user.UserID(), d.URL, d.Secured())
	}
	return d, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	f := createForm{
		Name:     r.FormValue("name"),
		URL:      r.FormValue("url"),
		APIKey:   r.FormValue("api_key"),
		Generate: r.FormValue("generate_key") == "on",
	}

	renderError := func(msg string) {
		vm := h.newListVM(r)
		vm.FormName = f.Name
		vm.FormURL = f.URL
		vm.FormSecure = f.Generate
		vm.SetError(msg)
		templates.Render(w, r, "domains/list", vm)
	}

	if msg := f.validate(); msg != "" {
		renderError(msg)
		return
	}

	d, err := h.create(r, f)
	if err != nil {
		if err == domainstore.ErrDuplicateURL {
			renderError("A domain with that URL is already registered.")
			return
		}
		h.logger.Error("create domain failed", zap.Error(err))
		renderError("Could not create the domain. Please try again.")
		return
	}

	// Generated keys are only ever displayed on this response.
	if f.Generate && f.APIKey == "" {
		vm := h.newListVM(r)
		vm.NewKey = d.APIKey
		vm.NewKeyFor = d.Name
		templates.Render(w, r, "domains/list", vm)
		return
	}

	http.Redirect(w, r, "/dashboard/domains", http.StatusSeeOther)
}

// APIList returns all registered domains.
// GET /api/domains
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list domains failed", zap.Error(err))
		jsonutil.InternalError(w, "Could not list domains.")
		return
	}
	jsonutil.Data(w, list)
}

// APICreate registers a domain.
// POST /api/domains
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var f createForm
	if err := jsonutil.Decode(r, &f); err != nil {
		jsonutil.BadRequest(w, "Invalid request body.")
		return
	}
	if msg := f.validate(); msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	d, err := h.create(r, f)
	if err != nil {
		if err == domainstore.ErrDuplicateURL {
			jsonutil.Conflict(w, "A domain with that URL is already registered.")
			return
		}
		h.logger.Error("create domain failed", zap.Error(err))
		jsonutil.InternalError(w, "Could not create the domain.")
		return
	}
	jsonutil.Created(w, d)
}
