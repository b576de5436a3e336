// Package blogs implements blog publishing: the list and composer pages
// shared by admins and writers, and the matching JSON API.
package blogs

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	blogstore "github.com/dalemusser/leadcentral/internal/app/store/blogs"
	domainstore "github.com/dalemusser/leadcentral/internal/app/store/domains"
	"github.com/dalemusser/leadcentral/internal/app/system/auditlog"
	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/app/system/formutil"
	"github.com/dalemusser/leadcentral/internal/app/system/jsonutil"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

// msgSelectDomain is shown when a post is submitted without a domain.
const msgSelectDomain = "Please select a domain first. Every post belongs to a domain."

// Handler provides blog management handlers.
type Handler struct {
	blogStore   *blogstore.Store
	domainStore *domainstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new blogs Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		blogStore:   blogstore.New(db),
		domainStore: domainstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Routes returns the web routes. Both admins and writers may publish.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAuth)
	r.Get("/", h.showList)
	r.Get("/new", h.showComposer)
	r.Post("/new", h.handleCreate)
	return r
}

// ListVM is the view model for the blog list page.
type ListVM struct {
	formutil.Base
	Blogs  []models.Blog
	Status string
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	vm := ListVM{
		Base:   formutil.NewBase(r, "Blog Posts", "/dashboard"),
		Status: r.URL.Query().Get("status"),
	}

	list, err := h.blogStore.List(r.Context(), blogstore.ListFilter{Status: vm.Status})
	if err != nil {
		h.logger.Error("list blogs failed", zap.Error(err))
	} else {
		vm.Blogs = list
	}

	templates.Render(w, r, "blogs/list", vm)
}

// ComposerVM is the view model for the composer page.
type ComposerVM struct {
	formutil.Base
	Domains []models.Domain

	FormTitle    string
	FormSlug     string
	FormContent  string
	FormExcerpt  string
	FormDomainID string
}

func (h *Handler) newComposerVM(r *http.Request) ComposerVM {
	vm := ComposerVM{Base: formutil.NewBase(r, "New Post", "/dashboard/blogs")}

	list, err := h.domainStore.List(r.Context())
	if err != nil {
		h.logger.Error("list domains failed", zap.Error(err))
	} else {
		vm.Domains = list
	}
	return vm
}

func (h *Handler) showComposer(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "blogs/new", h.newComposerVM(r))
}

// createForm is the shared shape of a post create, from either the web
// composer or the JSON API.
type createForm struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt"`
	DomainID string `json:"domain_id"`
	Status   string `json:"status"`
}

// create validates the form and inserts the post. The returned message
// is user-facing; the error distinguishes conflict from server failure.
func (h *Handler) create(r *http.Request, f createForm) (*models.Blog, string, error) {
	if strings.TrimSpace(f.DomainID) == "" {
		return nil, msgSelectDomain, nil
	}
	if strings.TrimSpace(f.Title) == "" {
		return nil, "Title is required.", nil
	}

	domainID, err := primitive.ObjectIDFromHex(strings.TrimSpace(f.DomainID))
	if err != nil {
		return nil, "Unknown domain.", nil
	}
	dom, err := h.domainStore.GetByID(r.Context(), domainID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, "Unknown domain.", nil
		}
		return nil, "", err
	}

	user, ok := auth.CurrentUser(r)
	if !ok {
		return nil, "Authentication required.", nil
	}

	b, err := h.blogStore.Create(r.Context(), blogstore.CreateInput{
		DomainID:   dom.ID,
		DomainName: dom.Name,
		Title:      f.Title,
		Slug:       f.Slug,
		Content:    f.Content,
		Excerpt:    f.Excerpt,
		Status:     f.Status,
		AuthorID:   user.UserID(),
	})
	if err != nil {
		switch err {
		case blogstore.ErrDuplicateSlug:
			return nil, "A post with that slug already exists on this domain.", err
		case blogstore.ErrEmptySlug:
			return nil, "The title or slug must contain at least one letter or number.", nil
		}
		return nil, "", err
	}

	h.auditLogger.BlogCreated(r.Context(), r, user.UserID(), b.Slug, b.Status)
	return b, "", nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	status := models.BlogStatusDraft
	if r.FormValue("action") == "publish" {
		status = models.BlogStatusPublished
	}

	f := createForm{
		Title:    r.FormValue("title"),
		Slug:     r.FormValue("slug"),
		Content:  r.FormValue("content"),
		Excerpt:  r.FormValue("excerpt"),
		DomainID: r.FormValue("domain_id"),
		Status:   status,
	}

	b, msg, err := h.create(r, f)
	if err != nil && msg == "" {
		h.logger.Error("create blog failed", zap.Error(err))
		msg = "Could not save the post. Please try again."
	}
	if b == nil {
		vm := h.newComposerVM(r)
		vm.FormTitle = f.Title
		vm.FormSlug = f.Slug
		vm.FormContent = f.Content
		vm.FormExcerpt = f.Excerpt
		vm.FormDomainID = f.DomainID
		vm.SetError(msg)
		templates.Render(w, r, "blogs/new", vm)
		return
	}

	http.Redirect(w, r, "/dashboard/blogs", http.StatusSeeOther)
}

// APIList returns blog posts, optionally filtered by status or domain.
// GET /api/blogs
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	filter := blogstore.ListFilter{
		Status: r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("domain_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid domain_id.")
			return
		}
		filter.DomainID = id
	}

	list, err := h.blogStore.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list blogs failed", zap.Error(err))
		jsonutil.InternalError(w, "Could not list posts.")
		return
	}
	jsonutil.Data(w, list)
}

// APICreate creates a blog post.
// POST /api/blogs
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var f createForm
	if err := jsonutil.Decode(r, &f); err != nil {
		jsonutil.BadRequest(w, "Invalid request body.")
		return
	}

	b, msg, err := h.create(r, f)
	if err == blogstore.ErrDuplicateSlug {
		jsonutil.Conflict(w, msg)
		return
	}
	if err != nil {
		h.logger.Error("create blog failed", zap.Error(err))
		jsonutil.InternalError(w, "Could not save the post.")
		return
	}
	if b == nil {
		jsonutil.BadRequest(w, msg)
		return
	}
	jsonutil.Created(w, b)
}
