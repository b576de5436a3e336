// Package writers implements admin management of writer accounts: the
// list + create page and the matching JSON API.
package writers

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/leadcentral/internal/app/store/users"
	"github.com/dalemusser/leadcentral/internal/app/system/auditlog"
	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/app/system/authutil"
	"github.com/dalemusser/leadcentral/internal/app/system/formutil"
	"github.com/dalemusser/leadcentral/internal/app/system/jsonutil"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

// Handler provides writer account management handlers.
type Handler struct {
	userStore   *userstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new writers Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		userStore:   userstore.New(db),
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

// ListVM is the view model for the writer list + create page.
type ListVM struct {
	formutil.Base
	Writers []models.User

	FormName  string
	FormEmail string
}

func (h *Handler) newListVM(r *http.Request) ListVM {
	vm := ListVM{Base: formutil.NewBase(r, "Writers", "/dashboard")}

	list, err := h.userStore.ListByRole(r.Context(), models.RoleWriter)
	if err != nil {
		h.logger.Error("list writers failed", zap.Error(err))
	} else {
		vm.Writers = list
	}
	return vm
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "writers/list", h.newListVM(r))
}

// createForm is the shared shape of a writer create, from either the
// web form or the JSON API.
type createForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// create validates the form and inserts the account. The returned
// message is user-facing; the error distinguishes conflict from server
// failure.
func (h *Handler) create(r *http.Request, f createForm) (*models.User, string, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, "Name is required.", nil
	}
	if strings.TrimSpace(f.Email) == "" {
		return nil, "Email is required.", nil
	}
	if err := authutil.ValidatePassword(f.Password); err != nil {
		return nil, err.Error(), nil
	}

	hash, err := authutil.HashPassword(f.Password)
	if err != nil {
		return nil, "", err
	}

	u, err := h.userStore.CreateFromInput(r.Context(), userstore.CreateInput{
		Name:         f.Name,
		Email:        f.Email,
		Role:         models.RoleWriter,
		PasswordHash: hash,
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			return nil, "A user with that email already exists.", err
		}
		return nil, "", err
	}

	if actor, ok := auth.CurrentUser(r); ok {
		h.auditLogger.UserCreated(r.Context(), r, actor.UserID(), u.ID, u.Role)
	}
	return &u, "", nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	f := createForm{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	u, msg, err := h.create(r, f)
	if err != nil && msg == "" {
		h.logger.Error("create writer failed", zap.Error(err))
		msg = "Could not create the account. Please try again."
	}
	if u == nil {
		vm := h.newListVM(r)
		vm.FormName = f.Name
		vm.FormEmail = f.Email
		vm.SetError(msg)
		templates.Render(w, r, "writers/list", vm)
		return
	}

	http.Redirect(w, r, "/dashboard/writers", http.StatusSeeOther)
}

// APIList returns all writer accounts.
// GET /api/users/writers
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	list, err := h.userStore.ListByRole(r.Context(), models.RoleWriter)
	if err != nil {
		h.logger.Error("list writers failed", zap.Error(err))
		jsonutil.InternalError(w, "Could not list writers.")
		return
	}
	jsonutil.Data(w, list)
}

// APICreate creates a writer account.
// POST /api/users/writers
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var f createForm
	if err := jsonutil.Decode(r, &f); err != nil {
		jsonutil.BadRequest(w, "Invalid request body.")
		return
	}

	u, msg, err := h.create(r, f)
	if err == userstore.ErrDuplicateEmail {
		jsonutil.Conflict(w, msg)
		return
	}
	if err != nil {
		h.logger.Error("create writer failed", zap.Error(err))
		jsonutil.InternalError(w, "Could not create the account.")
		return
	}
	if u == nil {
		jsonutil.BadRequest(w, msg)
		return
	}
	jsonutil.Created(w, u)
}
