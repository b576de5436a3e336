// Package logout terminates dashboard and API sessions.
package logout

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/leadcentral/internal/app/store/sessions"
	"github.com/dalemusser/leadcentral/internal/app/system/auditlog"
	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/app/system/jsonutil"
)

// Handler provides logout handlers.
type Handler struct {
	sessionMgr    *auth.SessionManager
	auditLogger   *auditlog.Logger
	sessionsStore *sessions.Store
	logger        *zap.Logger
}

// NewHandler creates a new logout Handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	auditLogger *auditlog.Logger,
	sessionsStore *sessions.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		sessionMgr:    sessionMgr,
		auditLogger:   auditLogger,
		sessionsStore: sessionsStore,
		logger:        logger,
	}
}

// Routes returns a chi.Router with logout routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAuth)
	r.Post("/", h.handleLogout)
	r.Get("/", h.handleLogout) // Allow GET for simple logout links
	return r
}

// closeTrackedSession ends the MongoDB session record for audit history.
func (h *Handler) closeTrackedSession(r *http.Request, user *auth.SessionUser) {
	h.auditLogger.Logout(r.Context(), r, user.ID)

	if token := user.SessionToken(); token != "" {
		if err := h.sessionsStore.Close(r.Context(), token, sessions.EndReasonLogout); err != nil {
			h.logger.Warn("failed to close session in store", zap.Error(err))
		}
	}
}

// handleLogout terminates the cookie session.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.CurrentUser(r); ok {
		h.closeTrackedSession(r, user)
	}

	h.sessionMgr.DestroySession(w, r)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// APILogout revokes the bearer token of the calling API client.
// Mounted inside the token-authenticated API group.
func (h *Handler) APILogout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "Authentication required.")
		return
	}

	h.closeTrackedSession(r, user)

	jsonutil.Data(w, map[string]string{"status": "logged_out"})
}
