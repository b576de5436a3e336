// Package login implements sign-in for the dashboard and the JSON API.
package login

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	errorsfeature "github.com/dalemusser/leadcentral/internal/app/features/errors"
	"github.com/dalemusser/leadcentral/internal/app/store/ratelimit"
	"github.com/dalemusser/leadcentral/internal/app/store/sessions"
	userstore "github.com/dalemusser/leadcentral/internal/app/store/users"
	"github.com/dalemusser/leadcentral/internal/app/system/auditlog"
	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/app/system/authutil"
	"github.com/dalemusser/leadcentral/internal/app/system/jsonutil"
	"github.com/dalemusser/leadcentral/internal/app/system/network"
	"github.com/dalemusser/leadcentral/internal/app/system/status"
	"github.com/dalemusser/leadcentral/internal/app/system/viewdata"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

// sessionLifetime bounds how long a login token stays valid.
const sessionLifetime = 30 * 24 * time.Hour

// Handler provides login handlers.
type Handler struct {
	userStore      *userstore.Store
	sessionsStore  *sessions.Store
	rateLimitStore *ratelimit.Store // nil if rate limiting disabled
	sessionMgr     *auth.SessionManager
	errLog         *errorsfeature.ErrorLogger
	auditLogger    *auditlog.Logger
	logger         *zap.Logger
}

// NewHandler creates a new login Handler.
// rateLimitStore can be nil to disable rate limiting.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *errorsfeature.ErrorLogger,
	auditLogger *auditlog.Logger,
	sessionsStore *sessions.Store,
	rateLimitStore *ratelimit.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userStore:      userstore.New(db),
		sessionsStore:  sessionsStore,
		rateLimitStore: rateLimitStore,
		sessionMgr:     sessionMgr,
		errLog:         errLog,
		auditLogger:    auditLogger,
		logger:         logger,
	}
}

// LoginVM is the view model for the login page.
type LoginVM struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

// Routes returns a chi.Router with web login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.showLogin)
	r.Post("/", h.handleLogin)

	return r
}

// showLogin displays the login page.
func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	errorCode := r.URL.Query().Get("error")
	errorMsg := ""
	switch errorCode {
	case "account_disabled":
		errorMsg = "Account is disabled."
	case "service_unavailable":
		errorMsg = "Service temporarily unavailable. Please try again."
	case "":
	default:
		errorMsg = errorCode
	}

	vm := LoginVM{
		BaseVM:    viewdata.New(r),
		ReturnURL: query.Get(r, "return"),
		Error:     errorMsg,
	}
	vm.Title = "Login"

	templates.Render(w, r, "login/index", vm)
}

// loginResult carries the outcome of a credential check so the web and API
// surfaces can share one code path.
type loginResult struct {
	user *models.User

	// message is safe to show the requester; empty on success.
	message    string
	statusCode int
}

// checkCredentials validates an email/password pair against the user store
// and the login rate limiter.
func (h *Handler) checkCredentials(r *http.Request, email, password string) loginResult {
	ctx := r.Context()

	if h.rateLimitStore != nil {
		allowed, _, lockedUntil := h.rateLimitStore.CheckAllowed(ctx, email)
		if !allowed {
			h.auditLogger.LoginRateLimited(ctx, r, email)
			return loginResult{message: lockoutMessage(lockedUntil), statusCode: http.StatusTooManyRequests}
		}
	}

	user, err := h.userStore.GetByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			if h.rateLimitStore != nil {
				h.rateLimitStore.RecordFailure(ctx, email)
			}
			h.auditLogger.LoginFailedUserNotFound(ctx, r, email)
			return loginResult{message: "Invalid credentials.", statusCode: http.StatusUnauthorized}
		}
		h.errLog.Log(r, "database error during login lookup", err)
		return loginResult{message: "Service temporarily unavailable. Please try again.", statusCode: http.StatusInternalServerError}
	}

	if user.Status != status.Active {
		if h.rateLimitStore != nil {
			h.rateLimitStore.RecordFailure(ctx, email)
		}
		h.auditLogger.LoginFailedUserDisabled(ctx, r, user.ID, email)
		return loginResult{message: "Account is disabled.", statusCode: http.StatusForbidden}
	}

	if !authutil.CheckPassword(password, user.PasswordHash) {
		if h.rateLimitStore != nil {
			lockedOut, lockedUntil := h.rateLimitStore.RecordFailure(ctx, email)
			if lockedOut {
				h.auditLogger.LogAuthEvent(r, &user.ID, "login_locked_out", false, "too many failed attempts")
				return loginResult{message: lockoutMessage(lockedUntil), statusCode: http.StatusTooManyRequests}
			}
		}
		h.auditLogger.LoginFailedWrongPassword(ctx, r, user.ID, email)
		return loginResult{message: "Invalid credentials.", statusCode: http.StatusUnauthorized}
	}

	if h.rateLimitStore != nil {
		h.rateLimitStore.ClearOnSuccess(ctx, email)
	}

	return loginResult{user: user}
}

func lockoutMessage(lockedUntil *time.Time) string {
	if lockedUntil == nil {
		return "Too many failed login attempts. Please try again later."
	}
	remaining := time.Until(*lockedUntil)
	if remaining > time.Minute {
		return fmt.Sprintf("Too many failed login attempts. Please try again in %d minute(s).", int(remaining.Minutes())+1)
	}
	return fmt.Sprintf("Too many failed login attempts. Please try again in %d second(s).", int(remaining.Seconds())+1)
}

// handleLogin processes the login form.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	returnURL := r.FormValue("return")

	renderError := func(msg string) {
		vm := LoginVM{
			BaseVM:    viewdata.New(r),
			Error:     msg,
			Email:     email,
			ReturnURL: returnURL,
		}
		vm.Title = "Login"
		templates.Render(w, r, "login/index", vm)
	}

	if email == "" || password == "" {
		renderError("Please enter your email and password.")
		return
	}

	res := h.checkCredentials(r, email, password)
	if res.user == nil {
		renderError(res.message)
		return
	}
	user := res.user

	if _, err := h.createTrackedSession(w, r, user.ID, user.Role, true); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.auditLogger.LoginSuccess(r.Context(), r, user.ID, user.Email)

	// Writers land on the blog list; admins see the full dashboard.
	dest := "/dashboard"
	if user.Role == models.RoleWriter {
		dest = "/dashboard/blogs"
	}
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", dest), http.StatusSeeOther)
}

// APILogin validates credentials and returns a bearer token for /api routes.
func (h *Handler) APILogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid request body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		jsonutil.BadRequest(w, "Email and password are required.")
		return
	}

	res := h.checkCredentials(r, req.Email, req.Password)
	if res.user == nil {
		jsonutil.Error(w, res.statusCode, res.message)
		return
	}
	user := res.user

	// API clients carry the token themselves; no cookie session is set.
	token, err := h.createTrackedSession(w, r, user.ID, user.Role, false)
	if err != nil {
		h.errLog.Log(r, "failed to create session", err)
		jsonutil.InternalError(w, "Service temporarily unavailable. Please try again.")
		return
	}

	h.auditLogger.LoginSuccess(r.Context(), r, user.ID, user.Email)

	jsonutil.Data(w, map[string]any{
		"token": token,
		"user":  user,
	})
}

// createTrackedSession generates a session token, optionally binds it to a
// cookie session, and records it in MongoDB. Returns the token.
func (h *Handler) createTrackedSession(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID, role string, withCookie bool) (string, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	if withCookie {
		if err := h.sessionMgr.CreateSession(w, r, userID, role, token); err != nil {
			return "", err
		}
	}

	now := time.Now().UTC()
	session := sessions.Session{
		Token:        token,
		UserID:       userID,
		IPAddress:    network.ClientIP(r),
		UserAgent:    r.UserAgent(),
		LoginAt:      now,
		LastActivity: now,
		ExpiresAt:    now.Add(sessionLifetime),
	}

	if err := h.sessionsStore.Create(r.Context(), session); err != nil {
		if !withCookie {
			// The token only exists in MongoDB for API clients, so a
			// failed insert means the token would never resolve.
			return "", err
		}
		// Cookie logins still work without the tracking record.
		h.logger.Warn("failed to track session", zap.Error(err))
	}

	return token, nil
}
