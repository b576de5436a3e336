// Package leadcapture implements the public lead submission endpoint.
// Callers authenticate with a per-domain capture key; the resolved
// domain attributes the lead.
package leadcapture

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	domainstore "github.com/dalemusser/leadcentral/internal/app/store/domains"
	leadstore "github.com/dalemusser/leadcentral/internal/app/store/leads"
	statsstore "github.com/dalemusser/leadcentral/internal/app/store/stats"
	"github.com/dalemusser/leadcentral/internal/app/system/apicors"
	"github.com/dalemusser/leadcentral/internal/app/system/auditlog"
	"github.com/dalemusser/leadcentral/internal/app/system/jsonutil"
	"github.com/dalemusser/leadcentral/internal/app/system/network"
	"github.com/dalemusser/leadcentral/internal/domain/models"
)

type ctxKey string

const domainKey ctxKey = "captureDomain"

// Handler provides the capture endpoint.
type Handler struct {
	domainStore *domainstore.Store
	leadStore   *leadstore.Store
	statsStore  *statsstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new capture Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		domainStore: domainstore.New(db),
		leadStore:   leadstore.New(db),
		statsStore:  statsstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Routes returns the capture routes. CORS is wide open: capture calls
// come from arbitrary customer sites.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.Middleware())
	r.Use(h.requireCaptureKey)
	r.Post("/leads", h.handleCapture)
	return r
}

// requireCaptureKey resolves the bearer token to a secured domain. Only
// domains holding a capture key can submit; everything else is a 401.
func (h *Handler) requireCaptureKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := bearerToken(r)
		if key == "" {
			h.recordRejected(r, "missing capture key")
			jsonutil.Unauthorized(w, "A capture key is required.")
			return
		}

		dom, err := h.domainStore.GetByAPIKey(r.Context(), key)
		if err != nil {
			if err != mongo.ErrNoDocuments {
				h.logger.Error("capture key lookup failed", zap.Error(err))
				jsonutil.InternalError(w, "Could not verify the capture key.")
				return
			}
			h.recordRejected(r, "unknown capture key")
			jsonutil.Unauthorized(w, "Invalid capture key.")
			return
		}

		ctx := context.WithValue(r.Context(), domainKey, dom)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func captureDomain(r *http.Request) (*models.Domain, bool) {
	dom, ok := r.Context().Value(domainKey).(*models.Domain)
	return dom, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// submission is the public capture payload. Unknown keys land in
// Metadata untouched.
type submission struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Source    string `json:"source"`

	Deadline  *time.Time `json:"deadline"`
	WordCount int        `json:"word_count"`
	Files     []string   `json:"files"`

	Metadata map[string]any `json:"metadata"`
}

func (h *Handler) handleCapture(w http.ResponseWriter, r *http.Request) {
	dom, ok := captureDomain(r)
	if !ok {
		jsonutil.Unauthorized(w, "A capture key is required.")
		return
	}

	var sub submission
	if err := jsonutil.Decode(r, &sub); err != nil {
		h.recordRejected(r, "malformed body")
		jsonutil.BadRequest(w, "Invalid request body.")
		return
	}

	// Attribution is server-side only; clients cannot spoof it.
	meta := bson.M{}
	for k, v := range sub.Metadata {
		meta[k] = v
	}
	meta["client_ip"] = network.ClientIP(r)
	if ref := r.Header.Get("Referer"); ref != "" {
		meta["referrer"] = ref
	}

	lead, err := h.leadStore.Create(r.Context(), leadstore.CreateInput{
		DomainID:   dom.ID,
		DomainName: dom.Name,
		FirstName:  sub.FirstName,
		LastName:   sub.LastName,
		Email:      sub.Email,
		Phone:      sub.Phone,
		Subject:    sub.Subject,
		Message:    sub.Message,
		Source:     sub.Source,
		Deadline:   sub.Deadline,
		WordCount:  sub.WordCount,
		Files:      sub.Files,
		Metadata:   meta,
	})
	if err != nil {
		switch err {
		case leadstore.ErrMissingFirstName:
			h.recordRejected(r, "missing first name")
			jsonutil.BadRequest(w, "First name is required.")
		case leadstore.ErrMissingEmail:
			h.recordRejected(r, "missing email")
			jsonutil.BadRequest(w, "Email is required.")
		default:
			h.logger.Error("capture insert failed", zap.Error(err))
			jsonutil.InternalError(w, "Could not record the submission.")
		}
		return
	}

	h.auditLogger.LeadCaptured(r.Context(), r, dom.Name, lead.Email)
	h.bumpCounter(r.Context(), statsstore.CounterLeadsAccepted)

	jsonutil.Created(w, lead)
}

// recordRejected audits and counts a refused capture attempt.
func (h *Handler) recordRejected(r *http.Request, reason string) {
	h.auditLogger.LeadCaptureRejected(r.Context(), r, reason)
	h.bumpCounter(r.Context(), statsstore.CounterLeadsRejected)
}

func (h *Handler) bumpCounter(ctx context.Context, counter string) {
	err := h.statsStore.IncrementCounter(ctx, time.Now().UTC(), statsstore.TypeCapture, counter, 1)
	if err != nil {
		h.logger.Warn("capture counter increment failed",
			zap.String("counter", counter), zap.Error(err))
	}
}
