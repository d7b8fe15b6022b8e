package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/silovra/silovra-api/internal/analytics"
	"github.com/silovra/silovra-api/internal/auth"
	"github.com/silovra/silovra-api/internal/billing"
	"github.com/silovra/silovra-api/internal/observability"
	"github.com/silovra/silovra-api/internal/profiles"
	"github.com/silovra/silovra-api/internal/themes"
)

const sessionEmailContextKey = "silovra_session_email"

var (
	errMissingResolver   = errors.New("profile resolver dependency required")
	errMissingIngestor   = errors.New("analytics ingestor dependency required")
	errMissingReconciler = errors.New("billing reconciler dependency required")
	errMissingSessions   = errors.New("session validator dependency required")
)

// SessionValidator validates externally issued dashboard sessions.
type SessionValidator interface {
	ValidateRequest(r *http.Request) (auth.SessionClaims, error)
}

// Dependencies wires the core components into the HTTP surface.
type Dependencies struct {
	Resolver   *profiles.Resolver
	Ingestor   *analytics.Ingestor
	Reconciler *billing.Reconciler
	Sessions   SessionValidator
	Logger     *zap.Logger
}

// NewHTTPHandler builds the public router. The delivery layer is deliberately
// thin: every behavior beyond status mapping lives in the injected components.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Resolver == nil {
		return nil, errMissingResolver
	}
	if deps.Ingestor == nil {
		return nil, errMissingIngestor
	}
	if deps.Reconciler == nil {
		return nil, errMissingReconciler
	}
	if deps.Sessions == nil {
		return nil, errMissingSessions
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handler := &httpHandler{
		resolver:   deps.Resolver,
		ingestor:   deps.Ingestor,
		reconciler: deps.Reconciler,
		sessions:   deps.Sessions,
		logger:     logger,
	}

	router.GET("/healthz", handler.handleHealthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/themes", handler.handleListThemes)
	router.GET("/api/profiles/:username", handler.handleResolveProfile)
	router.POST("/api/track-click", handler.handleTrackClick)
	router.POST("/api/webhooks/gumroad", handler.handleGumroadWebhook)

	dashboard := router.Group("/api")
	dashboard.Use(handler.authorizeSession)
	dashboard.GET("/stats/:username", handler.handleStats)

	return router, nil
}

type httpHandler struct {
	resolver   *profiles.Resolver
	ingestor   *analytics.Ingestor
	reconciler *billing.Reconciler
	sessions   SessionValidator
	logger     *zap.Logger
}

func (h *httpHandler) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"themes": themes.All()})
}

func (h *httpHandler) handleResolveProfile(c *gin.Context) {
	view, err := h.resolver.Resolve(c.Request.Context(), c.Param("username"))
	if errors.Is(err, profiles.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("profile resolution failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve_failed"})
		return
	}

	// Handed off, never awaited; the response does not depend on it.
	h.ingestor.RecordView(view.Username)
	observability.PageViewsTotal.Inc()

	c.JSON(http.StatusOK, view)
}

type clickRequestPayload struct {
	Username string `json:"username"`
	LinkID   string `json:"link_id"`
}

func (h *httpHandler) handleTrackClick(c *gin.Context) {
	var request clickRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	// Best-effort by contract: the caller sees success regardless of whether
	// the underlying write lands.
	h.ingestor.RecordClick(request.Username, request.LinkID)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *httpHandler) handleGumroadWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	ping := billing.ParsePing(body)
	switch ping.Kind {
	case billing.PingKindGrant:
		outcome, err := h.reconciler.ApplyGrant(c.Request.Context(), ping.SaleID, ping.Email, ping.ProductPermalink)
		if errors.Is(err, billing.ErrInvalidProduct) {
			observability.WebhookDeliveriesTotal.WithLabelValues("grant", "invalid_product").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product"})
			return
		}
		if errors.Is(err, billing.ErrAccountNotFound) {
			observability.WebhookDeliveriesTotal.WithLabelValues("grant", "user_not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		if err != nil {
			h.logger.Error("grant application failed", zap.Error(err), zap.String("sale_id", ping.SaleID))
			observability.WebhookDeliveriesTotal.WithLabelValues("grant", "failed").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook_failed"})
			return
		}
		observability.WebhookDeliveriesTotal.WithLabelValues("grant", string(outcome)).Inc()
		c.JSON(http.StatusOK, gin.H{"success": true})

	case billing.PingKindReversal:
		outcome, err := h.reconciler.ApplyReversal(c.Request.Context(), ping.SaleID)
		if err != nil {
			h.logger.Error("reversal application failed", zap.Error(err), zap.String("sale_id", ping.SaleID))
			observability.WebhookDeliveriesTotal.WithLabelValues("reversal", "failed").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook_failed"})
			return
		}
		observability.WebhookDeliveriesTotal.WithLabelValues("reversal", string(outcome)).Inc()
		c.JSON(http.StatusOK, gin.H{"success": true})

	default:
		// Unknown ping shapes are acknowledged so the provider stops retrying.
		observability.WebhookDeliveriesTotal.WithLabelValues("unknown", "received").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *httpHandler) authorizeSession(c *gin.Context) {
	claims, err := h.sessions.ValidateRequest(c.Request)
	if err != nil {
		h.logger.Warn("session validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(sessionEmailContextKey, strings.ToLower(strings.TrimSpace(claims.UserEmail)))
	c.Next()
}

func (h *httpHandler) handleStats(c *gin.Context) {
	sessionEmail := c.GetString(sessionEmailContextKey)
	if sessionEmail == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	username := c.Param("username")
	ownerEmail, err := h.resolver.OwnerEmail(c.Request.Context(), username)
	if errors.Is(err, profiles.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("stats owner lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats_failed"})
		return
	}
	if !strings.EqualFold(ownerEmail, sessionEmail) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	summary, err := h.ingestor.Summarize(c.Request.Context(), username)
	if err != nil {
		h.logger.Error("stats aggregation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats_failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
