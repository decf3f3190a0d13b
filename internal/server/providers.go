package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/internal/router"
	"github.com/sirosfoundation/go-site-router/pkg/config"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
	"github.com/sirosfoundation/go-site-router/pkg/middleware"
)

// =============================================================================
// Site Provider - resolves every path not claimed by another provider
// =============================================================================

// SiteProvider serves the site through the router
type SiteProvider struct {
	router *router.Router
	logger *zap.Logger
}

// NewSiteProvider creates a new site route provider
func NewSiteProvider(r *router.Router, logger *zap.Logger) *SiteProvider {
	return &SiteProvider{
		router: r,
		logger: logger.Named("site"),
	}
}

func (p *SiteProvider) Name() string { return "site" }

func (p *SiteProvider) RegisterRoutes(engine *gin.Engine) {
	engine.NoRoute(p.Handle)
}

// Handle resolves the request and writes the result.
// Handler faults are answered with 500 and recorded on the context for the logger.
func (p *SiteProvider) Handle(c *gin.Context) {
	x := handler.NewExchange(c.Request)

	res, err := p.router.Resolve(x)
	if err != nil {
		c.Set(middleware.StrategyKey, string(router.Classify(x.Path()).Kind))
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	c.Set(middleware.StrategyKey, string(res.Strategy))
	header := c.Writer.Header()
	for key, values := range res.Header {
		for _, v := range values {
			header.Add(key, v)
		}
	}
	c.Data(res.Status, res.ContentType, res.Body)
}

// =============================================================================
// Ops Provider - health, status and metrics endpoints
// =============================================================================

// OpsProvider serves the operational endpoints under the ops prefix
type OpsProvider struct {
	cfg     *config.Config
	metrics *middleware.Metrics
	started time.Time
}

// NewOpsProvider creates the ops route provider. metrics may be nil.
func NewOpsProvider(cfg *config.Config, metrics *middleware.Metrics) *OpsProvider {
	return &OpsProvider{
		cfg:     cfg,
		metrics: metrics,
		started: time.Now(),
	}
}

func (p *OpsProvider) Name() string { return "ops" }

func (p *OpsProvider) RegisterRoutes(engine *gin.Engine) {
	engine.GET(p.cfg.Ops.OpsPath("health"), p.health)
	engine.GET(p.cfg.Ops.OpsPath("status"), p.status)
	if p.metrics != nil {
		engine.GET(p.cfg.Ops.OpsPath("metrics"), gin.WrapH(p.metrics.Handler()))
	}
}

func (p *OpsProvider) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (p *OpsProvider) status(c *gin.Context) {
	capabilities := []string{"assets", "ssr", "api", "rewrites"}
	if p.metrics != nil {
		capabilities = append(capabilities, "metrics")
	}
	if p.cfg.Compression.Enabled {
		capabilities = append(capabilities, "compression")
	}

	c.JSON(http.StatusOK, StatusResponse{
		Status:        "ok",
		Service:       ServiceName,
		Version:       Version,
		UptimeSeconds: int64(time.Since(p.started).Seconds()),
		Routing: RoutingStatus{
			APIDir:   p.cfg.Routing.APIDir,
			SSRDir:   p.cfg.Routing.SSRDir,
			BuildDir: p.cfg.Routing.BuildDir,
			Rewrites: len(p.cfg.Routing.Rewrites),
		},
		Capabilities: capabilities,
	})
}
