// Package router resolves requests against a site: static assets, SSR
// variables, API modules, rewrite rules and HTML pages with SSR placeholders.
package router

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/pkg/config"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

const tracerName = "github.com/sirosfoundation/go-site-router/internal/router"

// NotFoundBody is the body of every 404 produced by the router
const NotFoundBody = "404 Not Found"

// Result is the response chosen for one request
type Result struct {
	Status      int
	ContentType string
	Header      http.Header
	Body        []byte
	Strategy    Kind
}

// Router resolves requests. It is safe for concurrent use.
type Router struct {
	cfg    config.RoutingConfig
	ssr    handler.SSRSource
	api    handler.APISource
	logger *zap.Logger
	tracer trace.Tracer
}

// New creates a router. The rewrite rules are compiled on a private copy
// so that the caller's configuration is never touched.
func New(cfg config.RoutingConfig, ssr handler.SSRSource, api handler.APISource, logger *zap.Logger) (*Router, error) {
	rewrites := make(config.Rewrites, len(cfg.Rewrites))
	copy(rewrites, cfg.Rewrites)
	if err := rewrites.Compile(); err != nil {
		return nil, fmt.Errorf("invalid rewrites: %w", err)
	}
	cfg.Rewrites = rewrites

	if ssr == nil {
		ssr = handler.SSRChain{}
	}
	if api == nil {
		api = handler.APIChain{}
	}

	return &Router{
		cfg:    cfg,
		ssr:    ssr,
		api:    api,
		logger: logger.Named("router"),
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Config returns the routing configuration in use
func (r *Router) Config() config.RoutingConfig {
	return r.cfg
}

// Resolve runs exactly one resolution strategy for x.
// Errors are handler faults and are returned unchanged; not found and
// method not allowed are regular results.
func (r *Router) Resolve(x *handler.Exchange) (*Result, error) {
	ctx, span := r.tracer.Start(x.Context(), "router.Resolve",
		trace.WithAttributes(attribute.String("site.path", x.Path())),
	)
	defer span.End()
	x.SetContext(ctx)

	res, err := r.resolve(x)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("site.strategy", string(res.Strategy)),
		attribute.Int("http.status_code", res.Status),
	)
	return res, nil
}

func (r *Router) resolve(x *handler.Exchange) (*Result, error) {
	c := Classify(x.Path())

	switch c.Kind {
	case KindAsset:
		return r.resolveAsset(x, c.Target, c.Ext), nil

	case KindSSR:
		return r.resolveDirectSSR(x, c.Target)

	case KindAPI:
		return r.resolveAPI(x, c.Target)
	}

	if res, err := r.resolveRewrites(x, c.Target); err != nil || res != nil {
		return res, err
	}

	html, ok, err := r.resolveRoute(x, c.Target)
	if err != nil {
		return nil, err
	}
	if ok {
		return r.page(x, html, KindRoute), nil
	}

	r.logger.Debug("No page for path", zap.String("path", c.Target))
	return notFound(x, KindNotFound), nil
}

// result builds a Result from the status and headers accumulated on x
func result(x *handler.Exchange, body []byte, strategy Kind) *Result {
	header := x.Header().Clone()
	header.Del("Content-Type")
	return &Result{
		Status:      x.Status(),
		ContentType: x.ContentType(),
		Header:      header,
		Body:        body,
		Strategy:    strategy,
	}
}

func notFound(x *handler.Exchange, strategy Kind) *Result {
	x.SetStatus(http.StatusNotFound)
	return result(x, []byte(NotFoundBody), strategy)
}
