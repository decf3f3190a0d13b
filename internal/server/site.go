package server

import (
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/internal/router"
	"github.com/sirosfoundation/go-site-router/internal/script"
	"github.com/sirosfoundation/go-site-router/pkg/config"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

// NewSiteRouter creates the router for a site. Handlers registered in table
// take precedence over script files in the SSR and API directories.
func NewSiteRouter(cfg config.RoutingConfig, table *handler.Table, logger *zap.Logger) (*router.Router, error) {
	if table == nil {
		table = handler.NewTable()
	}
	ssr := handler.SSRChain{table, script.NewLoader(cfg.SSRDir, logger)}
	api := handler.APIChain{table, script.NewLoader(cfg.APIDir, logger)}
	return router.New(cfg, ssr, api, logger)
}
