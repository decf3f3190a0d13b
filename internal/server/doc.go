// Package server hosts the site router behind a gin engine.
//
// Architecture:
//   - RouteProvider: contributes routes to the shared engine
//   - OpsProvider: health, status and metrics under the ops prefix
//   - SiteProvider: every other path, mounted with NoRoute
//   - Manager: common middleware, compression, listener and graceful shutdown
//
// Usage:
//
//	mgr := server.NewManager(cfg, logger)
//	mgr.AddProvider(server.NewOpsProvider(cfg, mgr.Metrics()))
//	mgr.AddProvider(server.NewSiteProvider(siteRouter, logger))
//	if err := mgr.Start(ctx); err != nil { ... }
//	defer mgr.Shutdown(shutdownCtx)
package server
