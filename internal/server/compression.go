package server

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/pkg/config"
)

// newCompressionHandler wraps h with gzip compression when enabled
func newCompressionHandler(h http.Handler, cfg config.CompressionConfig, logger *zap.Logger) http.Handler {
	if !cfg.Enabled {
		return h
	}

	level := gzip.DefaultCompression
	switch cfg.Level {
	case "fastest":
		level = gzip.BestSpeed
	case "best":
		level = gzip.BestCompression
	}

	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(cfg.MinSize),
		gzhttp.CompressionLevel(level),
	)
	if err != nil {
		logger.Warn("Compression disabled", zap.Error(err))
		return h
	}
	return wrapper(h)
}
