package router

import (
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/internal/safepath"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

const fallbackContentType = "application/octet-stream"

// resolveAsset serves a file from the build directory verbatim.
// The content type is chosen before the file is known to exist, so a 404
// carries it too.
func (r *Router) resolveAsset(x *handler.Exchange, path, ext string) *Result {
	file, pathErr := safepath.Join(r.cfg.BuildDir, path)

	x.SetContentType(assetContentType(file, pathErr == nil, ext))

	if pathErr != nil {
		r.logger.Debug("Rejected asset path", zap.String("path", path))
		return notFound(x, KindAsset)
	}

	data, err := os.ReadFile(file)
	if err != nil || len(data) == 0 {
		return notFound(x, KindAsset)
	}

	x.SetStatus(http.StatusOK)
	return result(x, data, KindAsset)
}

func assetContentType(file string, safe bool, ext string) string {
	switch ext {
	case "js":
		return "application/javascript"
	case "css":
		return "text/css"
	}

	if safe {
		if mt, err := mimetype.DetectFile(file); err == nil {
			return mt.String()
		}
	}
	return contentTypeByExtension(ext)
}

func contentTypeByExtension(ext string) string {
	if ext == "" {
		return fallbackContentType
	}
	if ct := mime.TypeByExtension("." + strings.ToLower(ext)); ct != "" {
		return ct
	}
	return fallbackContentType
}
