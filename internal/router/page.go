package router

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"syscall"

	"github.com/sirosfoundation/go-site-router/internal/placeholder"
	"github.com/sirosfoundation/go-site-router/internal/safepath"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

const (
	indexPage     = "index.html"
	pageExtension = ".html"
)

// PagePath maps a route to its page file name relative to the build directory.
// Trailing slashes are ignored and the empty route is the index page.
func PagePath(route string) string {
	route = strings.TrimRight(route, "/")
	if route == "" {
		return indexPage
	}
	return route + pageExtension
}

// resolveRoute loads the page for route and renders its placeholders.
// found=false when there is no such page; the exchange status is left alone.
func (r *Router) resolveRoute(x *handler.Exchange, route string) (string, bool, error) {
	file, err := safepath.Join(r.cfg.BuildDir, PagePath(route))
	if err != nil {
		return "", false, nil
	}

	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return "", false, nil
	}

	src, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return "", false, nil
		}
		return "", false, err
	}

	html, err := placeholder.Render(string(src), func(name string) (string, bool, error) {
		return r.resolveSSR(x, name, true)
	})
	if err != nil {
		return "", false, err
	}
	return html, true, nil
}

// page builds the response for a rendered page
func (r *Router) page(x *handler.Exchange, html string, strategy Kind) *Result {
	x.SetContentType(handler.DefaultContentType)
	return result(x, []byte(html), strategy)
}
