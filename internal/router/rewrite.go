package router

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

// resolveRewrites tries each rewrite rule in order and returns the first
// page produced by a candidate, or nil when no candidate names a page.
// A rule that does not match yields the original path as its candidate.
// Query parameters carried by a candidate are merged into the exchange
// before its page is attempted and stay merged even if the attempt fails.
func (r *Router) resolveRewrites(x *handler.Exchange, path string) (*Result, error) {
	for i, rule := range r.cfg.Rewrites {
		candidate, matched := rule.Apply(path)

		target, query := SplitCandidate(candidate)
		if len(query) > 0 {
			x.MergeQuery(query)
		}

		html, found, err := r.resolveRoute(x, target)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}

		strategy := KindRewrite
		if !matched {
			strategy = KindRoute
		}
		r.logger.Debug("Rewrite candidate served",
			zap.Int("rule", i),
			zap.String("pattern", rule.Pattern),
			zap.Bool("matched", matched),
			zap.String("path", path),
			zap.String("target", target),
		)
		return r.page(x, html, strategy), nil
	}
	return nil, nil
}

// SplitCandidate separates a rewritten URL into the route it names and its query values
func SplitCandidate(candidate string) (string, url.Values) {
	u, err := url.Parse(candidate)
	if err != nil {
		path, rawQuery, _ := strings.Cut(candidate, "?")
		query, _ := url.ParseQuery(rawQuery)
		return path, query
	}
	query, _ := url.ParseQuery(u.RawQuery)
	return u.Path, query
}
