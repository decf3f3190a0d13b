package router

import (
	"errors"
	"net/http"

	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

// resolveSSR returns the value of SSR variable name.
// ok=false means there is no handler for name; outside of page rendering
// (embedded=false) the exchange status becomes 404 in that case.
func (r *Router) resolveSSR(x *handler.Exchange, name string, embedded bool) (string, bool, error) {
	fn, err := r.ssr.LookupSSR(name)
	if errors.Is(err, handler.ErrNotFound) {
		if !embedded {
			x.SetStatus(http.StatusNotFound)
		}
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	value, err := fn(x)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// resolveDirectSSR answers /ssr/<name> with the bare variable value
func (r *Router) resolveDirectSSR(x *handler.Exchange, name string) (*Result, error) {
	value, ok, err := r.resolveSSR(x, name, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return notFound(x, KindSSR), nil
	}
	return result(x, []byte(value), KindSSR), nil
}
