package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

// resolveAPI dispatches /api/<path> to the module function named after the
// request method. Handler errors are returned as they are.
func (r *Router) resolveAPI(x *handler.Exchange, path string) (*Result, error) {
	module, err := r.api.LookupModule(path)
	if errors.Is(err, handler.ErrNotFound) {
		return notFound(x, KindAPI), nil
	}
	if err != nil {
		return nil, err
	}

	fn, ok := module.Lookup(x.Method())
	if !ok {
		x.SetStatus(http.StatusMethodNotAllowed)
		body, err := x.JSON(map[string]string{
			"error": fmt.Sprintf("Method %s not allowed", x.Method()),
		})
		if err != nil {
			return nil, err
		}
		return result(x, []byte(body), KindAPI), nil
	}

	body, err := fn(x)
	if err != nil {
		return nil, err
	}
	return result(x, []byte(body), KindAPI), nil
}
