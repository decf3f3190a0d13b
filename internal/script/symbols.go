package script

import (
	"reflect"

	"github.com/traefik/yaegi/interp"

	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

// HandlerImportPath is the import path scripts use for the handler package
const HandlerImportPath = "github.com/sirosfoundation/go-site-router/pkg/handler"

// Symbols exposes pkg/handler to interpreted scripts
var Symbols = interp.Exports{
	HandlerImportPath + "/handler": {
		"Exchange":    reflect.ValueOf((*handler.Exchange)(nil)),
		"SSRFunc":     reflect.ValueOf((*handler.SSRFunc)(nil)),
		"MethodFunc":  reflect.ValueOf((*handler.MethodFunc)(nil)),
		"Module":      reflect.ValueOf((*handler.Module)(nil)),
		"Base64JSON":  reflect.ValueOf(handler.Base64JSON),
		"ErrNotFound": reflect.ValueOf(&handler.ErrNotFound).Elem(),
	},
}
