package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/internal/script"
	"github.com/sirosfoundation/go-site-router/pkg/config"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// scriptedRouter wires script loaders behind an in-code table, as the server does
func scriptedRouter(t *testing.T, root string, table *handler.Table, rewrites config.Rewrites) *Router {
	t.Helper()
	cfg := config.RoutingConfig{
		APIDir:   filepath.Join(root, "src", "api"),
		SSRDir:   filepath.Join(root, "src", "ssr"),
		BuildDir: filepath.Join(root, "dist"),
		Rewrites: rewrites,
	}
	ssr := handler.SSRChain{table, script.NewLoader(cfg.SSRDir, zap.NewNop())}
	api := handler.APIChain{table, script.NewLoader(cfg.APIDir, zap.NewNop())}

	r, err := New(cfg, ssr, api, zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestScripted_RewriteScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dist", "b.html"), "Hi {%who%}")
	writeFile(t, filepath.Join(root, "src", "ssr", "who.go"), `package main

import "github.com/sirosfoundation/go-site-router/pkg/handler"

func SSR(x *handler.Exchange) (string, error) {
	return "World", nil
}
`)
	r := scriptedRouter(t, root, handler.NewTable(), config.Rewrites{{Pattern: "^/a$", Replacement: "/b"}})

	res, err := r.Resolve(handler.NewExchange(httptest.NewRequest(http.MethodGet, "/a", nil)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Hi World", string(res.Body))
}

func TestScripted_APIOnlyGET(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "api", "report.go"), `package main

import "github.com/sirosfoundation/go-site-router/pkg/handler"

func GET(x *handler.Exchange) (string, error) {
	return x.JSON(map[string]int{"present": 12})
}
`)
	r := scriptedRouter(t, root, handler.NewTable(), nil)

	res, err := r.Resolve(handler.NewExchange(httptest.NewRequest(http.MethodGet, "/api/report", nil)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"present":12}`, string(res.Body))

	res, err = r.Resolve(handler.NewExchange(httptest.NewRequest(http.MethodPost, "/api/report", nil)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, res.Status)
	assert.JSONEq(t, `{"error":"Method POST not allowed"}`, string(res.Body))
}

func TestScripted_TableTakesPrecedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "ssr", "who.go"), `package main

import "github.com/sirosfoundation/go-site-router/pkg/handler"

func SSR(x *handler.Exchange) (string, error) {
	return "script", nil
}
`)
	table := handler.NewTable()
	table.HandleSSR("who", func(*handler.Exchange) (string, error) { return "table", nil })
	r := scriptedRouter(t, root, table, nil)

	res, err := r.Resolve(handler.NewExchange(httptest.NewRequest(http.MethodGet, "/ssr/who", nil)))
	require.NoError(t, err)
	assert.Equal(t, "table", string(res.Body))
}

func TestScripted_MissingDirectories(t *testing.T) {
	r := scriptedRouter(t, t.TempDir(), handler.NewTable(), nil)

	for _, target := range []string{"/ssr/who", "/api/report"} {
		res, err := r.Resolve(handler.NewExchange(httptest.NewRequest(http.MethodGet, target, nil)))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.Status, target)
	}
}
