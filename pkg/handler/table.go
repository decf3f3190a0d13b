package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by sources that have no handler for a name or path
var ErrNotFound = errors.New("handler not found")

// SSRFunc produces the value of one SSR variable
type SSRFunc func(x *Exchange) (string, error)

// MethodFunc handles one HTTP method of an API endpoint
type MethodFunc func(x *Exchange) (string, error)

// Module maps exact request method strings to their handlers
type Module map[string]MethodFunc

// Methods lists the verbs a module may define
var Methods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

// Lookup returns the handler for method. Matching is exact and case-sensitive.
func (m Module) Lookup(method string) (MethodFunc, bool) {
	fn, ok := m[method]
	return fn, ok && fn != nil
}

// Allowed returns the sorted list of methods the module handles
func (m Module) Allowed() []string {
	out := make([]string, 0, len(m))
	for method, fn := range m {
		if fn != nil {
			out = append(out, method)
		}
	}
	sort.Strings(out)
	return out
}

// SSRSource finds SSR variable handlers by name
type SSRSource interface {
	LookupSSR(name string) (SSRFunc, error)
}

// APISource finds API modules by sub-path
type APISource interface {
	LookupModule(path string) (Module, error)
}

// Table holds handlers registered in code
type Table struct {
	mu      sync.RWMutex
	ssr     map[string]SSRFunc
	modules map[string]Module
}

// NewTable creates an empty handler table
func NewTable() *Table {
	return &Table{
		ssr:     make(map[string]SSRFunc),
		modules: make(map[string]Module),
	}
}

// HandleSSR registers the handler of SSR variable name
func (t *Table) HandleSSR(name string, fn SSRFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ssr[name] = fn
}

// Handle registers fn for one method of the API module at path
func (t *Table) Handle(path, method string, fn MethodFunc) {
	path = normalizeModulePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.modules[path]
	if !ok {
		m = make(Module)
		t.modules[path] = m
	}
	m[method] = fn
}

// HandleModule registers a whole API module, replacing any previous one at path
func (t *Table) HandleModule(path string, m Module) {
	path = normalizeModulePath(path)
	copied := make(Module, len(m))
	for method, fn := range m {
		copied[method] = fn
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.modules[path] = copied
}

// LookupSSR implements SSRSource
func (t *Table) LookupSSR(name string) (SSRFunc, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.ssr[name]
	if !ok || fn == nil {
		return nil, fmt.Errorf("ssr variable %q: %w", name, ErrNotFound)
	}
	return fn, nil
}

// LookupModule implements APISource. The returned module is a copy.
func (t *Table) LookupModule(path string) (Module, error) {
	path = normalizeModulePath(path)

	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.modules[path]
	if !ok {
		return nil, fmt.Errorf("api module %q: %w", path, ErrNotFound)
	}
	copied := make(Module, len(m))
	for method, fn := range m {
		copied[method] = fn
	}
	return copied, nil
}

// SSRNames returns the registered SSR variable names, sorted
func (t *Table) SSRNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.ssr))
	for name := range t.ssr {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeModulePath(path string) string {
	return strings.Trim(path, "/")
}

// SSRChain consults sources in order; the first one that knows the name wins
type SSRChain []SSRSource

// LookupSSR implements SSRSource
func (c SSRChain) LookupSSR(name string) (SSRFunc, error) {
	for _, src := range c {
		fn, err := src.LookupSSR(name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return fn, err
	}
	return nil, fmt.Errorf("ssr variable %q: %w", name, ErrNotFound)
}

// APIChain consults sources in order; the first one that knows the path wins
type APIChain []APISource

// LookupModule implements APISource
func (c APIChain) LookupModule(path string) (Module, error) {
	for _, src := range c {
		m, err := src.LookupModule(path)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return m, err
	}
	return nil, fmt.Errorf("api module %q: %w", path, ErrNotFound)
}
