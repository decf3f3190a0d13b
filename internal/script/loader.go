// Package script loads SSR variable and API handlers from Go source files.
//
// Files are interpreted with yaegi. An SSR file defines
//
//	func SSR(x *handler.Exchange) (string, error)
//
// and an API file defines one function per supported method, named after the
// method (GET, POST, ...), with the same signature. Interpreted programs are
// cached per file and reloaded when the file's modification time or size
// changes. Handlers themselves run fresh on every call.
package script

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sirosfoundation/go-site-router/internal/safepath"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

// Extension of handler files
const Extension = ".go"

// SSRSymbol is the function an SSR file must define
const SSRSymbol = "SSR"

type handlerFunc = func(*handler.Exchange) (string, error)

// program is one interpreted file
type program struct {
	modTime time.Time
	size    int64

	ssr    handler.SSRFunc
	module handler.Module
	err    error
}

func (p *program) current(info fs.FileInfo) bool {
	return p.modTime.Equal(info.ModTime()) && p.size == info.Size()
}

// Loader resolves handlers from the files under one directory
type Loader struct {
	dir    string
	logger *zap.Logger

	mu       sync.RWMutex
	programs map[string]*program
	group    singleflight.Group
}

// NewLoader creates a loader for dir. The directory does not need to exist.
func NewLoader(dir string, logger *zap.Logger) *Loader {
	return &Loader{
		dir:      dir,
		logger:   logger.Named("script"),
		programs: make(map[string]*program),
	}
}

// Dir returns the directory handlers are loaded from
func (l *Loader) Dir() string {
	return l.dir
}

// LookupSSR implements handler.SSRSource
func (l *Loader) LookupSSR(name string) (handler.SSRFunc, error) {
	p, err := l.load(name)
	if err != nil {
		return nil, err
	}
	if p.ssr == nil {
		return nil, fmt.Errorf("%s does not define %s: %w", name, SSRSymbol, handler.ErrNotFound)
	}
	return p.ssr, nil
}

// LookupModule implements handler.APISource
func (l *Loader) LookupModule(path string) (handler.Module, error) {
	p, err := l.load(path)
	if err != nil {
		return nil, err
	}
	module := make(handler.Module, len(p.module))
	for method, fn := range p.module {
		module[method] = fn
	}
	return module, nil
}

// load returns the interpreted program for name, using the cache while the file is unchanged
func (l *Loader) load(name string) (*program, error) {
	file, err := safepath.Join(l.dir, name+Extension)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, handler.ErrNotFound)
	}

	info, err := os.Stat(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, fmt.Errorf("%q: %w", name, handler.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat handler %s: %w", file, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q: %w", name, handler.ErrNotFound)
	}

	l.mu.RLock()
	cached, ok := l.programs[file]
	l.mu.RUnlock()
	if ok && cached.current(info) {
		return cached, cached.err
	}

	v, _, _ := l.group.Do(file, func() (interface{}, error) {
		p := l.interpret(file, info)

		l.mu.Lock()
		l.programs[file] = p
		l.mu.Unlock()
		return p, nil
	})
	p := v.(*program)
	return p, p.err
}

// interpret evaluates file in a fresh interpreter and extracts its handlers.
// Failures are recorded on the program so a broken file is not re-evaluated
// until it changes.
func (l *Loader) interpret(file string, info fs.FileInfo) *program {
	p := &program{modTime: info.ModTime(), size: info.Size()}

	src, err := os.ReadFile(file)
	if err != nil {
		p.err = fmt.Errorf("failed to read handler %s: %w", file, err)
		return p
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		p.err = fmt.Errorf("failed to load stdlib symbols: %w", err)
		return p
	}
	if err := i.Use(Symbols); err != nil {
		p.err = fmt.Errorf("failed to load handler symbols: %w", err)
		return p
	}

	if _, err := i.Eval(string(src)); err != nil {
		p.err = fmt.Errorf("failed to evaluate handler %s: %w", file, err)
		l.logger.Warn("Handler script failed to evaluate", zap.String("file", file), zap.Error(err))
		return p
	}

	if fn, ok, err := lookupFunc(i, SSRSymbol); err != nil {
		p.err = fmt.Errorf("handler %s: %w", file, err)
		return p
	} else if ok {
		p.ssr = fn
	}

	p.module = make(handler.Module)
	for _, method := range handler.Methods {
		fn, ok, err := lookupFunc(i, method)
		if err != nil {
			p.err = fmt.Errorf("handler %s: %w", file, err)
			return p
		}
		if ok {
			p.module[method] = fn
		}
	}

	l.logger.Debug("Loaded handler script",
		zap.String("file", file),
		zap.Bool("ssr", p.ssr != nil),
		zap.Strings("methods", p.module.Allowed()),
	)
	return p
}

// lookupFunc returns main.<symbol>. A symbol that is not defined is reported
// with ok=false; a symbol with the wrong type is an error.
func lookupFunc(i *interp.Interpreter, symbol string) (handlerFunc, bool, error) {
	v, err := i.Eval("main." + symbol)
	if err != nil || !v.IsValid() {
		return nil, false, nil
	}
	fn, ok := v.Interface().(handlerFunc)
	if !ok {
		return nil, false, fmt.Errorf("%s has type %s, want func(*handler.Exchange) (string, error)", symbol, v.Type())
	}
	return fn, true, nil
}

// Invalidate drops every cached program
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs = make(map[string]*program)
}
