package tmpl

import "sync"

// Engine caches parsed templates by name and source so repeated renders of
// the same text skip parsing.
type Engine struct {
	cache map[cacheKey]*Template
	mu    sync.RWMutex
}

type cacheKey struct {
	name string
	text string
}

// NewEngine creates an engine with an empty cache.
func NewEngine() *Engine {
	return &Engine{cache: make(map[cacheKey]*Template)}
}

// Parse returns the cached parse tree for text, parsing it on first use.
// Malformed templates are not cached.
func (e *Engine) Parse(name, text string) (*Template, error) {
	key := cacheKey{name: name, text: text}

	e.mu.RLock()
	if t, ok := e.cache[key]; ok {
		e.mu.RUnlock()
		return t, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Another goroutine may have parsed it while we waited.
	if t, ok := e.cache[key]; ok {
		return t, nil
	}

	t, err := Parse(name, text)
	if err != nil {
		return nil, err
	}
	e.cache[key] = t
	return t, nil
}

// Render renders text against ctx using the cached parse tree.
func (e *Engine) Render(name, text string, ctx Context) (string, error) {
	t, err := e.Parse(name, text)
	if err != nil {
		return "", err
	}
	return t.Execute(ctx)
}

// Validate reports structural errors in text without rendering it.
func (e *Engine) Validate(name, text string) error {
	_, err := e.Parse(name, text)
	return err
}

// Len returns the number of cached templates.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// ClearCache drops every cached template.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[cacheKey]*Template)
}
