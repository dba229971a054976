package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a reference names no content.
	ErrNotFound = errors.New("resource: not found")

	// ErrBadRef is returned for references not of the form "res/<id>/<name>".
	ErrBadRef = errors.New("resource: malformed reference")
)

const refPrefix = "res/"

// Meta describes opened content.
type Meta struct {
	ContentType string
	Size        int64 // -1 when unknown
	ModTime     time.Time
}

// Source opens named content.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, Meta, error)
}

// Ref builds the reference of name in the source registered as id.
func Ref(id, name string) string {
	return refPrefix + id + "/" + name
}

// ParseRef splits a reference into source id and content name.
func ParseRef(ref string) (id, name string, err error) {
	rest, ok := strings.CutPrefix(ref, refPrefix)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	id, name, ok = strings.Cut(rest, "/")
	if !ok || id == "" || name == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	return id, name, nil
}

// Registry maps source ids to sources. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	nextID  uint64
	sources map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds src and returns its id.
func (r *Registry) Register(src Source) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("s%d", r.nextID)
	r.sources[id] = src
	return id
}

// RegisterAs adds src under a fixed id, replacing any source registered
// under it.
func (r *Registry) RegisterAs(id string, src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[id] = src
}

// Unregister removes the source registered as id.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, id)
}

// Source returns the source registered as id.
func (r *Registry) Source(id string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[id]
	return src, ok
}

// Open resolves ref and opens its content.
func (r *Registry) Open(ctx context.Context, ref string) (io.ReadCloser, Meta, error) {
	id, name, err := ParseRef(ref)
	if err != nil {
		return nil, Meta{}, err
	}
	src, ok := r.Source(id)
	if !ok {
		return nil, Meta{}, fmt.Errorf("%w: source %s", ErrNotFound, id)
	}
	return src.Open(ctx, name)
}
