package window

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// Batch holds inbound variable changes: component id, then variable name.
type Batch map[string]map[string]value.Value

// BatchResult summarizes an ApplyVariables call.
type BatchResult struct {
	Applied  int // components the batch reached
	Changed  int // components whose observable state changed
	Stale    int // ids not in the hierarchy
	Rejected int // variables refused by their component
	Panicked int // components whose listeners panicked
	Errors   []error
}

// ErrListenerPanic wraps a panic recovered while applying a variable change.
var ErrListenerPanic = errors.New("window: listener panicked")

// Window is the root of a live hierarchy.
type Window struct {
	component.ContainerBase
	title  string
	logger *slog.Logger
	notify func()

	mu    sync.Mutex
	index map[string]component.Component
	dirty map[string]component.Component
}

// Option configures a Window.
type Option func(*Window)

// WithLogger sets the logger. The window adds a window_id attribute.
func WithLogger(l *slog.Logger) Option {
	return func(w *Window) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRepaintNotify sets a function called whenever a component asks to be
// repainted. It runs inside the critical section and must not block or call
// back into the window.
func WithRepaintNotify(fn func()) Option {
	return func(w *Window) { w.notify = fn }
}

// WithTitle sets the initial title.
func WithTitle(title string) Option {
	return func(w *Window) { w.title = title }
}

// New creates an attached, empty window.
func New(opts ...Option) *Window {
	w := &Window{
		logger: slog.Default(),
		index:  make(map[string]component.Component),
		dirty:  make(map[string]component.Component),
	}
	w.Init(w, "window")
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("window_id", w.ID())
	w.Attach()
	w.dirty[w.ID()] = w
	return w
}

// Logger returns the window logger.
func (w *Window) Logger() *slog.Logger { return w.logger }

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// SetTitle changes the window title and schedules a repaint.
func (w *Window) SetTitle(title string) {
	if w.title == title {
		return
	}
	w.title = title
	w.MarkDirty()
}

// Register implements component.Hierarchy.
func (w *Window) Register(c component.Component) {
	w.index[c.ID()] = c
}

// Unregister implements component.Hierarchy.
func (w *Window) Unregister(c component.Component) {
	delete(w.index, c.ID())
	delete(w.dirty, c.ID())
}

// RequestRepaint implements component.Hierarchy.
func (w *Window) RequestRepaint(c component.Component) {
	w.dirty[c.ID()] = c
	if w.notify != nil {
		w.notify()
	}
}

// Lookup returns the attached component with the given id. Like every
// access to the tree it must run inside the critical section.
func (w *Window) Lookup(id string) (component.Component, bool) {
	c, ok := w.index[id]
	return c, ok
}

// Len returns the number of attached components, the window included.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.index)
}

// Pending returns the number of components waiting for the next pass.
func (w *Window) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirty)
}

// Do runs fn inside the critical section.
func (w *Window) Do(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}

// Sync paints every pending change and marks the painted components clean.
//
// A dirty component is skipped when it has a dirty ancestor, whose paint
// covers it, or an invisible one. Changes are emitted in document order.
// Components the client already knows and that did not change appear as
// references. A paint error of one component is returned after the rest of
// the pass has completed.
func (w *Window) Sync() (*paint.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sync()
}

// Resync forgets what the client knows and paints the whole window.
func (w *Window) Resync() (*paint.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.repaintAll()
	return w.sync()
}

// RepaintAll makes the next Sync paint the whole window.
func (w *Window) RepaintAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.repaintAll()
}

func (w *Window) repaintAll() {
	w.MarkUnsent()
	clear(w.dirty)
	w.dirty[w.ID()] = w
}

func (w *Window) sync() (*paint.Document, error) {
	roots := w.changeRoots()
	clear(w.dirty)

	t := paint.NewDocumentTarget(true)
	var errs []error
	for _, c := range roots {
		if err := c.Paint(t); err != nil {
			errs = append(errs, err)
		}
	}
	doc, err := t.Document()
	if err != nil {
		return nil, err
	}

	for _, n := range doc.Changes {
		w.markPainted(n)
	}

	w.logger.Debug("sync pass",
		"changes", len(doc.Changes),
		"nodes", doc.Count())
	return doc, errors.Join(errs...)
}

// changeRoots returns the pending components that must be painted on their
// own, in document order.
func (w *Window) changeRoots() []component.Component {
	roots := make([]component.Component, 0, len(w.dirty))
	for _, id := range slices.Sorted(maps.Keys(w.dirty)) {
		c := w.dirty[id]
		if !c.IsAttached() || coveredByAncestor(c) {
			continue
		}
		roots = append(roots, c)
	}
	paths := make(map[component.Component][]int, len(roots))
	for _, c := range roots {
		paths[c] = component.Path(c)
	}
	slices.SortStableFunc(roots, func(a, b component.Component) int {
		return slices.Compare(paths[a], paths[b])
	})
	return roots
}

func coveredByAncestor(c component.Component) bool {
	for p := c.Parent(); p != nil; p = p.Parent() {
		if p.IsDirty() || !p.IsVisible() {
			return true
		}
	}
	return false
}

// markPainted marks the components written in full under n as clean. The
// children of an invisible container were not written, so the client is
// assumed to have dropped them.
func (w *Window) markPainted(n *paint.Node) {
	if n.ID != "" && !n.Cached {
		if c, ok := w.index[n.ID]; ok {
			c.MarkClean()
			if _, hidden := n.Attr("invisible"); hidden {
				if cont, ok := c.(component.Container); ok {
					for child := range cont.Components() {
						child.MarkUnsent()
					}
				}
			}
		}
	}
	for _, child := range n.Children {
		w.markPainted(child)
	}
}

// ApplyVariables applies an inbound batch. Ids are visited in sorted order
// and each component receives its variables in name order. Unknown ids are
// counted as stale; rejected variables are counted, logged and skipped.
// Neither stops the batch.
func (w *Window) ApplyVariables(b Batch) BatchResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	var res BatchResult
	for _, id := range slices.Sorted(maps.Keys(b)) {
		// Looked up per id: listeners fired for earlier ids may have
		// removed this one.
		c, ok := w.index[id]
		if !ok {
			res.Stale++
			w.logger.Debug("stale variable change", "component_id", id)
			continue
		}
		res.Applied++
		changed, errs, panicked := w.changeVariables(c, b[id])
		if panicked {
			res.Panicked++
		}
		if changed {
			res.Changed++
		}
		for _, err := range errs {
			res.Rejected++
			w.logger.Debug("rejected variable", "component_id", id, "error", err)
		}
		res.Errors = append(res.Errors, errs...)
	}
	return res
}

// changeVariables applies vars to c. A panic raised by a listener is
// recovered and reported as a rejection; the changes made before the panic
// stay applied and the component is repainted so the client sees them.
func (w *Window) changeVariables(c component.Component, vars map[string]value.Value) (changed bool, errs []error, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("listener panic",
				"component_id", c.ID(),
				"panic", r,
				"stack", string(debug.Stack()))
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrListenerPanic, c.ID(), r))
			panicked = true
			c.MarkDirty()
		}
	}()
	changed, errs = component.ChangeVariables(c, vars)
	return changed, errs, false
}

// PaintContent implements component.ContentPainter.
func (w *Window) PaintContent(t paint.Target) error {
	if w.title != "" {
		t.AddAttribute("title", value.String(w.title))
	}
	return w.PaintChildren(t, "", nil)
}
