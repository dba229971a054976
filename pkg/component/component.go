package component

import (
	"fmt"
	"sync/atomic"

	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/value"
)

// Component is a node of the server-side UI tree.
//
// Implementations embed Base (directly or through ContainerBase) and call
// Init from their constructor. The unexported methods keep the parent
// back-reference under the control of containers.
type Component interface {
	ID() string
	Tag() string
	Parent() Container

	Caption() string
	SetCaption(caption string)
	IsEnabled() bool
	SetEnabled(enabled bool)
	IsReadOnly() bool
	SetReadOnly(readOnly bool)
	IsVisible() bool
	SetVisible(visible bool)

	// MarkDirty records that the component diverges from the state last
	// sent to the client. It is idempotent.
	MarkDirty()
	IsDirty() bool

	// MarkClean records that the current state has been transmitted. It is
	// called by the synchronization pass.
	MarkClean()

	// MarkUnsent forgets that the client knows this component, forcing a
	// full paint on the next pass.
	MarkUnsent()

	IsAttached() bool
	Attach()
	Detach()
	State() State

	// Paint writes a complete description of the component to t.
	Paint(t paint.Target) error

	// ApplyVariable applies one inbound variable. Unknown names are
	// ignored. Invalid values are clamped or rejected with an error
	// wrapping ErrInvalidValue; a rejected value leaves the component
	// unchanged.
	ApplyVariable(name string, v value.Value) (changed bool, err error)

	Listeners() *Listeners

	base() *Base
}

// ContentPainter is implemented by components that write attributes,
// variables or children beyond the common ones.
type ContentPainter interface {
	PaintContent(t paint.Target) error
}

// State is the paint lifecycle of a component.
type State uint8

const (
	StateUnattached    State = iota // never part of a live hierarchy
	StateAttachedDirty              // live, diverges from the client
	StateAttachedClean              // live, matches the last transmitted state
	StateDetached                   // removed from a live hierarchy
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateAttachedDirty:
		return "attached-dirty"
	case StateAttachedClean:
		return "attached-clean"
	case StateDetached:
		return "detached"
	default:
		return "unknown"
	}
}

var idCounter atomic.Uint64

// NextID returns a new process-unique component identity ("c1", "c2", ...).
func NextID() string {
	return fmt.Sprintf("c%d", idCounter.Add(1))
}

// Base implements the common part of Component.
type Base struct {
	self   Component
	id     string
	tag    string
	parent Container

	caption     string
	description string
	style       string
	width       paint.Size
	height      paint.Size
	disabled    bool
	readOnly    bool
	hidden      bool

	dirty       bool
	painted     bool
	attached    bool
	wasAttached bool
	listeners   Listeners
	initialized bool
}

// Init binds b to the component embedding it. It must be called once from
// the constructor of every component type.
func (b *Base) Init(self Component, tag string) {
	if b.initialized {
		panic("component: Init called twice")
	}
	if self == nil || self.base() != b {
		panic("component: Init must receive the component embedding this Base")
	}
	b.self = self
	b.id = NextID()
	b.tag = tag
	b.width = paint.Unset
	b.height = paint.Unset
	b.dirty = true
	b.initialized = true
}

func (b *Base) base() *Base { return b }

// ID returns the identity of the component.
func (b *Base) ID() string { return b.id }

// Tag returns the rendering kind of the component.
func (b *Base) Tag() string { return b.tag }

// Parent returns the container holding the component, or nil.
func (b *Base) Parent() Container { return b.parent }

// Caption returns the caption.
func (b *Base) Caption() string { return b.caption }

// SetCaption sets the caption.
func (b *Base) SetCaption(caption string) {
	if b.caption == caption {
		return
	}
	b.caption = caption
	b.self.MarkDirty()
}

// Description returns the tooltip text.
func (b *Base) Description() string { return b.description }

// SetDescription sets the tooltip text.
func (b *Base) SetDescription(description string) {
	if b.description == description {
		return
	}
	b.description = description
	b.self.MarkDirty()
}

// StyleName returns the style name.
func (b *Base) StyleName() string { return b.style }

// SetStyleName sets the style name.
func (b *Base) SetStyleName(style string) {
	if b.style == style {
		return
	}
	b.style = style
	b.self.MarkDirty()
}

// Width returns the width, paint.Unset by default.
func (b *Base) Width() paint.Size { return b.width }

// SetWidth sets the width.
func (b *Base) SetWidth(s paint.Size) {
	if b.width == s {
		return
	}
	b.width = s
	b.self.MarkDirty()
}

// Height returns the height, paint.Unset by default.
func (b *Base) Height() paint.Size { return b.height }

// SetHeight sets the height.
func (b *Base) SetHeight(s paint.Size) {
	if b.height == s {
		return
	}
	b.height = s
	b.self.MarkDirty()
}

// IsEnabled reports whether the component accepts user input.
func (b *Base) IsEnabled() bool { return !b.disabled }

// SetEnabled enables or disables the component.
func (b *Base) SetEnabled(enabled bool) {
	if b.disabled == !enabled {
		return
	}
	b.disabled = !enabled
	b.self.MarkDirty()
}

// IsReadOnly reports whether inbound changes are refused.
func (b *Base) IsReadOnly() bool { return b.readOnly }

// SetReadOnly sets the read-only flag.
func (b *Base) SetReadOnly(readOnly bool) {
	if b.readOnly == readOnly {
		return
	}
	b.readOnly = readOnly
	b.self.MarkDirty()
}

// IsVisible reports whether the component is rendered.
func (b *Base) IsVisible() bool { return !b.hidden }

// SetVisible shows or hides the component.
func (b *Base) SetVisible(visible bool) {
	if b.hidden == !visible {
		return
	}
	b.hidden = !visible
	b.self.MarkDirty()
}

// MarkDirty implements Component.
func (b *Base) MarkDirty() {
	b.dirty = true
	if !b.attached {
		return
	}
	if h := HierarchyOf(b.self); h != nil {
		h.RequestRepaint(b.self)
	}
}

// IsDirty reports whether the component changed since the last pass.
func (b *Base) IsDirty() bool { return b.dirty }

// MarkClean implements Component.
func (b *Base) MarkClean() {
	b.dirty = false
	b.painted = true
}

// MarkUnsent implements Component.
func (b *Base) MarkUnsent() {
	b.painted = false
	b.dirty = true
}

// IsAttached reports whether the component is part of a live hierarchy.
func (b *Base) IsAttached() bool { return b.attached }

// Attach is called when the component enters a live hierarchy. It
// registers the component with the hierarchy root. Repeated calls are
// no-ops.
func (b *Base) Attach() {
	if b.attached {
		return
	}
	b.attached = true
	b.wasAttached = true
	if h := HierarchyOf(b.self); h != nil {
		h.Register(b.self)
	}
}

// Detach is called when the component leaves a live hierarchy. The
// component forgets its client state so that re-adding it paints it in full.
func (b *Base) Detach() {
	if !b.attached {
		return
	}
	if h := HierarchyOf(b.self); h != nil {
		h.Unregister(b.self)
	}
	b.attached = false
	b.dirty = true
	b.painted = false
}

// State returns the paint lifecycle state.
func (b *Base) State() State {
	switch {
	case b.attached && b.painted && !b.dirty:
		return StateAttachedClean
	case b.attached:
		return StateAttachedDirty
	case b.wasAttached:
		return StateDetached
	default:
		return StateUnattached
	}
}

// Listeners returns the event registry of the component.
func (b *Base) Listeners() *Listeners { return &b.listeners }

// Fire dispatches an event with the component as source.
func (b *Base) Fire(kind EventKind, payload any) {
	b.listeners.Fire(Event{Kind: kind, Source: b.self, Payload: payload})
}

// ApplyVariable implements Component. Components without variables ignore
// every inbound change.
func (b *Base) ApplyVariable(string, value.Value) (bool, error) {
	return false, nil
}

// Paint implements Component. It writes the common attributes and then
// delegates to PaintContent when the component implements ContentPainter.
// A component the client already knows, and that has not changed, is
// written as a reference.
func (b *Base) Paint(t paint.Target) error {
	if t.StartComponent(b.id, b.tag, b.painted && !b.dirty) {
		t.EndTag()
		return nil
	}

	t.AddAttribute("caption", optString(b.caption))
	t.AddAttribute("description", optString(b.description))
	t.AddAttribute("style", optString(b.style))
	paint.AddSize(t, "width", b.width)
	paint.AddSize(t, "height", b.height)
	t.AddAttribute("disabled", optTrue(b.disabled))
	t.AddAttribute("readonly", optTrue(b.readOnly))

	if b.hidden {
		t.AddAttribute("invisible", value.Bool(true))
		t.EndTag()
		return nil
	}

	if cp, ok := b.self.(ContentPainter); ok {
		if err := cp.PaintContent(t); err != nil {
			t.EndTag()
			return fmt.Errorf("component: paint %s (%s): %w", b.id, b.tag, err)
		}
	}
	t.EndTag()
	return nil
}

// String implements fmt.Stringer.
func (b *Base) String() string {
	return b.tag + "#" + b.id
}

func optString(s string) value.Value {
	if s == "" {
		return value.Null()
	}
	return value.String(s)
}

func optTrue(b bool) value.Value {
	if !b {
		return value.Null()
	}
	return value.Bool(true)
}
