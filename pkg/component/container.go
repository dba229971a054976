package component

import (
	"iter"
	"slices"

	"github.com/vango-dev/tessera/pkg/paint"
)

// Container is a component owning an ordered collection of children.
//
// The container is the only party that changes a child's parent reference,
// which keeps child.Parent() and the container's collection consistent.
type Container interface {
	Component

	// AddComponent adds c. A component owned by another container is removed
	// from it first.
	AddComponent(c Component) error

	// RemoveComponent removes c when it is a direct child; otherwise it does
	// nothing.
	RemoveComponent(c Component)

	// ReplaceComponent puts nu in the place of old, keeping old's position
	// and slot metadata.
	ReplaceComponent(old, nu Component) error

	// Components returns a lazy, restartable sequence over the children in
	// container order. Mutating the container while ranging over it leaves
	// the rest of that iteration unspecified; use Snapshot for a stable copy.
	Components() iter.Seq[Component]

	// Snapshot returns a copy of the children in container order.
	Snapshot() []Component

	ComponentCount() int
	IndexOf(c Component) int
}

// Slot is placement metadata a container associates with a child: a named
// location, a coordinate, a pane. Slots must be comparable. A nil slot means
// plain positional placement.
type Slot any

type entry struct {
	child Component
	slot  Slot
}

// ContainerBase implements Container over an ordered list of children with
// optional slot metadata. Concrete containers embed it, call Init and may
// override AddComponent to choose slots.
type ContainerBase struct {
	Base
	entries []entry
	limit   int
}

func (cb *ContainerBase) container() Container {
	return cb.self.(Container)
}

// SetLimit sets the maximum number of children; 0 means unbounded.
func (cb *ContainerBase) SetLimit(n int) {
	cb.limit = n
}

// Limit returns the maximum number of children; 0 means unbounded.
func (cb *ContainerBase) Limit() int {
	return cb.limit
}

// AddComponent implements Container by appending c without slot metadata.
func (cb *ContainerBase) AddComponent(c Component) error {
	return cb.InsertComponent(c, -1, nil)
}

// InsertComponent adds c at index (appending when index is negative or past
// the end) with the given slot metadata. If c is already a child it is moved
// without attach or detach events, keeping its slot when slot is nil.
func (cb *ContainerBase) InsertComponent(c Component, index int, slot Slot) error {
	if c == nil {
		return ErrNilComponent
	}
	self := cb.container()
	if c == Component(self) || IsAncestor(c, self) {
		return ErrCycle
	}

	if i := cb.IndexOf(c); i >= 0 {
		if slot == nil {
			slot = cb.entries[i].slot
		}
		cb.entries = slices.Delete(cb.entries, i, i+1)
		cb.insertEntry(index, entry{child: c, slot: slot})
		cb.self.MarkDirty()
		return nil
	}

	if cb.limit > 0 && len(cb.entries) >= cb.limit {
		return ErrContainerFull
	}

	if prev := c.Parent(); prev != nil {
		prev.RemoveComponent(c)
	}

	cb.insertEntry(index, entry{child: c, slot: slot})
	cb.adopt(c)
	cb.self.MarkDirty()
	return nil
}

func (cb *ContainerBase) insertEntry(index int, e entry) {
	if index < 0 || index > len(cb.entries) {
		cb.entries = append(cb.entries, e)
		return
	}
	cb.entries = slices.Insert(cb.entries, index, e)
}

// adopt links c to this container and fires the attach event. The entry must
// already be in place.
func (cb *ContainerBase) adopt(c Component) {
	c.base().setParent(cb.container())
	cb.Fire(EventComponentAttach, c)
}

// release unlinks c and fires the detach event. The entry must already be
// gone.
func (cb *ContainerBase) release(c Component) {
	c.base().setParent(nil)
	cb.Fire(EventComponentDetach, c)
}

// RemoveComponent implements Container.
func (cb *ContainerBase) RemoveComponent(c Component) {
	if c == nil || c.Parent() != cb.container() {
		return
	}
	if i := cb.IndexOf(c); i >= 0 {
		cb.entries = slices.Delete(cb.entries, i, i+1)
	}
	cb.release(c)
	cb.self.MarkDirty()
}

// ReplaceComponent implements Container.
//
// Replacing a component with itself does nothing. When nu is already a child
// of this container the two children swap positions and slots, with no
// attach or detach events. Otherwise nu is taken from its previous owner,
// inherits old's position and slot, and then old's detach and nu's attach
// events fire.
func (cb *ContainerBase) ReplaceComponent(old, nu Component) error {
	if old == nil || nu == nil {
		return ErrNilComponent
	}
	if old == nu {
		return nil
	}
	self := cb.container()
	oi := cb.IndexOf(old)
	if oi < 0 {
		return ErrNotChild
	}
	if nu == Component(self) || IsAncestor(nu, self) {
		return ErrCycle
	}

	if ni := cb.IndexOf(nu); ni >= 0 {
		cb.entries[oi].child, cb.entries[ni].child = nu, old
		cb.self.MarkDirty()
		return nil
	}

	if prev := nu.Parent(); prev != nil {
		prev.RemoveComponent(nu)
	}
	// nu may have been nested inside old; old's position is unaffected.
	cb.entries[oi].child = nu
	cb.release(old)
	cb.adopt(nu)
	cb.self.MarkDirty()
	return nil
}

// Components implements Container.
func (cb *ContainerBase) Components() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		for i := 0; i < len(cb.entries); i++ {
			if !yield(cb.entries[i].child) {
				return
			}
		}
	}
}

// Snapshot implements Container.
func (cb *ContainerBase) Snapshot() []Component {
	out := make([]Component, len(cb.entries))
	for i, e := range cb.entries {
		out[i] = e.child
	}
	return out
}

// ComponentCount implements Container.
func (cb *ContainerBase) ComponentCount() int {
	return len(cb.entries)
}

// IndexOf implements Container. It returns -1 when c is not a child.
func (cb *ContainerBase) IndexOf(c Component) int {
	for i, e := range cb.entries {
		if e.child == c {
			return i
		}
	}
	return -1
}

// ComponentAt returns the child at index, or nil.
func (cb *ContainerBase) ComponentAt(index int) Component {
	if index < 0 || index >= len(cb.entries) {
		return nil
	}
	return cb.entries[index].child
}

// SlotOf returns the slot metadata of child c.
func (cb *ContainerBase) SlotOf(c Component) (Slot, bool) {
	if i := cb.IndexOf(c); i >= 0 {
		return cb.entries[i].slot, true
	}
	return nil, false
}

// ComponentIn returns the child placed in slot, or nil.
func (cb *ContainerBase) ComponentIn(slot Slot) Component {
	if slot == nil {
		return nil
	}
	for _, e := range cb.entries {
		if e.slot == slot {
			return e.child
		}
	}
	return nil
}

// SetSlot changes the slot metadata of child c without moving it.
func (cb *ContainerBase) SetSlot(c Component, slot Slot) error {
	i := cb.IndexOf(c)
	if i < 0 {
		return ErrNotChild
	}
	if cb.entries[i].slot == slot {
		return nil
	}
	cb.entries[i].slot = slot
	cb.self.MarkDirty()
	return nil
}

// RemoveAllComponents removes every child. The children are snapshotted
// first so that removal cannot skip entries.
func (cb *ContainerBase) RemoveAllComponents() {
	self := cb.container()
	for _, c := range cb.Snapshot() {
		self.RemoveComponent(c)
	}
}

// MoveComponentsFrom moves every child of src into this container, in src
// order. It stops at the first child this container refuses; that child and
// the ones after it stay in src.
func (cb *ContainerBase) MoveComponentsFrom(src Container) error {
	if src == nil {
		return ErrNilComponent
	}
	self := cb.container()
	for _, c := range src.Snapshot() {
		if err := self.AddComponent(c); err != nil {
			return err
		}
	}
	return nil
}

// Attach attaches the container and then its subtree.
func (cb *ContainerBase) Attach() {
	if cb.attached {
		return
	}
	cb.Base.Attach()
	for _, c := range cb.Snapshot() {
		c.Attach()
	}
}

// Detach detaches the subtree and then the container.
func (cb *ContainerBase) Detach() {
	if !cb.attached {
		return
	}
	for _, c := range cb.Snapshot() {
		c.Detach()
	}
	cb.Base.Detach()
}

// MarkUnsent forgets the client state of the container and its subtree.
func (cb *ContainerBase) MarkUnsent() {
	cb.Base.MarkUnsent()
	for _, c := range cb.entries {
		c.child.MarkUnsent()
	}
}

// PaintContent paints the children in order.
func (cb *ContainerBase) PaintContent(t paint.Target) error {
	return cb.PaintChildren(t, "", nil)
}

// PaintChildren paints every child in container order. When slotTag is not
// empty each child is wrapped in a block of that tag whose attributes are
// written by slotAttrs.
func (cb *ContainerBase) PaintChildren(t paint.Target, slotTag string, slotAttrs func(paint.Target, Slot)) error {
	for _, e := range cb.entries {
		if slotTag != "" {
			t.StartTag(slotTag)
			if slotAttrs != nil {
				slotAttrs(t, e.slot)
			}
		}
		err := e.child.Paint(t)
		if slotTag != "" {
			t.EndTag()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// setParent changes the parent reference and runs the attach/detach
// lifecycle when crossing a live-hierarchy boundary.
func (b *Base) setParent(p Container) {
	if b.parent == p {
		return
	}
	if b.parent != nil && b.attached {
		b.self.Detach()
	}
	b.parent = p
	if p != nil && p.IsAttached() {
		b.self.Attach()
	}
}
