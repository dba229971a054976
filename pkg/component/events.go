package component

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/tessera/pkg/value"
)

// EventKind identifies a domain event.
type EventKind uint8

const (
	EventComponentAttach EventKind = iota + 1 // payload: attached child
	EventComponentDetach                      // payload: detached child
	EventValueChange                          // payload: new value.Value
	EventClick                                // payload: nil
	EventSplitterMove                         // payload: new position (paint.Size)
	EventRepaintRequest                       // payload: nil
	eventKindEnd
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventComponentAttach:
		return "ComponentAttach"
	case EventComponentDetach:
		return "ComponentDetach"
	case EventValueChange:
		return "ValueChange"
	case EventClick:
		return "Click"
	case EventSplitterMove:
		return "SplitterMove"
	case EventRepaintRequest:
		return "RepaintRequest"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the defined kinds.
func (k EventKind) Valid() bool {
	return k > 0 && k < eventKindEnd
}

// Event is an immutable record of something that happened to Source.
type Event struct {
	Kind    EventKind
	Source  Component
	Payload any
}

// Listener receives events.
type Listener func(Event)

type subscription struct {
	id      uint64
	fn      Listener
	removed atomic.Bool
}

// Listeners is the per-component listener registry. The zero value is ready
// to use.
//
// Fire dispatches synchronously, in subscription order, over a snapshot of
// the registry taken when Fire is called. Listeners subscribed during
// dispatch are not called in that pass, and listeners removed during
// dispatch are skipped for the rest of it. Listeners may fire further events
// without deadlocking. Event cycles in application logic are the caller's
// responsibility.
type Listeners struct {
	mu     sync.Mutex
	nextID uint64
	byKind map[EventKind][]*subscription
}

// Subscribe registers fn for events of the given kind and returns a function
// that removes it. The returned function is idempotent.
//
// Subscribing a nil listener or an undefined kind is a programming error and
// panics.
func (l *Listeners) Subscribe(kind EventKind, fn Listener) (unsubscribe func()) {
	if fn == nil {
		panic(fmt.Sprintf("component: nil listener for %s", kind))
	}
	if !kind.Valid() {
		panic(fmt.Sprintf("component: cannot subscribe to undefined %s", kind))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byKind == nil {
		l.byKind = make(map[EventKind][]*subscription)
	}
	l.nextID++
	id := l.nextID
	l.byKind[kind] = append(l.byKind[kind], &subscription{id: id, fn: fn})

	return func() { l.remove(kind, id) }
}

func (l *Listeners) remove(kind EventKind, id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	subs := l.byKind[kind]
	for i, s := range subs {
		if s.id == id {
			s.removed.Store(true)
			l.byKind[kind] = slices.Delete(slices.Clone(subs), i, i+1)
			return
		}
	}
}

// Count returns the number of listeners registered for kind.
func (l *Listeners) Count(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKind[kind])
}

// Fire dispatches e to the listeners registered for e.Kind.
func (l *Listeners) Fire(e Event) {
	l.mu.Lock()
	subs := l.byKind[e.Kind]
	l.mu.Unlock()

	// subs is never mutated in place (remove clones), so ranging over it
	// outside the lock sees a stable snapshot.
	for _, s := range subs {
		if s.removed.Load() {
			continue
		}
		s.fn(e)
	}
}

// OnValueChange subscribes fn to value changes of c.
func OnValueChange(c Component, fn func(source Component, v value.Value)) (unsubscribe func()) {
	if fn == nil {
		panic("component: nil value change listener")
	}
	return c.Listeners().Subscribe(EventValueChange, func(e Event) {
		v, _ := e.Payload.(value.Value)
		fn(e.Source, v)
	})
}

// OnClick subscribes fn to clicks on c.
func OnClick(c Component, fn func(source Component)) (unsubscribe func()) {
	if fn == nil {
		panic("component: nil click listener")
	}
	return c.Listeners().Subscribe(EventClick, func(e Event) {
		fn(e.Source)
	})
}

// OnAttach subscribes fn to children being added to container c.
func OnAttach(c Container, fn func(container Container, child Component)) (unsubscribe func()) {
	if fn == nil {
		panic("component: nil attach listener")
	}
	return c.Listeners().Subscribe(EventComponentAttach, func(e Event) {
		child, _ := e.Payload.(Component)
		fn(c, child)
	})
}

// OnDetach subscribes fn to children being removed from container c.
func OnDetach(c Container, fn func(container Container, child Component)) (unsubscribe func()) {
	if fn == nil {
		panic("component: nil detach listener")
	}
	return c.Listeners().Subscribe(EventComponentDetach, func(e Event) {
		child, _ := e.Payload.(Component)
		fn(c, child)
	})
}
