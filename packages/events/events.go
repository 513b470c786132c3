// Package events defines the lifecycle events of a request object and the
// dispatch target that delivers them.
package events

import "fmt"

// Kind is a lifecycle event type.
type Kind int

const (
	ReadyStateChange Kind = iota
	LoadStart
	Load
	Error
	Abort
	LoadEnd
	kindCount
)

func (k Kind) String() string {
	switch k {
	case ReadyStateChange:
		return "readystatechange"
	case LoadStart:
		return "loadstart"
	case Load:
		return "load"
	case Error:
		return "error"
	case Abort:
		return "abort"
	case LoadEnd:
		return "loadend"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps an event name to its kind.
func ParseKind(name string) (Kind, error) {
	for k := Kind(0); k < kindCount; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event %q", name)
}

// Event is passed to handlers.
type Event struct {
	Kind Kind
}

// Type returns the DOM event name.
func (e Event) Type() string {
	return e.Kind.String()
}

// Handler receives an event.
type Handler func(Event)

// ListenerID identifies an added listener for removal.
type ListenerID uint64

type listener struct {
	id ListenerID
	fn Handler
}

// Target holds one handler slot plus an ordered listener list per kind.
// It is not safe for concurrent use; request objects only touch it from
// their event loop.
type Target struct {
	slots     [kindCount]Handler
	listeners [kindCount][]listener
	nextID    ListenerID
}

// On sets the single-slot handler for k. A nil handler clears it.
func (t *Target) On(k Kind, h Handler) {
	if !k.valid() {
		return
	}
	t.slots[k] = h
}

// AddEventListener appends h to the listeners of k. Duplicates are allowed.
func (t *Target) AddEventListener(k Kind, h Handler) ListenerID {
	if !k.valid() || h == nil {
		return 0
	}
	t.nextID++
	t.listeners[k] = append(t.listeners[k], listener{id: t.nextID, fn: h})
	return t.nextID
}

// RemoveEventListener removes the listener with the given id.
func (t *Target) RemoveEventListener(k Kind, id ListenerID) {
	if !k.valid() {
		return
	}
	ls := t.listeners[k]
	for i, l := range ls {
		if l.id == id {
			t.listeners[k] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// Handlers returns the handlers for k in dispatch order: the slot handler
// first, then listeners in insertion order.
func (t *Target) Handlers(k Kind) []Handler {
	if !k.valid() {
		return nil
	}
	out := make([]Handler, 0, len(t.listeners[k])+1)
	if t.slots[k] != nil {
		out = append(out, t.slots[k])
	}
	for _, l := range t.listeners[k] {
		out = append(out, l.fn)
	}
	return out
}

// Dispatch invokes every handler of k through run. run decides whether the
// call happens inline or on a later turn.
func (t *Target) Dispatch(k Kind, run func(func())) {
	ev := Event{Kind: k}
	for _, h := range t.Handlers(k) {
		h := h
		run(func() { h(ev) })
	}
}

// Inline runs f immediately.
func Inline(f func()) {
	f()
}

func (k Kind) valid() bool {
	return k >= 0 && k < kindCount
}
