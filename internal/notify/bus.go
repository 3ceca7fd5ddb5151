package notify

import (
	"reflect"
	"slices"

	"github.com/afroash/roomsim/internal/models"
)

// Listener receives sensor events.
// Listeners are identified with ==; a listener whose dynamic type is not
// comparable (e.g. a struct value holding a slice) cannot be registered.
type Listener interface {
	Notify(event models.Event)
}

// Bus fans one event out to every registered listener, in registration order.
// The zero value is ready to use. Bus is not safe for concurrent use.
type Bus struct {
	listeners []Listener
}

// Register adds a listener. Registering the same listener twice has no effect.
// Returns true if the listener was added, false for nil, duplicate or
// non-comparable listeners.
func (b *Bus) Register(l Listener) bool {
	if !Comparable(l) || b.has(l) {
		return false
	}
	b.listeners = append(b.listeners, l)
	return true
}

// Unregister removes a listener. Returns false if it was not registered.
func (b *Bus) Unregister(l Listener) bool {
	if !Comparable(l) {
		return false
	}
	i := slices.Index(b.listeners, l)
	if i < 0 {
		return false
	}
	b.listeners = slices.Delete(b.listeners, i, i+1)
	return true
}

// Notify calls every listener registered at the time of the call.
// Listeners run synchronously; a listener that mutates shared state is seen
// by the listeners after it.
func (b *Bus) Notify(event models.Event) {
	for _, l := range slices.Clone(b.listeners) {
		l.Notify(event)
	}
}

// Len returns the number of registered listeners
func (b *Bus) Len() int {
	return len(b.listeners)
}

// Comparable reports whether l is non-nil and can be compared with ==
func Comparable(l Listener) bool {
	return l != nil && reflect.TypeOf(l).Comparable()
}

func (b *Bus) has(l Listener) bool {
	return slices.Contains(b.listeners, l)
}
