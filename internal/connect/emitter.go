package connect

import "slices"

// AnyEvent subscribes a listener to every event.
const AnyEvent = "*"

// ListenerID identifies a registered listener for Off.
type ListenerID uint64

type listener struct {
	id   ListenerID
	fn   func(Event)
	once bool
}

// emitter fans events out to listeners by event name. It is confined to
// the host and therefore unsynchronised.
type emitter struct {
	next      ListenerID
	listeners map[string][]listener
}

func newEmitter() *emitter {
	return &emitter{listeners: make(map[string][]listener)}
}

func (e *emitter) add(name string, fn func(Event), once bool) ListenerID {
	e.next++
	e.listeners[name] = append(e.listeners[name], listener{id: e.next, fn: fn, once: once})
	return e.next
}

func (e *emitter) remove(name string, id ListenerID) bool {
	ls := e.listeners[name]
	i := slices.IndexFunc(ls, func(l listener) bool { return l.id == id })
	if i < 0 {
		return false
	}
	e.listeners[name] = slices.Delete(ls, i, i+1)
	return true
}

func (e *emitter) clear() {
	clear(e.listeners)
}

// emit calls the listeners for ev.Event, then the AnyEvent listeners, in
// registration order. Once listeners are removed before they run.
func (e *emitter) emit(ev Event) {
	for _, name := range []string{ev.Event, AnyEvent} {
		ls := e.listeners[name]
		if len(ls) == 0 {
			continue
		}
		snapshot := slices.Clone(ls)
		e.listeners[name] = slices.DeleteFunc(ls, func(l listener) bool { return l.once })
		for _, l := range snapshot {
			l.fn(ev)
		}
	}
}

func (e *emitter) count(name string) int {
	return len(e.listeners[name])
}
