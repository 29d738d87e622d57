// Package session holds the per-user state containers that sit between the
// pure calculators and the RPC layer: a bill split session and a calendar.
//
// A session is owned by one caller and is not safe for concurrent use.
// Every mutation recomputes derived state and notifies subscribers with an
// immutable snapshot.
package session

// observers is a list of change listeners.
type observers[T any] struct {
	nextID    int
	listeners map[int]func(T)
	order     []int
}

// subscribe registers fn and returns a function that removes it.
func (o *observers[T]) subscribe(fn func(T)) func() {
	if o.listeners == nil {
		o.listeners = make(map[int]func(T))
	}
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.order = append(o.order, id)

	return func() {
		if _, ok := o.listeners[id]; !ok {
			return
		}
		delete(o.listeners, id)
		for i, v := range o.order {
			if v == id {
				o.order = append(o.order[:i], o.order[i+1:]...)
				break
			}
		}
	}
}

// notify calls every listener in subscription order. Each listener gets its
// own value from build, so one listener cannot change what the next sees.
func (o *observers[T]) notify(build func() T) {
	for _, id := range append([]int(nil), o.order...) {
		if fn, ok := o.listeners[id]; ok {
			fn(build())
		}
	}
}
