package design

// Event is a multicast notification with one argument. Listeners run
// synchronously, in registration order, on the goroutine that fires it.
type Event[T any] struct {
	listeners []func(T)
}

// AddListener registers fn. A nil fn is ignored.
func (e *Event[T]) AddListener(fn func(T)) {
	if fn == nil {
		return
	}
	e.listeners = append(e.listeners, fn)
}

func (e *Event[T]) RemoveAllListeners() {
	e.listeners = nil
}

func (e *Event[T]) Invoke(arg T) {
	for _, fn := range e.listeners {
		fn(arg)
	}
}

func (e *Event[T]) ListenerCount() int {
	return len(e.listeners)
}
