// Package store holds the Markdown source shared by the native caller and the
// bridge.
package store

import "sync"

// Binding is a read-write view of the Markdown source. The bridge writes it
// when the document reports an edit and reads it on every configuration pass.
type Binding interface {
	Get() string
	Set(text string)
}

// Observable is implemented by bindings that announce effective writes.
type Observable interface {
	Observe(fn func(text string)) (cancel func())
}

// Value is an in-memory Binding safe for use from several goroutines.
// Setting an equal value is a no-op and notifies nobody.
type Value struct {
	mu        sync.Mutex
	text      string
	nextID    int
	observers map[int]func(string)
}

var (
	_ Binding    = (*Value)(nil)
	_ Observable = (*Value)(nil)
)

// NewValue returns a Value holding text.
func NewValue(text string) *Value {
	return &Value{text: text, observers: make(map[int]func(string))}
}

func (v *Value) Get() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text
}

// Set stores text and notifies observers outside the lock.
func (v *Value) Set(text string) {
	v.mu.Lock()
	if v.text == text {
		v.mu.Unlock()
		return
	}
	v.text = text
	fns := make([]func(string), 0, len(v.observers))
	for _, fn := range v.observers {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(text)
	}
}

// Observe registers fn for every effective write. The returned func
// unregisters it and may be called more than once.
func (v *Value) Observe(fn func(text string)) (cancel func()) {
	v.mu.Lock()
	if v.observers == nil {
		v.observers = make(map[int]func(string))
	}
	id := v.nextID
	v.nextID++
	v.observers[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.observers, id)
		v.mu.Unlock()
	}
}
