package cart

import "sync"

// Overlay tracks the open/closed state of the cart panel for a session. It is
// deliberately independent of cart contents: an empty cart can be open, a
// full cart closed.
type Overlay struct {
	mu       sync.Mutex
	open     bool
	onChange func(open bool)
}

// NewOverlay creates a closed overlay. The optional onChange hook fires after
// every state transition, outside the lock.
func NewOverlay(onChange func(open bool)) *Overlay {
	return &Overlay{onChange: onChange}
}

// Open shows the overlay.
func (o *Overlay) Open() { o.set(true) }

// Close hides the overlay.
func (o *Overlay) Close() { o.set(false) }

// Toggle flips the overlay state.
func (o *Overlay) Toggle() {
	o.mu.Lock()
	next := !o.open
	o.mu.Unlock()
	o.set(next)
}

// IsOpen reports the current visibility.
func (o *Overlay) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

func (o *Overlay) set(open bool) {
	o.mu.Lock()
	changed := o.open != open
	o.open = open
	hook := o.onChange
	o.mu.Unlock()
	if changed && hook != nil {
		hook(open)
	}
}
