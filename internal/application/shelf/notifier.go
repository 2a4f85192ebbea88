package shelf

import "sync"

type subscription struct {
	id uint64
	fn func()
}

// Notifier fans change signals out to the callbacks registered for a key.
// Signals carry no state; subscribers pull the current value themselves.
type Notifier struct {
	mu       sync.Mutex
	nextID   uint64
	subs     map[string][]subscription
	recorder Recorder
}

// NewNotifier creates an empty notifier. recorder may be nil.
func NewNotifier(recorder Recorder) *Notifier {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Notifier{subs: make(map[string][]subscription), recorder: recorder}
}

// Subscribe registers fn for key and returns a function that removes it.
// PRE: fn is non-nil
// POST: fn runs on every Notify(key) until unsubscribe is called; calling unsubscribe more than once is a no-op
func (n *Notifier) Subscribe(key string, fn func()) (unsubscribe func()) {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[key] = append(n.subs[key], subscription{id: id, fn: fn})
	n.mu.Unlock()
	n.recorder.SubscribersChanged(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.remove(key, id)
			n.recorder.SubscribersChanged(-1)
		})
	}
}

func (n *Notifier) remove(key string, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	list := n.subs[key]
	for i, s := range list {
		if s.id == id {
			next := append(list[:i:i], list[i+1:]...)
			if len(next) == 0 {
				delete(n.subs, key)
			} else {
				n.subs[key] = next
			}
			return
		}
	}
}

// Notify calls every callback registered for key at the time of the call,
// in registration order, on the calling goroutine.
// INVARIANT: callbacks run without the notifier lock held, so they may subscribe or unsubscribe
func (n *Notifier) Notify(key string) {
	n.mu.Lock()
	list := append([]subscription(nil), n.subs[key]...)
	n.mu.Unlock()
	for _, s := range list {
		s.fn()
	}
}

// Subscribers returns the number of callbacks registered for key.
func (n *Notifier) Subscribers(key string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[key])
}
