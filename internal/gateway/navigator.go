package gateway

import "sync"

// Navigator abstracts the ambient navigation context: where the user
// currently is, and the ability to force them somewhere else. The web app
// derives this from the browser location; the CLI tracks the view each
// command operates on.
type Navigator interface {
	Path() string
	Navigate(path string)
}

// Tracker is a simple thread-safe Navigator.
type Tracker struct {
	mu   sync.Mutex
	path string
}

// NewTracker creates a Tracker starting at path.
func NewTracker(path string) *Tracker {
	return &Tracker{path: path}
}

func (t *Tracker) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

func (t *Tracker) Navigate(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.path = path
}
