package routes

import "sync"

// Browser tracks the current location and full-page navigations requested
// outside the router, such as a forced logout from the request pipeline.
type Browser struct {
	mu       sync.Mutex
	location string
	pending  bool
}

func NewBrowser(start string) *Browser {
	return &Browser{location: start}
}

// Assign replaces the location and marks a hard navigation as pending.
func (b *Browser) Assign(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.location = path
	b.pending = true
}

// Location returns the current location and whether a hard navigation is
// pending since the last Settle.
func (b *Browser) Location() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.location, b.pending
}

// Settle records where the router actually landed.
func (b *Browser) Settle(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.location = path
	b.pending = false
}
