package report

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultTrackerSize bounds how many issued ids are remembered.
const DefaultTrackerSize = 1024

// Tracker remembers recently issued event ids so feedback can only be
// attached to an id this process actually handed out, once.
type Tracker struct {
	ids *lru.Cache[string, struct{}]
}

// NewTracker returns a Tracker holding at most size ids.
func NewTracker(size int) (*Tracker, error) {
	if size <= 0 {
		size = DefaultTrackerSize
	}
	c, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &Tracker{ids: c}, nil
}

// Add records id.
func (t *Tracker) Add(id string) {
	t.ids.Add(id, struct{}{})
}

// Has reports whether id is still tracked.
func (t *Tracker) Has(id string) bool {
	return t.ids.Contains(id)
}

// Consume removes id and reports whether it was tracked.
func (t *Tracker) Consume(id string) bool {
	return t.ids.Remove(id)
}

// Len returns the number of tracked ids.
func (t *Tracker) Len() int {
	return t.ids.Len()
}
