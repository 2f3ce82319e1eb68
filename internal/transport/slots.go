package transport

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ivlev/note-overlay/internal/engine"
)

// maxPreviewSlots bounds the number of preview targets remembered at once.
const maxPreviewSlots = 1024

// previewSlots maps client slot names to supersession trackers. The least
// recently used slot is forgotten first; a request for a forgotten slot
// starts a fresh tracker.
type previewSlots struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *engine.Tracker]
}

func newPreviewSlots(size int) *previewSlots {
	if size < 1 {
		size = 1
	}
	// lru.New fails only for a non-positive size.
	cache, _ := lru.New[string, *engine.Tracker](size)
	return &previewSlots{cache: cache}
}

func (s *previewSlots) get(slot string) *engine.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.cache.Get(slot); ok {
		return t
	}
	t := &engine.Tracker{}
	s.cache.Add(slot, t)
	return t
}

func (s *previewSlots) len() int {
	return s.cache.Len()
}
