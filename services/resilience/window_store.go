package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/customeros/outreachstack/internal/utils"
)

// WindowState is a snapshot of the active fixed window for one scope.
type WindowState struct {
	Count       int
	WindowStart time.Time
	WindowEnd   time.Time
}

// WindowStore holds at most one active window per scope. Expired
// windows are replaced, never mutated in place.
type WindowStore interface {
	// Current returns the active window, creating a fresh one if none
	// exists or the previous one expired.
	Current(ctx context.Context, key string, window time.Duration) (WindowState, error)
	// Add increments the active window unconditionally.
	Add(ctx context.Context, key string, window time.Duration) (WindowState, error)
	// AddIfBelow increments only while the count is below limit and
	// reports whether the increment was applied. Check and increment
	// are atomic at the scope of the key.
	AddIfBelow(ctx context.Context, key string, limit int, window time.Duration) (WindowState, bool, error)
}

type memoryWindow struct {
	count       int
	windowStart time.Time
	windowEnd   time.Time
}

type inMemoryWindowStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

func NewInMemoryWindowStore() WindowStore {
	return &inMemoryWindowStore{
		windows: make(map[string]*memoryWindow),
	}
}

// activeWindow must be called with the mutex held.
func (s *inMemoryWindowStore) activeWindow(key string, window time.Duration) *memoryWindow {
	now := utils.Now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.windowEnd) {
		w = &memoryWindow{
			windowStart: now,
			windowEnd:   now.Add(window),
		}
		s.windows[key] = w
	}
	return w
}

func (s *inMemoryWindowStore) Current(ctx context.Context, key string, window time.Duration) (WindowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.activeWindow(key, window)
	return WindowState{Count: w.count, WindowStart: w.windowStart, WindowEnd: w.windowEnd}, nil
}

func (s *inMemoryWindowStore) Add(ctx context.Context, key string, window time.Duration) (WindowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.activeWindow(key, window)
	w.count++
	return WindowState{Count: w.count, WindowStart: w.windowStart, WindowEnd: w.windowEnd}, nil
}

func (s *inMemoryWindowStore) AddIfBelow(ctx context.Context, key string, limit int, window time.Duration) (WindowState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.activeWindow(key, window)
	if w.count >= limit {
		return WindowState{Count: w.count, WindowStart: w.windowStart, WindowEnd: w.windowEnd}, false, nil
	}
	w.count++
	return WindowState{Count: w.count, WindowStart: w.windowStart, WindowEnd: w.windowEnd}, true, nil
}
