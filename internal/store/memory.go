package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no probe has been recorded for a city.
	ErrNotFound = errors.New("no probe results for city")
)

// ProbeResult is the outcome of one scheduled resolve against the upstream.
// Weather values are not kept.
type ProbeResult struct {
	City      string    `json:"city"`
	Source    string    `json:"source"`
	Outcome   string    `json:"outcome"` // "ok" or the failure kind
	LatencyMs int64     `json:"latencyMs"`
	CheckedAt time.Time `json:"checkedAt"` // always UTC
}

// OK reports whether the probe succeeded.
func (r ProbeResult) OK() bool {
	return r.Outcome == "ok"
}

// ProbeHistory holds a time-ordered list of probe results for a city.
type ProbeHistory struct {
	Results []ProbeResult
}

// MemoryStore is a concurrency-safe in-memory probe history.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized city, value: history
	data map[string]*ProbeHistory

	// retention configuration
	maxHistory int           // max number of results per city
	maxAge     time.Duration // optional max age for results
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ProbeHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func key(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Save appends a probe result and enforces retention.
func (s *MemoryStore) Save(result ProbeResult) {
	k := key(result.City)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[k]
	if !ok {
		history = &ProbeHistory{}
		s.data[k] = history
	}

	history.Results = append(history.Results, result)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Results) > s.maxHistory {
		over := len(history.Results) - s.maxHistory
		history.Results = history.Results[over:]
	}

	// Enforce retention by age; the newest result is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Results); i++ {
			if !history.Results[i].CheckedAt.Before(cutoff) {
				break
			}
		}
		if i >= len(history.Results) {
			i = len(history.Results) - 1
		}
		if i > 0 {
			history.Results = history.Results[i:]
		}
	}
}

// Latest returns the most recent result for a city.
func (s *MemoryStore) Latest(city string) (ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key(city)]
	if !ok || len(history.Results) == 0 {
		return ProbeResult{}, ErrNotFound
	}
	return history.Results[len(history.Results)-1], nil
}

// History returns all results for a city between from and to (inclusive).
func (s *MemoryStore) History(city string, from, to time.Time) ([]ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key(city)]
	if !ok || len(history.Results) == 0 {
		return nil, ErrNotFound
	}

	var result []ProbeResult
	for _, r := range history.Results {
		if !r.CheckedAt.Before(from) && !r.CheckedAt.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// LatestAll returns the most recent result of every city, sorted by city.
func (s *MemoryStore) LatestAll() []ProbeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ProbeResult, 0, len(s.data))
	for _, history := range s.data {
		if len(history.Results) > 0 {
			out = append(out, history.Results[len(history.Results)-1])
		}
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i].City) < key(out[j].City) })
	return out
}
