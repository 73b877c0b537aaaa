// Package reqlog keeps a bounded in-memory log of recent HTTP requests.
package reqlog

import (
	"sort"
	"sync"
	"time"
)

// DefaultSize is used when a non-positive capacity is given
const DefaultSize = 100

// Entry is one logged request. Bodies and headers are never captured.
type Entry struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	DurationMs int64     `json:"durationMs"`
	RemoteIP   string    `json:"remoteIp"`
	UserID     int       `json:"userId,omitempty"`
}

// Stats summarizes the entries currently held by a Sink
type Stats struct {
	Total         int            `json:"total"`
	ByMethod      map[string]int `json:"byMethod"`
	ByPath        map[string]int `json:"byPath"`
	ByStatusClass map[string]int `json:"byStatusClass"`
	Errors        int            `json:"errors"`
	AvgDurationMs float64        `json:"avgDurationMs"`
}

// Sink is a fixed-capacity ring buffer of request entries, safe for
// concurrent use
type Sink struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewSink creates a sink holding at most size entries
func NewSink(size int) *Sink {
	if size <= 0 {
		size = DefaultSize
	}
	return &Sink{entries: make([]Entry, size)}
}

// Add appends e, evicting the oldest entry when full
func (s *Sink) Add(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.next] = e
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
}

// Len returns the number of entries held
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lenLocked()
}

func (s *Sink) lenLocked() int {
	if s.full {
		return len(s.entries)
	}
	return s.next
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything held.
func (s *Sink) Recent(limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.lenLocked()
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out
}

// Stats computes aggregate counters over the held entries
func (s *Sink) Stats() Stats {
	entries := s.Recent(0)
	st := Stats{
		Total:         len(entries),
		ByMethod:      make(map[string]int),
		ByPath:        make(map[string]int),
		ByStatusClass: make(map[string]int),
	}
	var total int64
	for _, e := range entries {
		st.ByMethod[e.Method]++
		st.ByPath[e.Path]++
		st.ByStatusClass[statusClass(e.Status)]++
		if e.Status >= 400 {
			st.Errors++
		}
		total += e.DurationMs
	}
	if st.Total > 0 {
		st.AvgDurationMs = float64(total) / float64(st.Total)
	}
	return st
}

// TopPaths returns the n most requested paths, most frequent first
func (st Stats) TopPaths(n int) []string {
	paths := make([]string, 0, len(st.ByPath))
	for p := range st.ByPath {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if st.ByPath[paths[i]] != st.ByPath[paths[j]] {
			return st.ByPath[paths[i]] > st.ByPath[paths[j]]
		}
		return paths[i] < paths[j]
	})
	if n > 0 && n < len(paths) {
		paths = paths[:n]
	}
	return paths
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
