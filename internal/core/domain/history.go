package domain

// DefaultHistoryCapacity is the number of visits kept per session.
const DefaultHistoryCapacity = 10

// HistoryEntry is one visited article.
type HistoryEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// History is a fixed-capacity ring buffer of visits.
// Appending to a full history evicts the oldest entry.
// A History is not safe for concurrent use.
type History struct {
	buf  []HistoryEntry
	head int // index of the oldest entry
	size int
}

// NewHistory creates an empty history. A non-positive capacity uses
// DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]HistoryEntry, capacity)}
}

// HistoryFromEntries rebuilds a history from its persisted form.
// Entries are oldest first; when there are more than capacity, the newest win.
func HistoryFromEntries(capacity int, entries []HistoryEntry) *History {
	h := NewHistory(capacity)
	for _, e := range entries {
		h.Append(e)
	}
	return h
}

// Append adds an entry and reports whether the oldest one was evicted.
func (h *History) Append(e HistoryEntry) bool {
	c := len(h.buf)
	if h.size < c {
		h.buf[(h.head+h.size)%c] = e
		h.size++
		return false
	}
	h.buf[h.head] = e
	h.head = (h.head + 1) % c
	return true
}

// Entries returns the entries oldest first. The result is never nil.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return h.size
}

// Cap returns the fixed capacity.
func (h *History) Cap() int {
	return len(h.buf)
}
