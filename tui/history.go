// Package tui provides a Bubble Tea terminal UI for a shop conversation.
package tui

// History keeps the lines typed at the counter for Up/Down recall.
type History struct {
	entries []string
	max     int
	back    int // 0 = fresh input, n = nth most recent entry
}

// NewHistory creates a history holding at most max lines.
func NewHistory(max int) *History {
	return &History{entries: make([]string, 0, max), max: max}
}

// Push records a line. Repeating the previous line is not recorded again.
func (h *History) Push(line string) {
	h.back = 0
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	if len(h.entries) == h.max {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.max-1]
	}
	h.entries = append(h.entries, line)
}

// Prev steps to an older line, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.back < len(h.entries) {
		h.back++
	}
	return h.entries[len(h.entries)-h.back], true
}

// Next steps to a newer line. Past the newest it reports false so the
// caller can clear the input.
func (h *History) Next() (string, bool) {
	if h.back <= 1 {
		h.back = 0
		return "", false
	}
	h.back--
	return h.entries[len(h.entries)-h.back], true
}

// ResetCursor returns to fresh input.
func (h *History) ResetCursor() {
	h.back = 0
}
