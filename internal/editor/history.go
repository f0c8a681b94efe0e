package editor

import "github.com/pyomin/bluecool-admin/internal/document"

// historyLimit bounds the edit history; the oldest entries fall off
const historyLimit = 100

// snapshot one history entry: a structural copy of the tree plus the
// selection at that point. Snapshots never alias the live tree.
type snapshot struct {
	doc document.Document
	sel Selection
}

// history a strictly monotonic undo stack: undoing and then editing
// discards the redo tail, so there is never branching.
type history struct {
	entries []snapshot
	// index points at the current state within entries
	index int
}

func newHistory(initial snapshot) *history {
	return &history{entries: []snapshot{initial}, index: 0}
}

// push records a new state after an edit, truncating any redo tail
func (h *history) push(s snapshot) {
	h.entries = append(h.entries[:h.index+1], s)

	if len(h.entries) > historyLimit {
		drop := len(h.entries) - historyLimit
		h.entries = h.entries[drop:]
	}
	h.index = len(h.entries) - 1
}

func (h *history) canUndo() bool { return h.index > 0 }
func (h *history) canRedo() bool { return h.index < len(h.entries)-1 }

// undo steps back and returns the previous state
func (h *history) undo() (snapshot, bool) {
	if !h.canUndo() {
		return snapshot{}, false
	}
	h.index--
	return h.entries[h.index], true
}

// redo steps forward after an undo
func (h *history) redo() (snapshot, bool) {
	if !h.canRedo() {
		return snapshot{}, false
	}
	h.index++
	return h.entries[h.index], true
}

// reset replaces the whole history with a single initial state
func (h *history) reset(initial snapshot) {
	h.entries = []snapshot{initial}
	h.index = 0
}
