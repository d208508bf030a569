// Package collision assigns stable column positions to channel labels and
// tracks 64-bit identity collisions while the unified schema is built.
package collision

// Tracker maps channel labels to column positions. Lookups go through the
// label's 64-bit identity first and verify the label string on a hit, so
// positions stay correct even when two distinct labels hash alike.
//
// Column positions are assigned in first-appearance order, which is the
// column order of the reconciled table.
type Tracker struct {
	byID         map[uint64]int // id → position of the first label claiming it
	byLabel      map[string]int // label → position, authoritative under collision
	labels       []string       // ordered unique labels
	hasCollision bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byID:    make(map[uint64]int),
		byLabel: make(map[string]int),
	}
}

// Track records a label under its identity and returns the label's column
// position. added reports whether the label was seen for the first time;
// repeated labels return their existing position.
//
// Two distinct labels with the same identity both get positions; the
// collision is flagged and later lookups for either fall back to exact
// label matching.
func (t *Tracker) Track(label string, id uint64) (pos int, added bool) {
	if pos, ok := t.byLabel[label]; ok {
		return pos, false
	}

	if prev, ok := t.byID[id]; ok && t.labels[prev] != label {
		t.hasCollision = true
	}

	pos = len(t.labels)
	t.labels = append(t.labels, label)
	t.byLabel[label] = pos
	if _, ok := t.byID[id]; !ok {
		t.byID[id] = pos
	}

	return pos, true
}

// Lookup returns the column position of a tracked label.
func (t *Tracker) Lookup(label string, id uint64) (int, bool) {
	if pos, ok := t.byID[id]; ok && t.labels[pos] == label {
		return pos, true
	}

	pos, ok := t.byLabel[label]

	return pos, ok
}

// HasCollision reports whether two distinct labels shared an identity.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Labels returns the tracked labels in first-appearance order. The
// returned slice is owned by the tracker.
func (t *Tracker) Labels() []string {
	return t.labels
}

// Count returns the number of distinct labels tracked.
func (t *Tracker) Count() int {
	return len(t.labels)
}

// Reset clears all tracked labels and collision state so the tracker can
// be reused for another reconciliation.
func (t *Tracker) Reset() {
	// Clear maps but preserve capacity to avoid allocations
	for k := range t.byID {
		delete(t.byID, k)
	}
	for k := range t.byLabel {
		delete(t.byLabel, k)
	}
	t.labels = t.labels[:0]
	t.hasCollision = false
}
