package core

// Deduplicator keeps the first row seen for each IdentityKey.
// It must see rows in input order.
type Deduplicator struct {
	seen map[IdentityKey]struct{}
}

// NewDeduplicator creates an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[IdentityKey]struct{})}
}

// Add reports whether row is the first with its key.
func (d *Deduplicator) Add(row NormalizedRow) bool {
	k := row.Key()
	if _, dup := d.seen[k]; dup {
		return false
	}
	d.seen[k] = struct{}{}
	return true
}

// Len returns the number of distinct keys seen.
func (d *Deduplicator) Len() int { return len(d.seen) }

// Dedup returns rows with later duplicates removed, and how many were removed.
func Dedup(rows []NormalizedRow) ([]NormalizedRow, int) {
	d := NewDeduplicator()
	out := make([]NormalizedRow, 0, len(rows))
	for _, r := range rows {
		if d.Add(r) {
			out = append(out, r)
		}
	}
	return out, len(rows) - len(out)
}
