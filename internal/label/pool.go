package label

import "github.com/seoul-transit/access-router/internal/network"

// Pool is the contiguous, append-only label arena for a single search.
// Parent indices are stable for the pool's lifetime; the pool is discarded
// wholesale at the end of a search rather than reclaimed piecemeal.
type Pool struct {
	labels []Label
}

// NewPool reserves capacity for a search. Spec §5 suggests an initial
// capacity on the order of 2×10⁵ labels for a full-network search; callers
// size this down for smaller test fixtures.
func NewPool(capacity int) *Pool {
	return &Pool{labels: make([]Label, 0, capacity)}
}

// Add appends a new label and returns its stable index.
func (p *Pool) Add(l Label) int32 {
	idx := int32(len(p.labels))
	p.labels = append(p.labels, l)
	return idx
}

// Get returns a pointer to the label at idx. The pointer is valid only
// until the next Add grows the backing array past its capacity; callers
// needing a stable reference across Add calls should re-fetch by index.
func (p *Pool) Get(idx int32) *Label {
	return &p.labels[idx]
}

// Len returns the number of labels allocated so far.
func (p *Pool) Len() int {
	return len(p.labels)
}

// AncestorHasStation walks the parent chain starting at idx (inclusive)
// and reports whether station appears anywhere in it. Used both to reject
// a ride hop that would revisit a station and to enforce the "no repeated
// stationId in the ancestor chain" invariant.
func (p *Pool) AncestorHasStation(idx int32, station network.StationID) bool {
	for idx != NoParent {
		l := &p.labels[idx]
		if l.StationID == station {
			return true
		}
		idx = l.ParentIndex
	}
	return false
}

// Reconstruct walks parentIndex from idx to the root and returns the chain
// in root-to-leaf order (reversed from traversal order).
func (p *Pool) Reconstruct(idx int32) []*Label {
	var chain []*Label
	for idx != NoParent {
		chain = append(chain, &p.labels[idx])
		idx = p.labels[idx].ParentIndex
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
