package label

import "github.com/seoul-transit/access-router/internal/weighting"

// Dominates reports whether a dominates b under the active profile
// weights w, per spec §4.4: transfers and arrival time are always
// compared; transfer difficulty, congestion, and convenience only
// participate when their weight is non-zero, and at least one active
// comparison must be strict.
func Dominates(w weighting.Weights, a, b *Label) bool {
	if a.Transfers > b.Transfers {
		return false
	}
	if a.ArrivalTimeMinutes > b.ArrivalTimeMinutes {
		return false
	}
	strict := a.Transfers < b.Transfers || a.ArrivalTimeMinutes < b.ArrivalTimeMinutes

	if w.TransferDifficulty > 0 {
		if a.MaxTransferDifficulty > b.MaxTransferDifficulty {
			return false
		}
		if a.MaxTransferDifficulty < b.MaxTransferDifficulty {
			strict = true
		}
	}
	if w.Congestion > 0 {
		aAvg, bAvg := a.AvgCongestion(), b.AvgCongestion()
		if aAvg > bAvg {
			return false
		}
		if aAvg < bAvg {
			strict = true
		}
	}
	if w.Convenience > 0 {
		aAvg, bAvg := a.AvgConvenience(), b.AvgConvenience()
		if aAvg < bAvg {
			return false
		}
		if aAvg > bAvg {
			strict = true
		}
	}
	return strict
}

// Bag is the set of non-dominated labels currently associated with one
// station, referenced by pool index.
type Bag struct {
	Indices []int32
}

// Insert attempts to add candidateIdx to the bag under dominance rules. If
// sameLineOnly is set, comparisons against existing members are restricted
// to members riding the same CurrentLine as the candidate — used during
// the transfer phase so labels on different lines at an interchange hub
// don't prune each other. Returns true if the candidate was accepted.
func Insert(pool *Pool, w weighting.Weights, bag *Bag, candidateIdx int32, sameLineOnly bool) bool {
	cand := pool.Get(candidateIdx)

	for _, idx := range bag.Indices {
		existing := pool.Get(idx)
		if sameLineOnly && existing.CurrentLine != cand.CurrentLine {
			continue
		}
		if Dominates(w, existing, cand) {
			return false
		}
	}

	kept := bag.Indices[:0]
	for _, idx := range bag.Indices {
		existing := pool.Get(idx)
		if sameLineOnly && existing.CurrentLine != cand.CurrentLine {
			kept = append(kept, idx)
			continue
		}
		if !Dominates(w, cand, existing) {
			kept = append(kept, idx)
		}
	}
	bag.Indices = append(kept, candidateIdx)
	return true
}
