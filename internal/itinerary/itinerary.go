// Package itinerary implements path reconstruction and ranking (component
// C6): walking a destination label's parent chain back into a full station
// sequence, computing the normalized weighted score, deduplicating
// identical routes, and returning the top-K candidates.
package itinerary

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/seoul-transit/access-router/internal/errs"
	"github.com/seoul-transit/access-router/internal/label"
	"github.com/seoul-transit/access-router/internal/network"
	"github.com/seoul-transit/access-router/internal/weighting"
)

// Normalization ceilings from spec §6: travel time caps at 120 minutes,
// transfers at 4, convenience/congestion are capped at 1.
const (
	travelTimeCeilingMinutes = 120.0
	transfersCeiling         = 4.0
)

// TopK is the default number of ranked itineraries returned.
const TopK = 3

// TransferTuple records one interchange within an itinerary.
type TransferTuple struct {
	StationCode string
	FromLine    string
	ToLine      string
}

// Itinerary is one reconstructed, ranked route.
type Itinerary struct {
	Rank             int
	RouteSequence    []string
	RouteLines       []string
	TransferInfo     []TransferTuple
	TotalTimeMinutes float64
	Transfers        int
	AvgConvenience   float64
	AvgCongestion    float64
	MaxDifficulty    float64
	Score            float64
}

// Recorder observes accepted itinerary candidates before ranking, for
// post-hoc debugging of a single search. A nil Recorder costs nothing.
type Recorder interface {
	RecordCandidate(it Itinerary)
}

// Build reconstructs and ranks every destination label into at most TopK
// itineraries, per spec §4.6. store is used to expand ride legs into their
// intermediate stations; recorder may be nil.
func Build(store *network.Store, w weighting.Weights, pool *label.Pool, destinationIndices []int32, recorder Recorder) ([]Itinerary, error) {
	candidates := make([]Itinerary, 0, len(destinationIndices))
	for _, idx := range destinationIndices {
		it, err := reconstruct(store, pool, idx)
		if err != nil {
			return nil, err
		}
		it.Score = score(w, it)
		if recorder != nil {
			recorder.RecordCandidate(it)
		}
		candidates = append(candidates, it)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score < candidates[j].Score })
	candidates = dedupeBySequence(candidates)

	if len(candidates) > TopK {
		candidates = candidates[:TopK]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates, nil
}

// reconstruct walks a destination label's ancestry back to its origin and
// expands it into the full station/line sequence and transfer tuples.
func reconstruct(store *network.Store, pool *label.Pool, leafIdx int32) (Itinerary, error) {
	chain := pool.Reconstruct(leafIdx)
	leaf := chain[len(chain)-1]

	it := Itinerary{
		TotalTimeMinutes: leaf.ArrivalTimeMinutes,
		Transfers:        leaf.Transfers,
		AvgConvenience:   leaf.AvgConvenience(),
		AvgCongestion:    leaf.AvgCongestion(),
		MaxDifficulty:    leaf.MaxTransferDifficulty,
	}
	it.RouteSequence = append(it.RouteSequence, store.Code(chain[0].StationID))
	it.RouteLines = append(it.RouteLines, chain[0].CurrentLine)

	for i := 1; i < len(chain); i++ {
		prev, curr := chain[i-1], chain[i]
		if prev.CurrentLine != curr.CurrentLine {
			it.TransferInfo = append(it.TransferInfo, TransferTuple{
				StationCode: store.Code(prev.StationID), FromLine: prev.CurrentLine, ToLine: curr.CurrentLine,
			})
			it.RouteSequence = append(it.RouteSequence, store.Code(curr.StationID))
			it.RouteLines = append(it.RouteLines, curr.CurrentLine)
			continue
		}
		stops, err := store.IntermediateStations(prev.StationID, curr.StationID, curr.CurrentLine)
		if err != nil {
			return Itinerary{}, err
		}
		if len(stops) == 0 {
			return Itinerary{}, errs.New(errs.InconsistentNetwork, "ride leg %s->%s on %q produced no stops", store.Code(prev.StationID), store.Code(curr.StationID), curr.CurrentLine)
		}
		for _, sid := range stops {
			it.RouteSequence = append(it.RouteSequence, store.Code(sid))
			it.RouteLines = append(it.RouteLines, curr.CurrentLine)
		}
	}
	return it, nil
}

// score computes the normalized weighted ranking score from spec §4.6.
// The five normalized terms are combined as a dot product against the
// profile's weight vector via gonum/floats, matching the component's
// domain-stack wiring.
func score(w weighting.Weights, it Itinerary) float64 {
	weights := []float64{w.TravelTime, w.Transfers, w.TransferDifficulty, w.Convenience, w.Congestion}
	norms := []float64{
		minF(it.TotalTimeMinutes/travelTimeCeilingMinutes, 1),
		minF(float64(it.Transfers)/transfersCeiling, 1),
		it.MaxDifficulty,
		1 - minF(it.AvgConvenience, 1),
		minF(it.AvgCongestion, 1),
	}
	return floats.Dot(weights, norms)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// dedupeBySequence keeps only the first (lowest-score, since candidates
// arrive sorted) occurrence of each distinct station sequence.
func dedupeBySequence(candidates []Itinerary) []Itinerary {
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := sequenceKey(c.RouteSequence)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func sequenceKey(seq []string) string {
	key := ""
	for _, s := range seq {
		key += s + "\x1f"
	}
	return key
}
