package label

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoul-transit/access-router/internal/network"
	"github.com/seoul-transit/access-router/internal/weighting"
)

func TestAncestorHasStation_DetectsCycleCandidate(t *testing.T) {
	// GIVEN a chain origin(A) -> B -> C
	p := NewPool(8)
	a := p.Add(Label{StationID: 1, ParentIndex: NoParent, Depth: 1})
	b := p.Add(Label{StationID: 2, ParentIndex: a, Depth: 2})
	c := p.Add(Label{StationID: 3, ParentIndex: b, Depth: 3})

	// THEN revisiting A from C is rejected, but a fresh station is not
	require.True(t, p.AncestorHasStation(c, network.StationID(1)))
	require.False(t, p.AncestorHasStation(c, network.StationID(4)))
}

func TestReconstruct_ReturnsRootToLeafOrder(t *testing.T) {
	p := NewPool(8)
	a := p.Add(Label{StationID: 1, ParentIndex: NoParent, Depth: 1})
	b := p.Add(Label{StationID: 2, ParentIndex: a, Depth: 2})
	c := p.Add(Label{StationID: 3, ParentIndex: b, Depth: 3})

	chain := p.Reconstruct(c)

	require.Len(t, chain, 3)
	require.Equal(t, network.StationID(1), chain[0].StationID)
	require.Equal(t, network.StationID(3), chain[2].StationID)
}

func TestDominates_StrictlyBetterOnBothAlwaysOnCriteria(t *testing.T) {
	w := weighting.Weights{} // all optional criteria off
	a := &Label{Transfers: 0, ArrivalTimeMinutes: 10, Depth: 1}
	b := &Label{Transfers: 1, ArrivalTimeMinutes: 20, Depth: 1}
	require.True(t, Dominates(w, a, b))
	require.False(t, Dominates(w, b, a))
}

func TestDominates_EqualOnEverythingIsNotDomination(t *testing.T) {
	w := weighting.Weights{}
	a := &Label{Transfers: 1, ArrivalTimeMinutes: 10, Depth: 1}
	b := &Label{Transfers: 1, ArrivalTimeMinutes: 10, Depth: 1}
	require.False(t, Dominates(w, a, b))
	require.False(t, Dominates(w, b, a))
}

func TestDominates_ZeroWeightCriterionIgnored(t *testing.T) {
	// GIVEN convenience weight is zero
	w := weighting.Weights{Convenience: 0}
	a := &Label{Transfers: 0, ArrivalTimeMinutes: 5, ConvenienceSum: 0, Depth: 1}
	b := &Label{Transfers: 0, ArrivalTimeMinutes: 5, ConvenienceSum: 100, Depth: 1}

	// THEN a does not fail to dominate b just because b has higher
	// convenience — and since travelTime/transfers tie, dominance is false
	// in both directions rather than one winning on an inactive axis.
	require.False(t, Dominates(w, a, b))
	require.False(t, Dominates(w, b, a))
}

func TestDominates_ActiveConvenienceCriterionCountsHigherAsBetter(t *testing.T) {
	w := weighting.Weights{Convenience: 1}
	better := &Label{Transfers: 0, ArrivalTimeMinutes: 5, ConvenienceSum: 8, Depth: 1}
	worse := &Label{Transfers: 0, ArrivalTimeMinutes: 5, ConvenienceSum: 2, Depth: 1}
	require.True(t, Dominates(w, better, worse))
}

func TestInsert_DominatedCandidateIsDiscarded(t *testing.T) {
	p := NewPool(8)
	w := weighting.Weights{}
	bag := &Bag{}

	fast := p.Add(Label{Transfers: 0, ArrivalTimeMinutes: 5, Depth: 1})
	require.True(t, Insert(p, w, bag, fast, false))

	slow := p.Add(Label{Transfers: 0, ArrivalTimeMinutes: 50, Depth: 1})
	require.False(t, Insert(p, w, bag, slow, false))
	require.Len(t, bag.Indices, 1)
}

func TestInsert_NewLabelEvictsDominatedIncumbents(t *testing.T) {
	p := NewPool(8)
	w := weighting.Weights{}
	bag := &Bag{}

	slow := p.Add(Label{Transfers: 0, ArrivalTimeMinutes: 50, Depth: 1})
	require.True(t, Insert(p, w, bag, slow, false))

	fast := p.Add(Label{Transfers: 0, ArrivalTimeMinutes: 5, Depth: 1})
	require.True(t, Insert(p, w, bag, fast, false))

	require.Equal(t, []int32{fast}, bag.Indices)
}

func TestInsert_IncomparableLabelsBothSurvive(t *testing.T) {
	p := NewPool(8)
	w := weighting.Weights{Transfers: 1, TravelTime: 1}
	bag := &Bag{}

	fewerTransfers := p.Add(Label{Transfers: 0, ArrivalTimeMinutes: 50, Depth: 1})
	require.True(t, Insert(p, w, bag, fewerTransfers, false))

	faster := p.Add(Label{Transfers: 2, ArrivalTimeMinutes: 5, Depth: 1})
	require.True(t, Insert(p, w, bag, faster, false))

	require.Len(t, bag.Indices, 2)
}

func TestInsert_SameLineOnlyIgnoresOtherLineMembers(t *testing.T) {
	p := NewPool(8)
	w := weighting.Weights{}
	bag := &Bag{}

	other := p.Add(Label{Transfers: 0, ArrivalTimeMinutes: 1, CurrentLine: "9호선", Depth: 1})
	require.True(t, Insert(p, w, bag, other, true))

	sameLine := p.Add(Label{Transfers: 0, ArrivalTimeMinutes: 50, CurrentLine: "2호선", Depth: 1})
	require.True(t, Insert(p, w, bag, sameLine, true))

	require.Len(t, bag.Indices, 2)
}
