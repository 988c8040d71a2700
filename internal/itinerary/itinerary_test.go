package itinerary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoul-transit/access-router/internal/label"
	"github.com/seoul-transit/access-router/internal/network"
	"github.com/seoul-transit/access-router/internal/weighting"
)

func buildTestStore(t *testing.T) *network.Store {
	t.Helper()
	stations := []network.Station{
		{ID: 0, Code: "A", Name: "A", Line: "2호선", Lat: 0, Lon: 0, Order: 0},
		{ID: 1, Code: "B", Name: "B", Line: "2호선", Lat: 0, Lon: 0.01, Order: 1},
		{ID: 2, Code: "C", Name: "C", Line: "2호선", Lat: 0, Lon: 0.02, Order: 2},
	}
	adjacency := map[network.StationID]network.Adjacency{
		0: {Up: []network.StationID{1, 2}},
		1: {Up: []network.StationID{2}, Down: []network.StationID{0}},
		2: {Down: []network.StationID{1, 0}},
	}
	return network.NewStore(stations, adjacency, nil, network.NewCongestionTable(nil))
}

func TestBuild_ReconstructsRideLegWithIntermediates(t *testing.T) {
	store := buildTestStore(t)
	pool := label.NewPool(8)

	origin := pool.Add(label.Label{StationID: 0, CurrentLine: "2호선", Depth: 1, ParentIndex: label.NoParent})
	leaf := pool.Add(label.Label{
		StationID: 2, CurrentLine: "2호선", Depth: 2, ParentIndex: origin,
		ArrivalTimeMinutes: 6, ConvenienceSum: 1.0, CongestionSum: 0.8,
	})

	w := weighting.For(weighting.PHY)
	results, err := Build(store, w, pool, []int32{leaf}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	it := results[0]
	require.Equal(t, []string{"A", "B", "C"}, it.RouteSequence)
	require.Equal(t, []string{"2호선", "2호선", "2호선"}, it.RouteLines)
	require.Equal(t, 1, it.Rank)
	require.Empty(t, it.TransferInfo)
}

func TestBuild_EmitsTransferTupleAndSkipsIntermediates(t *testing.T) {
	store := buildTestStore(t)
	pool := label.NewPool(8)

	origin := pool.Add(label.Label{StationID: 0, CurrentLine: "2호선", Depth: 1, ParentIndex: label.NoParent})
	transferred := pool.Add(label.Label{
		StationID: 1, CurrentLine: "9호선", Depth: 2, ParentIndex: origin, Transfers: 1,
	})

	w := weighting.For(weighting.PHY)
	results, err := Build(store, w, pool, []int32{transferred}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	it := results[0]
	require.Equal(t, []string{"A", "B"}, it.RouteSequence)
	require.Len(t, it.TransferInfo, 1)
	require.Equal(t, "A", it.TransferInfo[0].StationCode)
	require.Equal(t, "2호선", it.TransferInfo[0].FromLine)
	require.Equal(t, "9호선", it.TransferInfo[0].ToLine)
}

func TestBuild_DeduplicatesIdenticalSequencesKeepingLowerScore(t *testing.T) {
	store := buildTestStore(t)
	pool := label.NewPool(8)

	origin := pool.Add(label.Label{StationID: 0, CurrentLine: "2호선", Depth: 1, ParentIndex: label.NoParent})
	fast := pool.Add(label.Label{StationID: 2, CurrentLine: "2호선", Depth: 2, ParentIndex: origin, ArrivalTimeMinutes: 4})
	slow := pool.Add(label.Label{StationID: 2, CurrentLine: "2호선", Depth: 2, ParentIndex: origin, ArrivalTimeMinutes: 40})

	w := weighting.For(weighting.PHY)
	results, err := Build(store, w, pool, []int32{slow, fast}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 4.0, results[0].TotalTimeMinutes)
}

func TestBuild_RanksByAscendingScore(t *testing.T) {
	store := buildTestStore(t)
	pool := label.NewPool(8)

	origin := pool.Add(label.Label{StationID: 0, CurrentLine: "2호선", Depth: 1, ParentIndex: label.NoParent})
	viaB := pool.Add(label.Label{StationID: 1, CurrentLine: "2호선", Depth: 2, ParentIndex: origin, ArrivalTimeMinutes: 2})
	viaC := pool.Add(label.Label{StationID: 2, CurrentLine: "2호선", Depth: 2, ParentIndex: origin, ArrivalTimeMinutes: 20})

	w := weighting.For(weighting.PHY)
	results, err := Build(store, w, pool, []int32{viaC, viaB}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 1, results[0].Rank)
	require.Equal(t, 2, results[1].Rank)
	require.LessOrEqual(t, results[0].Score, results[1].Score)
}
