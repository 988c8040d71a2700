package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoul-transit/access-router/internal/errs"
	"github.com/seoul-transit/access-router/internal/facility"
	"github.com/seoul-transit/access-router/internal/network"
	"github.com/seoul-transit/access-router/internal/weighting"
)

// buildLineStore lays out a short single-line network:
// A(0,0) - B(0,0.01) - C(0,0.02) on line "2호선", plus a lone station D on
// "신분당선" reachable from B via a 100m transfer.
func buildLineStore(t *testing.T) *network.Store {
	t.Helper()
	stations := []network.StationInput{
		{Code: "A", Name: "A", Line: "2호선", Lat: 0, Lon: 0, Order: 0},
		{Code: "B", Name: "B", Line: "2호선", Lat: 0, Lon: 0.01, Order: 1},
		{Code: "C", Name: "C", Line: "2호선", Lat: 0, Lon: 0.02, Order: 2},
		{Code: "D", Name: "B", Line: "신분당선", Lat: 0, Lon: 0.01, Order: 0},
	}
	lines := []network.LineStationInput{
		{Code: "A", Line: "2호선", Up: []string{"B", "C"}},
		{Code: "B", Line: "2호선", Up: []string{"C"}, Down: []string{"A"}},
		{Code: "C", Line: "2호선", Down: []string{"B", "A"}},
	}
	transfers := []network.TransferInput{
		{Code: "B", FromLine: "2호선", ToLine: "신분당선", DistanceMeters: 100, ToCode: "D"},
	}
	store, err := network.Build(stations, lines, transfers, nil)
	require.NoError(t, err)
	return store
}

func TestFindRoutes_TrivialOriginEqualsDestination(t *testing.T) {
	store := buildLineStore(t)
	eng := New(store, facility.NewService(nil))

	res, err := eng.FindRoutes(context.Background(), Request{
		OriginCode: "A", DestinationCodes: []string{"A"},
		Profile: weighting.PHY, MaxRounds: 3,
	})
	require.NoError(t, err)
	require.Len(t, res.DestinationLabels, 1)
	lbl := res.Pool.Get(res.DestinationLabels[0])
	require.Equal(t, 0, lbl.Transfers)
	require.Equal(t, 0.0, lbl.ArrivalTimeMinutes)
}

func TestFindRoutes_ReachesDownstreamStationOnSameLine(t *testing.T) {
	store := buildLineStore(t)
	eng := New(store, facility.NewService(nil))

	res, err := eng.FindRoutes(context.Background(), Request{
		OriginCode: "A", DestinationCodes: []string{"C"},
		Profile: weighting.PHY, MaxRounds: 3,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.DestinationLabels)
	lbl := res.Pool.Get(res.DestinationLabels[0])
	require.Equal(t, 0, lbl.Transfers)
	require.Greater(t, lbl.ArrivalTimeMinutes, 0.0)
}

func TestFindRoutes_ZeroRoundsYieldsEmptyUnlessTrivial(t *testing.T) {
	store := buildLineStore(t)
	eng := New(store, facility.NewService(nil))

	res, err := eng.FindRoutes(context.Background(), Request{
		OriginCode: "A", DestinationCodes: []string{"C"},
		Profile: weighting.PHY, MaxRounds: 0,
	})
	require.NoError(t, err)
	require.Empty(t, res.DestinationLabels)
}

func TestFindRoutes_UnknownOriginCodeIsError(t *testing.T) {
	store := buildLineStore(t)
	eng := New(store, facility.NewService(nil))

	_, err := eng.FindRoutes(context.Background(), Request{
		OriginCode: "ZZZ", DestinationCodes: []string{"C"},
		Profile: weighting.PHY, MaxRounds: 3,
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, &errs.Error{Kind: errs.UnknownStation}))
}

func TestFindRoutes_InvalidProfileIsError(t *testing.T) {
	store := buildLineStore(t)
	eng := New(store, facility.NewService(nil))

	_, err := eng.FindRoutes(context.Background(), Request{
		OriginCode: "A", DestinationCodes: []string{"C"},
		Profile: weighting.Profile("NOPE"), MaxRounds: 3,
	})
	require.Error(t, err)
}

func TestFindRoutes_UnreachableWithinRoundsIsEmptyNotError(t *testing.T) {
	// GIVEN a destination that needs a ride plus a transfer (two rounds) but
	// a one-round budget, too small to reach it
	store := buildLineStore(t)
	eng := New(store, facility.NewService(nil))

	res, err := eng.FindRoutes(context.Background(), Request{
		OriginCode: "A", DestinationCodes: []string{"D"},
		Profile: weighting.PHY, MaxRounds: 1,
	})
	require.NoError(t, err)
	require.Empty(t, res.DestinationLabels)
}
