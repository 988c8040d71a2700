package facility

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoul-transit/access-router/internal/network"
	"github.com/seoul-transit/access-router/internal/weighting"
)

func TestConvenience_UnseenStationDefaultsToSigmoidZero(t *testing.T) {
	s := NewService(nil)
	got := s.Convenience(network.StationID(42), weighting.PHY)
	require.Equal(t, sigmoid(0), got)
}

func TestUpdateFacilityCounts_AppliesToNamedStations(t *testing.T) {
	s := NewService(nil)
	resolve := func(code string) (network.StationID, bool) {
		if code == "G1" {
			return network.StationID(0), true
		}
		return 0, false
	}

	before := s.Convenience(network.StationID(0), weighting.PHY)
	s.UpdateFacilityCounts([]FacilityRow{
		{StationCodes: []string{"G1"}, Counts: Counts{Elevator: 2, SafePlatform: 1}},
	}, resolve)
	after := s.Convenience(network.StationID(0), weighting.PHY)

	require.Greater(t, after, before)
}

func TestUpdateFacilityCounts_SkipsUnknownCodes(t *testing.T) {
	s := NewService(nil)
	resolve := func(code string) (network.StationID, bool) { return 0, false }

	require.NotPanics(t, func() {
		s.UpdateFacilityCounts([]FacilityRow{
			{StationCodes: []string{"NOPE"}, Counts: Counts{Elevator: 5}},
		}, resolve)
	})
}

func TestConvenience_ScoreStaysInUnitRange(t *testing.T) {
	s := NewService(nil)
	resolve := func(code string) (network.StationID, bool) { return network.StationID(1), true }
	s.UpdateFacilityCounts([]FacilityRow{
		{StationCodes: []string{"X"}, Counts: Counts{Elevator: 1000, SafePlatform: 1000}},
	}, resolve)

	score := s.Convenience(network.StationID(1), weighting.VIS)
	require.GreaterOrEqual(t, score, 0.0)
	require.LessOrEqual(t, score, 1.0)
}

type recordingCache struct {
	stored map[network.StationID][4]float64
}

func (r *recordingCache) Store(id network.StationID, scores [4]float64) {
	r.stored[id] = scores
}

func TestUpdateFacilityCounts_WritesThroughToCache(t *testing.T) {
	cache := &recordingCache{stored: map[network.StationID][4]float64{}}
	s := NewService(cache)
	resolve := func(code string) (network.StationID, bool) { return network.StationID(7), true }

	s.UpdateFacilityCounts([]FacilityRow{
		{StationCodes: []string{"X"}, Counts: Counts{Toilet: 3}},
	}, resolve)

	_, ok := cache.stored[network.StationID(7)]
	require.True(t, ok)
}
