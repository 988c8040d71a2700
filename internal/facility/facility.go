// Package facility implements the facility score service (component C2):
// per-station, per-profile convenience scores derived from facility
// counts and profile-specific facility weights, updatable online under a
// readers–writer lock.
package facility

import (
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/seoul-transit/access-router/internal/network"
	"github.com/seoul-transit/access-router/internal/weighting"
)

// Counts holds the nine facility counters for one station.
type Counts struct {
	Charger      float64
	Elevator     float64
	Escalator    float64
	Lift         float64
	MovingWalk   float64
	SafePlatform float64
	SignPhone    float64
	Toilet       float64
	Helper       float64
}

func (c Counts) dot(w facilityWeights) float64 {
	return w.Charger*c.Charger + w.Elevator*c.Elevator + w.Escalator*c.Escalator +
		w.Lift*c.Lift + w.MovingWalk*c.MovingWalk + w.SafePlatform*c.SafePlatform +
		w.SignPhone*c.SignPhone + w.Toilet*c.Toilet + w.Helper*c.Helper
}

type facilityWeights struct {
	Charger, Elevator, Escalator, Lift, MovingWalk, SafePlatform, SignPhone, Toilet, Helper float64
}

// facilityWeightTable holds the fixed per-profile facility weights from
// spec §6, reproduced verbatim.
var facilityWeightTable = map[weighting.Profile]facilityWeights{
	weighting.PHY: {Charger: 3, Elevator: 5, Escalator: 3, Lift: 2, MovingWalk: 2, SafePlatform: 5, SignPhone: 0, Toilet: 3, Helper: 4},
	weighting.VIS: {Charger: 0, Elevator: 3, Escalator: 3, Lift: 0, MovingWalk: 2, SafePlatform: 5, SignPhone: 0, Toilet: 0, Helper: 4},
	weighting.AUD: {Charger: 0, Elevator: 3, Escalator: 3, Lift: 0, MovingWalk: 2, SafePlatform: 3, SignPhone: 4.5, Toilet: 0, Helper: 4},
	weighting.ELD: {Charger: 0, Elevator: 4, Escalator: 4, Lift: 0, MovingWalk: 4, SafePlatform: 4, SignPhone: 0, Toilet: 1, Helper: 4},
}

// sigmoidK is the sigmoid normalization constant. Spec documents this as an
// open question with two observed values (0.3 and 3.0); this deployment
// fixes k=1.0, a value inside the documented range, and tests assume it.
const sigmoidK = 1.0

// CacheWriter is the optional write-behind persistence hook for computed
// scores, implemented by the Redis-backed cache in redis_cache.go. A nil
// CacheWriter disables persistence without changing computed scores.
type CacheWriter interface {
	Store(id network.StationID, scores [4]float64)
}

// Service computes and caches convenience scores. Readers acquire the
// shared lock for the duration of a search; writers take the exclusive
// lock while swapping in a freshly computed score table, matching the
// RWMutex discipline used for the network store snapshot elsewhere in the
// pack (readers hold their lock across an entire query, a writer only
// during the atomic swap).
type Service struct {
	mu     sync.RWMutex
	scores map[network.StationID][4]float64 // indexed by profile ordinal
	cache  CacheWriter
}

// NewService builds an empty facility service. Call UpdateFacilityCounts to
// populate it before a search relies on non-default scores.
func NewService(cache CacheWriter) *Service {
	return &Service{scores: make(map[network.StationID][4]float64), cache: cache}
}

// FacilityRow is one row of an UpdateFacilityCounts request: the facility
// counters plus every station code they apply to.
type FacilityRow struct {
	StationCodes []string
	Counts       Counts
}

// Convenience returns the cached score in [0,1] for a station and profile.
// Stations never updated via UpdateFacilityCounts default to sigmoid(0).
func (s *Service) Convenience(id network.StationID, profile weighting.Profile) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores, ok := s.scores[id]
	if !ok {
		return sigmoid(0)
	}
	return scores[profileIndex(profile)]
}

// Seed installs a set of previously computed scores without going through
// UpdateFacilityCounts, used to warm-start from a RedisCache snapshot at
// startup before any facility counts have been loaded for this process.
func (s *Service) Seed(scores map[network.StationID][4]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sc := range scores {
		s.scores[id] = sc
	}
}

// AcquireSnapshot takes the reader lock for the duration of a single
// search and returns a release function. The engine holds this for the
// entire propagation so a search sees one consistent snapshot even if a
// facility update is in flight and must wait to drain.
func (s *Service) AcquireSnapshot() (release func()) {
	s.mu.RLock()
	return s.mu.RUnlock
}

// UpdateFacilityCounts recomputes the four per-profile scores for every
// affected station and installs them atomically. Rows naming unknown
// station codes are skipped, not fatal; resolve is supplied by the caller
// (normally network.Store.StationID) so this package stays decoupled from
// the network package's loading concerns.
func (s *Service) UpdateFacilityCounts(rows []FacilityRow, resolve func(code string) (network.StationID, bool)) {
	updates := make(map[network.StationID][4]float64)
	for _, row := range rows {
		for _, code := range row.StationCodes {
			id, ok := resolve(code)
			if !ok {
				logrus.WithField("code", code).Warn("facility update: skipping unknown station code")
				continue
			}
			updates[id] = [4]float64{
				sigmoid(row.Counts.dot(facilityWeightTable[weighting.PHY])),
				sigmoid(row.Counts.dot(facilityWeightTable[weighting.VIS])),
				sigmoid(row.Counts.dot(facilityWeightTable[weighting.AUD])),
				sigmoid(row.Counts.dot(facilityWeightTable[weighting.ELD])),
			}
		}
	}

	s.mu.Lock()
	for id, scores := range updates {
		s.scores[id] = scores
		if s.cache != nil {
			s.cache.Store(id, scores)
		}
	}
	s.mu.Unlock()

	logrus.WithField("stations_updated", len(updates)).Info("facility scores applied")
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-sigmoidK*x))
}

func profileIndex(p weighting.Profile) int {
	switch p {
	case weighting.PHY:
		return 0
	case weighting.VIS:
		return 1
	case weighting.AUD:
		return 2
	case weighting.ELD:
		return 3
	default:
		return 0
	}
}
