// Package engine implements the round-based search engine (component C5):
// round-by-round ride and transfer expansion over per-station label bags,
// pruned by dominance, stopping destination stations from expanding
// further once reached.
package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seoul-transit/access-router/internal/errs"
	"github.com/seoul-transit/access-router/internal/facility"
	"github.com/seoul-transit/access-router/internal/label"
	"github.com/seoul-transit/access-router/internal/network"
	"github.com/seoul-transit/access-router/internal/weighting"
)

// DefaultMaxRounds is substituted for a Request whose MaxRounds is unset
// (UnsetMaxRounds). It is never substituted for an explicit 0: per spec
// §8, maxRounds=0 is a valid request meaning "run zero rounds," which
// only a trivial origin==destination search can satisfy.
const DefaultMaxRounds = 5

// UnsetMaxRounds marks a Request's MaxRounds as not specified by the
// caller, distinct from an explicit 0. Callers that want the default
// round budget must set MaxRounds to this value (or leave it negative);
// Go's int zero value is deliberately NOT treated as "unset," since that
// would make an explicit zero-round request unreachable.
const UnsetMaxRounds = -1

// rideSpeedDivisor is the fixed scaling constant in distanceMeters/550.
// Spec freezes this verbatim: it is not a walking or vehicle "speed" to be
// re-derived, just the formula that produces minutes with a 1-minute floor.
const rideSpeedDivisor = 550.0

// Request is the core invocation's input (spec §6 findRoutes).
type Request struct {
	OriginCode            string
	DestinationCodes      []string
	DepartureEpochSeconds int64
	Profile               weighting.Profile
	// MaxRounds is the round budget. 0 means run zero rounds (only a
	// trivial origin==destination result is possible). A negative value,
	// including UnsetMaxRounds, substitutes DefaultMaxRounds.
	MaxRounds int
}

// Engine runs searches against an immutable network store and a
// (possibly concurrently updated) facility score service.
type Engine struct {
	store      *network.Store
	facilities *facility.Service
}

// New builds an Engine over a network store and facility score service.
func New(store *network.Store, facilities *facility.Service) *Engine {
	return &Engine{store: store, facilities: facilities}
}

// Result is the engine's raw output: every label that landed at a
// destination station, plus the pool it belongs to. internal/itinerary
// turns these into ranked, reconstructed itineraries.
type Result struct {
	Pool              *label.Pool
	DestinationLabels []int32
	Stats             Stats
}

// Stats reports diagnostic counters for one search. Never feeds back into
// dominance or ranking.
type Stats struct {
	RoundsExecuted int
	LabelsCreated  int
	LabelsPruned   int
	PeakBagSize    int
}

// FindRoutes executes the round-based search described in spec §4.5. It
// acquires a facility-score snapshot for the whole propagation, so
// concurrent UpdateFacilityCounts calls never affect an in-flight search.
func (e *Engine) FindRoutes(ctx context.Context, req Request) (*Result, error) {
	if !req.Profile.Valid() {
		return nil, errs.New(errs.InvalidProfile, "invalid profile %q", req.Profile)
	}
	maxRounds := req.MaxRounds
	if maxRounds < 0 {
		maxRounds = DefaultMaxRounds
	}

	originID, err := e.store.StationID(req.OriginCode)
	if err != nil {
		return nil, err
	}
	destinationIDs := make(map[network.StationID]bool, len(req.DestinationCodes))
	for _, code := range req.DestinationCodes {
		id, err := e.store.StationID(code)
		if err != nil {
			return nil, err
		}
		destinationIDs[id] = true
	}

	release := e.facilities.AcquireSnapshot()
	defer release()

	w := weighting.For(req.Profile)
	pool := label.NewPool(1 << 16)
	bags := make(map[network.StationID]*label.Bag)
	marked := make(map[network.StationID]bool)
	stats := Stats{}

	bagFor := func(id network.StationID) *label.Bag {
		b, ok := bags[id]
		if !ok {
			b = &label.Bag{}
			bags[id] = b
		}
		return b
	}

	for _, sid := range e.store.HubStations(originID) {
		st := e.store.StationByID(sid)
		idx := pool.Add(label.Label{
			Depth: 1, ParentIndex: label.NoParent, StationID: sid,
			CurrentLine: st.Line, Direction: network.UNKNOWN,
			CreatedRound: 0, IsFirstMove: true,
		})
		if label.Insert(pool, w, bagFor(sid), idx, false) {
			marked[sid] = true
		} else {
			stats.LabelsPruned++
		}
	}

	logFields := logrus.Fields{"origin": req.OriginCode, "profile": req.Profile, "max_rounds": maxRounds}
	logrus.WithFields(logFields).Debug("search started")

	for r := 1; r <= maxRounds; r++ {
		if len(marked) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats.RoundsExecuted = r

		queue := make([]network.StationID, 0, len(marked))
		for u := range marked {
			queue = append(queue, u)
		}
		marked = make(map[network.StationID]bool)
		// Map iteration order is randomized; fix a total processing order
		// so identical inputs produce identical bags (and therefore
		// identical ranked output) across runs, per spec §8.
		sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

		for _, u := range queue {
			if destinationIDs[u] {
				continue
			}
			bag := bagFor(u)
			snapshot := append([]int32(nil), bag.Indices...)
			for _, idx := range snapshot {
				l := pool.Get(idx)
				if l.CreatedRound >= r {
					continue
				}
				e.expandRide(pool, bagFor, w, idx, l, u, r, req.DepartureEpochSeconds, marked, &stats)
				e.expandTransfer(pool, bagFor, w, idx, l, u, r, req.Profile, marked, &stats)
			}
			if n := len(bag.Indices); n > stats.PeakBagSize {
				stats.PeakBagSize = n
			}
		}
	}

	var destLabels []int32
	for destID := range destinationIDs {
		if b, ok := bags[destID]; ok {
			destLabels = append(destLabels, b.Indices...)
		}
	}
	// destinationIDs iteration order is randomized too; fix a total order
	// (station id, then pool index) so itinerary.Build's stable score sort
	// breaks ties the same way on every identical call.
	sort.Slice(destLabels, func(i, j int) bool {
		li, lj := pool.Get(destLabels[i]), pool.Get(destLabels[j])
		if li.StationID != lj.StationID {
			return li.StationID < lj.StationID
		}
		return destLabels[i] < destLabels[j]
	})
	stats.LabelsCreated = pool.Len()

	logrus.WithFields(logFields).WithFields(logrus.Fields{
		"rounds": stats.RoundsExecuted, "labels_created": stats.LabelsCreated,
		"labels_pruned": stats.LabelsPruned, "destination_candidates": len(destLabels),
	}).Debug("search finished")

	return &Result{Pool: pool, DestinationLabels: destLabels, Stats: stats}, nil
}

// expandRide performs the ride phase (A) for one label at station u: walks
// successive stations in each applicable direction, accumulating ride time
// and congestion, and inserts a new label at each non-ancestor stop.
func (e *Engine) expandRide(
	pool *label.Pool, bagFor func(network.StationID) *label.Bag, w weighting.Weights,
	parentIdx int32, l *label.Label, u network.StationID, round int,
	departureEpochSeconds int64, marked map[network.StationID]bool, stats *Stats,
) {
	up, down := e.store.NextOnLine(u, l.CurrentLine)
	e.expandDirection(pool, bagFor, w, parentIdx, l, u, up, round, departureEpochSeconds, marked, stats)
	e.expandDirection(pool, bagFor, w, parentIdx, l, u, down, round, departureEpochSeconds, marked, stats)
}

func (e *Engine) expandDirection(
	pool *label.Pool, bagFor func(network.StationID) *label.Bag, w weighting.Weights,
	parentIdx int32, l *label.Label, u network.StationID, hops []network.StationID, round int,
	departureEpochSeconds int64, marked map[network.StationID]bool, stats *Stats,
) {
	if len(hops) == 0 {
		return
	}
	cumulative := 0.0
	prev := u
	for _, v := range hops {
		hopDistance := network.HaversineMeters(e.store.StationByID(prev), e.store.StationByID(v))
		hopTime := math.Max(hopDistance/rideSpeedDivisor, 1.0)
		cumulative += hopTime
		arrivalTime := l.ArrivalTimeMinutes + cumulative

		dir := e.store.DirectionOf(l.CurrentLine, prev, v)
		instant := time.Unix(departureEpochSeconds+int64(arrivalTime*60), 0).UTC()
		dayClass := network.DayClassAt(instant)
		bucket := network.TimeBucket(instant)
		congestion := e.store.Congestion(prev, l.CurrentLine, dir, dayClass, bucket)

		if !pool.AncestorHasStation(parentIdx, v) {
			idx := pool.Add(label.Label{
				ArrivalTimeMinutes: arrivalTime, Transfers: l.Transfers,
				ConvenienceSum: l.ConvenienceSum, CongestionSum: l.CongestionSum + congestion,
				MaxTransferDifficulty: l.MaxTransferDifficulty, Depth: l.Depth + 1,
				ParentIndex: parentIdx, StationID: v, CurrentLine: l.CurrentLine,
				Direction: dir, CreatedRound: round, IsFirstMove: false,
			})
			if label.Insert(pool, w, bagFor(v), idx, false) {
				marked[v] = true
			} else {
				stats.LabelsPruned++
			}
		}
		prev = v
	}
}

// expandTransfer performs the transfer phase (B) for one label at u: for
// every line reachable from u's interchange that differs from the label's
// current line and has a transfer record, inserts a new label on that line.
func (e *Engine) expandTransfer(
	pool *label.Pool, bagFor func(network.StationID) *label.Bag, w weighting.Weights,
	parentIdx int32, l *label.Label, u network.StationID, round int,
	profile weighting.Profile, marked map[network.StationID]bool, stats *Stats,
) {
	for _, line := range e.store.LinesAt(u) {
		if line == l.CurrentLine {
			continue
		}
		info, ok := e.store.Transfer(u, l.CurrentLine, line)
		if !ok {
			continue
		}
		transferTime := weighting.TransferTimeMinutes(info.WalkingDistanceMeters, profile)
		stationScore := e.facilities.Convenience(u, profile)
		newConvenienceSum := l.ConvenienceSum + stationScore
		difficulty := weighting.Difficulty(info.WalkingDistanceMeters, newConvenienceSum)

		idx := pool.Add(label.Label{
			ArrivalTimeMinutes: l.ArrivalTimeMinutes + transferTime, Transfers: l.Transfers + 1,
			ConvenienceSum: newConvenienceSum, CongestionSum: l.CongestionSum,
			MaxTransferDifficulty: math.Max(l.MaxTransferDifficulty, difficulty), Depth: l.Depth + 1,
			ParentIndex: parentIdx, StationID: info.ToStationID, CurrentLine: line,
			Direction: network.UNKNOWN, CreatedRound: round, IsFirstMove: true,
		})
		if label.Insert(pool, w, bagFor(info.ToStationID), idx, true) {
			marked[info.ToStationID] = true
		} else {
			stats.LabelsPruned++
		}
	}
}
