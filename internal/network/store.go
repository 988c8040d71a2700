package network

import (
	"fmt"
	"math"
	"time"

	"github.com/bluele/gcache"
	"github.com/seoul-transit/access-router/internal/errs"
)

type transferKey struct {
	station  StationID
	fromLine string
	toLine   string
}

// Store is the immutable in-memory network data store (C1). It is built
// once at startup via Build and is safe for concurrent reads without
// external locking: its station, line, transfer and congestion tables never
// mutate after construction, and interCache is a gcache LRU that does its
// own locking.
type Store struct {
	stations []Station
	idByCode map[string]StationID

	// lineSeq holds each line's stations in ascending Order rank.
	lineSeq map[string][]StationID
	// stationsByLine indexes every Station record bound to a line; NewStore
	// sorts each entry by Order to build lineSeq.
	stationsByLine map[string][]StationID
	// hubByName groups station records sharing a normalized name, so the
	// engine can enumerate "lines available at u" for the transfer phase.
	hubByName map[string][]StationID

	// adjacency holds the explicit per-direction neighbor lists as loaded
	// from the persisted lineStations input (not re-derived from Order,
	// since the persisted feed provides adjacency directly).
	adjacency map[StationID]Adjacency

	transfers  map[transferKey]TransferInfo
	congestion *CongestionTable

	// interCache memoizes intermediateStations results: ride-leg endpoint
	// pairs repeat heavily across itinerary reconstruction fan-out while
	// the underlying line order never changes after Build.
	interCache gcache.Cache
}

// Adjacency holds the directional neighbor lists for one station on its own
// line, in travel order, as loaded from the persisted lineStations input.
type Adjacency struct {
	Up   []StationID
	Down []StationID
}

// NewStore assembles a Store from already-resolved station/line/transfer
// data. Loader code (loader.go) builds these inputs from persisted YAML or
// Postgres rows and calls NewStore once at startup.
func NewStore(stations []Station, adjacency map[StationID]Adjacency, transfers map[transferKey]TransferInfo, congestion *CongestionTable) *Store {
	s := &Store{
		stations:       stations,
		idByCode:       make(map[string]StationID, len(stations)),
		lineSeq:        make(map[string][]StationID),
		stationsByLine: make(map[string][]StationID),
		hubByName:      make(map[string][]StationID),
		adjacency:      adjacency,
		transfers:      transfers,
		congestion:     congestion,
		interCache:     gcache.New(4096).LRU().Build(),
	}
	for _, st := range stations {
		s.idByCode[st.Code] = st.ID
		s.stationsByLine[st.Line] = append(s.stationsByLine[st.Line], st.ID)
		s.hubByName[st.Name] = append(s.hubByName[st.Name], st.ID)
	}
	for line, ids := range s.stationsByLine {
		ordered := make([]StationID, len(ids))
		copy(ordered, ids)
		sortByOrder(ordered, s.stations)
		s.lineSeq[line] = ordered
	}
	return s
}

func sortByOrder(ids []StationID, stations []Station) {
	// Insertion sort: per-line station counts are small (tens to low
	// hundreds), and Order entries arrive mostly pre-sorted from the loader.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && stations[ids[j-1]].Order > stations[ids[j]].Order; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// StationID resolves an external code to the internal id. Returns
// errs.UnknownStation if the code is not in the store.
func (s *Store) StationID(code string) (StationID, error) {
	id, ok := s.idByCode[code]
	if !ok {
		return 0, errs.New(errs.UnknownStation, "unknown station code %q", code)
	}
	return id, nil
}

// AllStationIDs returns every station id in the store, in load order. Used
// by callers warm-starting a cache keyed by station id.
func (s *Store) AllStationIDs() []StationID {
	ids := make([]StationID, len(s.stations))
	for i, st := range s.stations {
		ids[i] = st.ID
	}
	return ids
}

// Code returns the external code for an internal id.
func (s *Store) Code(id StationID) string {
	return s.stations[id].Code
}

// StationByID returns the immutable station record.
func (s *Store) StationByID(id StationID) Station {
	return s.stations[id]
}

// LinesAt returns every line tag available at the interchange hub sharing
// the normalized name of id's own station (including id's own line).
func (s *Store) LinesAt(id StationID) []string {
	lines := make([]string, 0, 2)
	for _, sid := range s.hubByName[s.stations[id].Name] {
		lines = append(lines, s.stations[sid].Line)
	}
	return lines
}

// HubStations returns every station record sharing id's interchange hub
// (including id itself), one per line available there.
func (s *Store) HubStations(id StationID) []StationID {
	return s.hubByName[s.stations[id].Name]
}

// NextOnLine returns the stations reachable from id along its own line, in
// each direction, in travel order. If line differs from id's own line the
// result is empty: a station cannot ride a line it isn't bound to.
func (s *Store) NextOnLine(id StationID, line string) (up []StationID, down []StationID) {
	if s.stations[id].Line != line {
		return nil, nil
	}
	adj := s.adjacency[id]
	return adj.Up, adj.Down
}

func indexOf(seq []StationID, id StationID) int {
	for i, s := range seq {
		if s == id {
			return i
		}
	}
	return -1
}

// DirectionOf derives the travel direction between two successive stations
// on the given line from their ordered ranks: ascending is UP (IN on a loop
// line, as isLoopLine decides from the line tag), descending is DOWN (OUT).
func (s *Store) DirectionOf(line string, from, to StationID) Direction {
	fromOrder, toOrder := s.stations[from].Order, s.stations[to].Order
	loop := isLoopLine(line)
	switch {
	case toOrder > fromOrder:
		if loop {
			return IN
		}
		return UP
	case toOrder < fromOrder:
		if loop {
			return OUT
		}
		return DOWN
	default:
		return UNKNOWN
	}
}

// isLoopLine is a naming convention: loop lines carry a "순환" marker in
// their line tag (e.g. "2호선(순환선)"); this reports whether the rune '순'
// appears anywhere in the tag rather than reading a loaded flag, since no itinerary scenario in
// this spec depends on distinguishing the two beyond direction labeling.
func isLoopLine(line string) bool {
	for _, r := range line {
		if r == '순' {
			return true
		}
	}
	return false
}

// Transfer looks up an interchange record. A missing entry is not an
// error: it means "no interchange available" and the transfer phase simply
// does not produce a candidate for that (fromLine, toLine) pair.
func (s *Store) Transfer(id StationID, fromLine, toLine string) (TransferInfo, bool) {
	t, ok := s.transfers[transferKey{station: id, fromLine: fromLine, toLine: toLine}]
	return t, ok
}

// Congestion returns the ratio for (id, line, direction, dayClass,
// timeBucket), defaulting to 0.5 when the bucket is missing.
func (s *Store) Congestion(id StationID, line string, dir Direction, day DayClass, bucket string) float64 {
	return s.congestion.Lookup(id, line, dir, day, bucket)
}

// DayClassAt derives the day class for an absolute instant.
func DayClassAt(t time.Time) DayClass {
	switch t.Weekday() {
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	default:
		return Weekday
	}
}

// TimeBucket returns the half-hour bucket key "t_<minutesFromMidnight>" for
// an absolute instant, floored to the nearest 30-minute boundary.
func TimeBucket(t time.Time) string {
	minutes := t.Hour()*60 + t.Minute()
	bucket := (minutes / 30) * 30
	return fmt.Sprintf("t_%d", bucket)
}

// IntermediateStations walks fromId..toId along line's ordered sequence and
// returns every intermediate station plus toId, in travel order, excluding
// fromId. If either endpoint lacks an order entry, returns just toId.
func (s *Store) IntermediateStations(fromID, toID StationID, line string) ([]StationID, error) {
	key := fmt.Sprintf("%d|%d|%s", fromID, toID, line)
	if v, err := s.interCache.Get(key); err == nil {
		return v.([]StationID), nil
	}

	fromSt, toSt := s.stations[fromID], s.stations[toID]
	if fromSt.Order < 0 || toSt.Order < 0 {
		return []StationID{toID}, nil
	}
	seq := s.lineSeq[line]
	fromPos, toPos := indexOf(seq, fromID), indexOf(seq, toID)
	if fromPos < 0 || toPos < 0 {
		return nil, errs.New(errs.InconsistentNetwork, "endpoints %d,%d not found on line %q", fromID, toID, line)
	}

	var out []StationID
	if toPos >= fromPos {
		out = append(out, seq[fromPos+1:toPos+1]...)
	} else {
		for i := fromPos - 1; i >= toPos; i-- {
			out = append(out, seq[i])
		}
	}
	s.interCache.Set(key, out)
	return out, nil
}

// HaversineMeters computes the great-circle distance between two stations.
func HaversineMeters(a, b Station) float64 {
	const earthRadiusM = 6371000.0
	lat1, lat2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}
