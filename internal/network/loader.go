package network

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StationInput mirrors one entry of the persisted "stations" input:
// map stationCode → {name, line, lat, lon}, plus the order rank from the
// persisted "stationOrder" input, folded in here since both are keyed by
// the same (code, line) pair. Exported so internal/store/pg can assemble
// the same shape from Postgres rows and share Build with the YAML loader.
type StationInput struct {
	Code  string  `yaml:"code"`
	Name  string  `yaml:"name"`
	Line  string  `yaml:"line"`
	Lat   float64 `yaml:"lat"`
	Lon   float64 `yaml:"lon"`
	Order int     `yaml:"order"`
}

// LineStationInput mirrors one entry of the persisted "lineStations"
// input: map (stationCode, line) → {up: [code], down: [code]}.
type LineStationInput struct {
	Code string   `yaml:"code"`
	Line string   `yaml:"line"`
	Up   []string `yaml:"up"`
	Down []string `yaml:"down"`
}

// TransferInput mirrors one entry of the persisted "transfers" input:
// map (stationCode, fromLine, toLine) → {distance}.
type TransferInput struct {
	Code           string  `yaml:"code"`
	FromLine       string  `yaml:"from_line"`
	ToLine         string  `yaml:"to_line"`
	DistanceMeters float64 `yaml:"distance_meters"`
	ToCode         string  `yaml:"to_code"`
}

// CongestionInput mirrors one entry of the persisted "congestion" input:
// map (stationCode, line, direction, dayClass) → map timeBucket → ratio.
type CongestionInput struct {
	Code      string             `yaml:"code"`
	Line      string             `yaml:"line"`
	Direction string             `yaml:"direction"`
	DayClass  string             `yaml:"day_class"`
	Buckets   map[string]float64 `yaml:"buckets"`
}

// LoadDir reads stations.yaml, line_stations.yaml, transfers.yaml, and
// congestion.yaml from dataDir and builds a ready-to-use Store. Strict
// field decoding (KnownFields) surfaces schema typos at load time rather
// than silently dropping them.
func LoadDir(dataDir string) (*Store, error) {
	var stationRows []StationInput
	if err := decodeStrict(filepath.Join(dataDir, "stations.yaml"), &stationRows); err != nil {
		return nil, err
	}
	var lineRows []LineStationInput
	if err := decodeStrict(filepath.Join(dataDir, "line_stations.yaml"), &lineRows); err != nil {
		return nil, err
	}
	var transferRows []TransferInput
	if err := decodeStrict(filepath.Join(dataDir, "transfers.yaml"), &transferRows); err != nil {
		return nil, err
	}
	var congestionRows []CongestionInput
	if err := decodeStrict(filepath.Join(dataDir, "congestion.yaml"), &congestionRows); err != nil {
		return nil, err
	}
	return Build(stationRows, lineRows, transferRows, congestionRows)
}

func decodeStrict(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// Build assembles a Store from parsed persisted-input rows. Exposed
// separately from LoadDir so the Postgres loader (internal/store/pg) can
// share the same assembly logic.
func Build(stationRows []StationInput, lineRows []LineStationInput, transferRows []TransferInput, congestionRows []CongestionInput) (*Store, error) {
	stations := make([]Station, 0, len(stationRows))
	idByCode := make(map[string]StationID, len(stationRows))
	for _, r := range stationRows {
		id := StationID(len(stations))
		idByCode[r.Code] = id
		stations = append(stations, Station{
			ID: id, Code: r.Code, Name: r.Name, Line: r.Line,
			Lat: r.Lat, Lon: r.Lon, Order: r.Order,
		})
	}

	adjacency := make(map[StationID]Adjacency, len(lineRows))
	for _, r := range lineRows {
		id, ok := idByCode[r.Code]
		if !ok {
			continue // unknown code in a supplemental table is skipped, not fatal
		}
		adjacency[id] = Adjacency{
			Up:   resolveCodes(idByCode, r.Up),
			Down: resolveCodes(idByCode, r.Down),
		}
	}

	transfers := make(map[transferKey]TransferInfo, len(transferRows))
	for _, r := range transferRows {
		id, ok := idByCode[r.Code]
		if !ok {
			continue
		}
		toID, ok := idByCode[r.ToCode]
		if !ok {
			continue
		}
		transfers[transferKey{station: id, fromLine: r.FromLine, toLine: r.ToLine}] = TransferInfo{
			WalkingDistanceMeters: r.DistanceMeters,
			ToStationID:           toID,
		}
	}

	buckets := make(map[congestionKey]map[string]float64, len(congestionRows))
	for _, r := range congestionRows {
		id, ok := idByCode[r.Code]
		if !ok {
			continue
		}
		dir := parseDirection(r.Direction)
		day := parseDayClass(r.DayClass)
		buckets[congestionKey{station: id, line: r.Line, dir: dir, day: day}] = r.Buckets
	}

	return NewStore(stations, adjacency, transfers, NewCongestionTable(buckets)), nil
}

func resolveCodes(idByCode map[string]StationID, codes []string) []StationID {
	out := make([]StationID, 0, len(codes))
	for _, c := range codes {
		if id, ok := idByCode[c]; ok {
			out = append(out, id)
		}
	}
	return out
}

func parseDirection(s string) Direction {
	switch s {
	case "up":
		return UP
	case "down":
		return DOWN
	case "in":
		return IN
	case "out":
		return OUT
	default:
		return UNKNOWN
	}
}

func parseDayClass(s string) DayClass {
	switch s {
	case "sat":
		return Saturday
	case "sun":
		return Sunday
	default:
		return Weekday
	}
}
