// Package label implements the label pool and dominance component (C4):
// label record layout, parent-index ancestry, the dominance predicate, and
// cycle prevention.
package label

import "github.com/seoul-transit/access-router/internal/network"

// NoParent marks an origin label with no predecessor.
const NoParent int32 = -1

// Label is one search state. Labels are arena-allocated in a Pool and
// referenced by index; ParentIndex is always strictly less than the
// label's own index, which makes the label forest acyclic by construction.
type Label struct {
	ArrivalTimeMinutes    float64
	Transfers             int
	ConvenienceSum        float64
	CongestionSum         float64
	MaxTransferDifficulty float64
	Depth                 int
	ParentIndex           int32
	StationID             network.StationID
	CurrentLine           string
	Direction             network.Direction
	CreatedRound          int
	IsFirstMove           bool
}

// AvgConvenience is convenienceSum/depth, per spec §3. Zero depth (should
// not occur for any inserted label) returns 0 rather than dividing by zero.
func (l *Label) AvgConvenience() float64 {
	if l.Depth == 0 {
		return 0
	}
	return l.ConvenienceSum / float64(l.Depth)
}

// AvgCongestion is congestionSum/depth.
func (l *Label) AvgCongestion() float64 {
	if l.Depth == 0 {
		return 0
	}
	return l.CongestionSum / float64(l.Depth)
}

