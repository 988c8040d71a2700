// Package testutil provides shared test infrastructure for the routing
// engine test suites: a small synthetic Seoul-network fixture exercising
// the named end-to-end scenarios and the adjacency helper it is built with, mirroring
// the role of the teacher's sim/internal/testutil golden-dataset package.
package testutil

import (
	"github.com/seoul-transit/access-router/internal/facility"
	"github.com/seoul-transit/access-router/internal/network"
)

// Station codes used across scenario tests.
const (
	CodeSadang        = "Sd"
	CodeSeocho        = "Sc"
	CodeGangnam       = "G"
	CodeYeoksam       = "Yk"
	CodeJamsil        = "J"
	CodeHongikUniv    = "H"
	CodeCityHallLoop  = "CH2"
	CodeCityHallLine1 = "CH1"
	CodeSeoulStation  = "S"
)

// LoopLineName and Line1Name name the two lines in the fixture. The loop
// line's "(순환선)" suffix triggers isLoopLine's IN/OUT direction tagging.
const (
	LoopLineName = "2호선(순환선)"
	Line1Name    = "1호선"
)

// BuildCodeAdjacency derives, for an ordered sequence of station codes on
// one line, each station's full forward/backward neighbor-code lists —
// the same shape a real loader precomputes once from a line's station
// order. loop wraps the sequence so the last stop's "up" continues back
// around to the first, matching a loop line's topology.
func BuildCodeAdjacency(codes []string, loop bool) map[string]struct{ Up, Down []string } {
	out := make(map[string]struct{ Up, Down []string }, len(codes))
	n := len(codes)
	for i, code := range codes {
		var up, down []string
		for steps := 1; steps < n; steps++ {
			j := i + steps
			if !loop && j >= n {
				break
			}
			up = append(up, codes[j%n])
		}
		for steps := 1; steps < n; steps++ {
			j := i - steps
			if !loop && j < 0 {
				break
			}
			down = append(down, codes[((j%n)+n)%n])
		}
		out[code] = struct{ Up, Down []string }{Up: up, Down: down}
	}
	return out
}

// SeoulFixture is a small synthetic network covering the six named
// end-to-end scenarios from spec §8: a loop line carrying Sadang, Seocho,
// Gangnam, Yeoksam, Jamsil, and Hongik Univ, plus a short "1호선" spur
// reaching Seoul Station via one transfer at City Hall.
type SeoulFixture struct {
	Store      *network.Store
	Facilities *facility.Service
}

// BuildSeoulFixture assembles the network store and an empty facility
// service. Callers seed facility.UpdateFacilityCounts themselves when a
// scenario needs non-default convenience scores.
func BuildSeoulFixture() *SeoulFixture {
	loopCodes := []string{CodeSadang, CodeSeocho, CodeGangnam, CodeYeoksam, CodeJamsil, CodeHongikUniv, CodeCityHallLoop}
	line1Codes := []string{CodeCityHallLine1, CodeSeoulStation}

	stationRows := []network.StationInput{
		{Code: CodeSadang, Name: "Sadang", Line: LoopLineName, Lat: 37.4766, Lon: 126.9816, Order: 0},
		{Code: CodeSeocho, Name: "Seocho", Line: LoopLineName, Lat: 37.4837, Lon: 127.0079, Order: 1},
		{Code: CodeGangnam, Name: "Gangnam", Line: LoopLineName, Lat: 37.4979, Lon: 127.0276, Order: 2},
		{Code: CodeYeoksam, Name: "Yeoksam", Line: LoopLineName, Lat: 37.5000, Lon: 127.0364, Order: 3},
		{Code: CodeJamsil, Name: "Jamsil", Line: LoopLineName, Lat: 37.5133, Lon: 127.1001, Order: 4},
		{Code: CodeHongikUniv, Name: "Hongik Univ", Line: LoopLineName, Lat: 37.5572, Lon: 126.9245, Order: 5},
		{Code: CodeCityHallLoop, Name: "City Hall", Line: LoopLineName, Lat: 37.5660, Lon: 126.9770, Order: 6},
		{Code: CodeCityHallLine1, Name: "City Hall", Line: Line1Name, Lat: 37.5660, Lon: 126.9770, Order: 0},
		{Code: CodeSeoulStation, Name: "Seoul Station", Line: Line1Name, Lat: 37.5547, Lon: 126.9707, Order: 1},
	}

	var lineRows []network.LineStationInput
	loopAdj := BuildCodeAdjacency(loopCodes, true)
	for _, code := range loopCodes {
		adj := loopAdj[code]
		lineRows = append(lineRows, network.LineStationInput{Code: code, Line: LoopLineName, Up: adj.Up, Down: adj.Down})
	}
	line1Adj := BuildCodeAdjacency(line1Codes, false)
	for _, code := range line1Codes {
		adj := line1Adj[code]
		lineRows = append(lineRows, network.LineStationInput{Code: code, Line: Line1Name, Up: adj.Up, Down: adj.Down})
	}

	transferRows := []network.TransferInput{
		{Code: CodeCityHallLoop, FromLine: LoopLineName, ToLine: Line1Name, ToCode: CodeCityHallLine1, DistanceMeters: 180},
		{Code: CodeCityHallLine1, FromLine: Line1Name, ToLine: LoopLineName, ToCode: CodeCityHallLoop, DistanceMeters: 180},
	}

	congestionRows := []network.CongestionInput{
		{Code: CodeHongikUniv, Line: LoopLineName, Direction: "in", DayClass: "weekday", Buckets: map[string]float64{"t_1080": 0.9}},
		{Code: CodeJamsil, Line: LoopLineName, Direction: "in", DayClass: "weekday", Buckets: map[string]float64{"t_1080": 0.3}},
	}

	store, err := network.Build(stationRows, lineRows, transferRows, congestionRows)
	if err != nil {
		panic("testutil: fixture network failed to build: " + err.Error())
	}
	return &SeoulFixture{Store: store, Facilities: facility.NewService(nil)}
}
