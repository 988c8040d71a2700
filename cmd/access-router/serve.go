package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seoul-transit/access-router/internal/engine"
	"github.com/seoul-transit/access-router/internal/facility"
	"github.com/seoul-transit/access-router/internal/itinerary"
	"github.com/seoul-transit/access-router/internal/network"
	"github.com/seoul-transit/access-router/internal/weighting"
)

var serveAddr string

// serveCmd is a thin HTTP adapter over the core engine, not a feature the
// core itself needs: it exists to demonstrate the external interface from
// spec §6 over the wire without absorbing session/pub-sub machinery.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the routing engine over a minimal HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		store, facilities, cfg := loadRuntime()
		eng := engine.New(store, facilities)

		router := mux.NewRouter()
		router.HandleFunc("/routes", routesHandler(eng, store, cfg.MaxRounds)).Methods(http.MethodPost)
		router.HandleFunc("/facilities", facilitiesHandler(store, facilities)).Methods(http.MethodPost)

		logrus.WithField("addr", serveAddr).Info("access-router serving")
		if err := http.ListenAndServe(serveAddr, router); err != nil {
			logrus.Fatalf("serve: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
}

type routesRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Profile     string `json:"profile"`
	DepartAt    int64  `json:"depart_at"`
	MaxRounds   int    `json:"max_rounds"`
}

func routesHandler(eng *engine.Engine, store *network.Store, defaultMaxRounds int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req routesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		maxRounds := req.MaxRounds
		if maxRounds == 0 {
			maxRounds = defaultMaxRounds
		}

		profile := weighting.Profile(req.Profile)
		result, err := eng.FindRoutes(r.Context(), engine.Request{
			OriginCode: req.Origin, DestinationCodes: []string{req.Destination},
			DepartureEpochSeconds: req.DepartAt, Profile: profile, MaxRounds: maxRounds,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		itineraries, err := itinerary.Build(store, weighting.For(profile), result.Pool, result.DestinationLabels, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, itineraries)
	}
}

type facilitiesRequest struct {
	Rows []facilitiesRow `json:"rows"`
}

type facilitiesRow struct {
	StationCodes []string        `json:"station_codes"`
	Counts       facility.Counts `json:"counts"`
}

func facilitiesHandler(store *network.Store, facilities *facility.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req facilitiesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rows := make([]facility.FacilityRow, 0, len(req.Rows))
		for _, row := range req.Rows {
			rows = append(rows, facility.FacilityRow{StationCodes: row.StationCodes, Counts: row.Counts})
		}
		resolve := func(code string) (network.StationID, bool) {
			id, err := store.StationID(code)
			return id, err == nil
		}
		facilities.UpdateFacilityCounts(rows, resolve)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
