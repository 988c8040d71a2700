package main

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seoul-transit/access-router/internal/facility"
	"github.com/seoul-transit/access-router/internal/network"
)

var updateFacilitiesPath string

// facilityFileRow mirrors one row of a facilities.yaml update batch.
type facilityFileRow struct {
	StationCodes []string `yaml:"station_codes"`
	Charger      float64  `yaml:"charger"`
	Elevator     float64  `yaml:"elevator"`
	Escalator    float64  `yaml:"escalator"`
	Lift         float64  `yaml:"lift"`
	MovingWalk   float64  `yaml:"moving_walk"`
	SafePlatform float64  `yaml:"safe_platform"`
	SignPhone    float64  `yaml:"sign_phone"`
	Toilet       float64  `yaml:"toilet"`
	Helper       float64  `yaml:"helper"`
}

var updateFacilitiesCmd = &cobra.Command{
	Use:   "update-facilities",
	Short: "Apply a facility-count update batch from a YAML file",
	Run: func(cmd *cobra.Command, args []string) {
		store, facilities, _ := loadRuntime()

		data, err := os.ReadFile(updateFacilitiesPath)
		if err != nil {
			logrus.Fatalf("update-facilities: reading %s: %v", updateFacilitiesPath, err)
		}
		var fileRows []facilityFileRow
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&fileRows); err != nil {
			logrus.Fatalf("update-facilities: parsing %s: %v", updateFacilitiesPath, err)
		}

		rows := make([]facility.FacilityRow, 0, len(fileRows))
		for _, r := range fileRows {
			rows = append(rows, facility.FacilityRow{
				StationCodes: r.StationCodes,
				Counts: facility.Counts{
					Charger: r.Charger, Elevator: r.Elevator, Escalator: r.Escalator,
					Lift: r.Lift, MovingWalk: r.MovingWalk, SafePlatform: r.SafePlatform,
					SignPhone: r.SignPhone, Toilet: r.Toilet, Helper: r.Helper,
				},
			})
		}

		resolve := func(code string) (network.StationID, bool) {
			id, err := store.StationID(code)
			return id, err == nil
		}
		facilities.UpdateFacilityCounts(rows, resolve)
	},
}

func init() {
	updateFacilitiesCmd.Flags().StringVar(&updateFacilitiesPath, "file", "", "Path to a facilities.yaml update batch")
	_ = updateFacilitiesCmd.MarkFlagRequired("file")
}
