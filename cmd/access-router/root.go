package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seoul-transit/access-router/internal/config"
	"github.com/seoul-transit/access-router/internal/facility"
	"github.com/seoul-transit/access-router/internal/network"
	"github.com/seoul-transit/access-router/internal/store/pg"
)

var (
	dataDir    string
	configPath string
	logLevel   string
	redisAddr  string
	dataSource string
	postgresDSN string
)

var rootCmd = &cobra.Command{
	Use:   "access-router",
	Short: "Accessibility-profile-aware subway route finder for the Seoul metropolitan network",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
}

// Execute runs the root command; the caller treats any error as fatal.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "Directory containing stations.yaml, line_stations.yaml, transfers.yaml, congestion.yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Optional Redis address for convenience-score warm-start (empty disables)")
	rootCmd.PersistentFlags().StringVar(&dataSource, "data-source", "yaml", "Network data source: yaml or postgres")
	rootCmd.PersistentFlags().StringVar(&postgresDSN, "postgres-dsn", "", "Postgres DSN, required when --data-source=postgres")

	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(updateFacilitiesCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadRuntime wires a network.Store and facility.Service from --data-dir
// and --config, the shared setup for every subcommand that touches the
// core engine.
func loadRuntime() (*network.Store, *facility.Service, config.Config) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("loading config: %v", err)
	}
	if rootCmd.PersistentFlags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}

	store, err := loadStore(cfg.DataDir)
	if err != nil {
		logrus.Fatalf("loading network data: %v", err)
	}

	var cache facility.CacheWriter
	var redisCache *facility.RedisCache
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		redisCache = facility.NewRedisCache(client, 24*time.Hour)
		cache = redisCache
	}

	facilities := facility.NewService(cache)
	if redisCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		seeded := redisCache.WarmStart(ctx, store.AllStationIDs())
		cancel()
		facilities.Seed(seeded)
		logrus.WithField("stations_warm_started", len(seeded)).Info("facility scores warm-started from redis")
	}
	return store, facilities, cfg
}

// loadStore picks the YAML or Postgres loader per --data-source. YAML
// remains the default; Postgres is an optional deployment backend for the
// same persisted-input shape. Both feed network.Build, which tests use
// directly; no test reads YAML files or Postgres.
func loadStore(yamlDataDir string) (*network.Store, error) {
	if dataSource != "postgres" {
		return network.LoadDir(yamlDataDir)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pg.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return pg.LoadStore(ctx, pool)
}
