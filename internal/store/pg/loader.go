// Package pg is an optional Postgres-backed loader for the persisted
// network inputs (stations, line adjacency, transfers, congestion
// buckets), used instead of internal/network's YAML loader when
// cmd/access-router is started with --data-source=postgres. Grounded on
// shivamshaw23-Hintro's pgxpool connection handling and query style.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seoul-transit/access-router/internal/network"
)

// NewPool opens a pgxpool against dsn, matching Hintro's NewPostgresPool
// health-check-on-connect discipline.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}
	return pool, nil
}

// LoadStore reads the four persisted-input tables from Postgres and
// assembles a network.Store, sharing network.Build with the YAML loader so
// both sources produce an identical in-memory representation.
func LoadStore(ctx context.Context, pool *pgxpool.Pool) (*network.Store, error) {
	stations, err := loadStations(ctx, pool)
	if err != nil {
		return nil, err
	}
	lineStations, err := loadLineStations(ctx, pool)
	if err != nil {
		return nil, err
	}
	transfers, err := loadTransfers(ctx, pool)
	if err != nil {
		return nil, err
	}
	congestion, err := loadCongestion(ctx, pool)
	if err != nil {
		return nil, err
	}
	return network.Build(stations, lineStations, transfers, congestion)
}

func loadStations(ctx context.Context, pool *pgxpool.Pool) ([]network.StationInput, error) {
	rows, err := pool.Query(ctx, `SELECT code, name, line, lat, lon, station_order FROM stations`)
	if err != nil {
		return nil, fmt.Errorf("pg: query stations: %w", err)
	}
	defer rows.Close()

	var out []network.StationInput
	for rows.Next() {
		var s network.StationInput
		if err := rows.Scan(&s.Code, &s.Name, &s.Line, &s.Lat, &s.Lon, &s.Order); err != nil {
			return nil, fmt.Errorf("pg: scan station row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func loadLineStations(ctx context.Context, pool *pgxpool.Pool) ([]network.LineStationInput, error) {
	rows, err := pool.Query(ctx, `SELECT code, line, up_codes, down_codes FROM line_stations`)
	if err != nil {
		return nil, fmt.Errorf("pg: query line_stations: %w", err)
	}
	defer rows.Close()

	var out []network.LineStationInput
	for rows.Next() {
		var s network.LineStationInput
		if err := rows.Scan(&s.Code, &s.Line, &s.Up, &s.Down); err != nil {
			return nil, fmt.Errorf("pg: scan line_station row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func loadTransfers(ctx context.Context, pool *pgxpool.Pool) ([]network.TransferInput, error) {
	rows, err := pool.Query(ctx, `SELECT code, from_line, to_line, distance_meters, to_code FROM transfers`)
	if err != nil {
		return nil, fmt.Errorf("pg: query transfers: %w", err)
	}
	defer rows.Close()

	var out []network.TransferInput
	for rows.Next() {
		var t network.TransferInput
		if err := rows.Scan(&t.Code, &t.FromLine, &t.ToLine, &t.DistanceMeters, &t.ToCode); err != nil {
			return nil, fmt.Errorf("pg: scan transfer row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func loadCongestion(ctx context.Context, pool *pgxpool.Pool) ([]network.CongestionInput, error) {
	rows, err := pool.Query(ctx, `SELECT code, line, direction, day_class, buckets FROM congestion_buckets`)
	if err != nil {
		return nil, fmt.Errorf("pg: query congestion_buckets: %w", err)
	}
	defer rows.Close()

	var out []network.CongestionInput
	for rows.Next() {
		var c network.CongestionInput
		if err := rows.Scan(&c.Code, &c.Line, &c.Direction, &c.DayClass, &c.Buckets); err != nil {
			return nil, fmt.Errorf("pg: scan congestion row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
