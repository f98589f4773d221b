// Package datasetstore persists stops, routes, flights and dataset
// records to Postgres, backing the C5 orchestrator's "best dataset so
// far" and the C11 sync worker's hash-compare/upsert steps (spec.md
// §4.11, §6). Grounded on
// services/audit-svc/internal/repository/postgres.go's shape: a small
// struct wrapping database.DB, one BeginTx/defer-Rollback/Commit batch
// method, individual insert helpers taking a pgx.Tx.
package datasetstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"transit/pkg/database"
	"transit/pkg/domain"
)

// ErrNoDataset is returned by LatestHash when no dataset record exists
// yet (first sync run).
var ErrNoDataset = errors.New("datasetstore: no dataset record found")

// Store persists the network data and dataset metadata records behind
// the C5/C11 Postgres tables named in spec.md §6.
type Store struct {
	db database.DB
}

// New wraps db.
func New(db database.DB) *Store {
	return &Store{db: db}
}

// LatestHash returns the content hash of the most recently persisted
// dataset record, or ErrNoDataset if the table is empty.
func (s *Store) LatestHash(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRow(ctx, `SELECT content_hash FROM datasets ORDER BY created_at DESC LIMIT 1`).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoDataset
		}
		return "", fmt.Errorf("datasetstore: failed to read latest hash: %w", err)
	}
	return hash, nil
}

// Upsert writes d's stops, routes and flights in one transaction and
// inserts a new dataset record, per spec.md §4.11 step 5. On any error
// the whole transaction is rolled back, leaving prior state untouched.
func (s *Store) Upsert(ctx context.Context, d domain.Dataset) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("datasetstore: failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			_ = err // best-effort rollback, nothing else to surface here
		}
	}()

	for _, stop := range d.Stops {
		if err := upsertStop(ctx, tx, stop); err != nil {
			return fmt.Errorf("datasetstore: upsert stop %s: %w", stop.ID, err)
		}
	}
	for _, route := range d.Routes {
		if err := upsertRoute(ctx, tx, route); err != nil {
			return fmt.Errorf("datasetstore: upsert route %s: %w", route.ID, err)
		}
	}
	for _, flight := range d.Flights {
		if err := upsertFlight(ctx, tx, flight); err != nil {
			return fmt.Errorf("datasetstore: upsert flight %s: %w", flight.FlightNumber, err)
		}
	}

	if err := insertDatasetRecord(ctx, tx, d); err != nil {
		return fmt.Errorf("datasetstore: insert dataset record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("datasetstore: failed to commit transaction: %w", err)
	}
	return nil
}

func upsertStop(ctx context.Context, tx pgx.Tx, s domain.Stop) error {
	table := "stops"
	if s.IsVirtual {
		table = "virtual_stops"
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, city, lat, lon, transport, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, city = EXCLUDED.city,
			lat = EXCLUDED.lat, lon = EXCLUDED.lon,
			transport = EXCLUDED.transport, source_id = EXCLUDED.source_id
	`, table)
	_, err := tx.Exec(ctx, query, s.ID, s.Name, s.City, s.Coordinates.Lat, s.Coordinates.Lon, s.Transport, nullString(s.SourceID))
	return err
}

func upsertRoute(ctx context.Context, tx pgx.Tx, r domain.Route) error {
	table := "routes"
	if r.IsVirtual {
		table = "virtual_routes"
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, from_stop_id, to_stop_id, transport, operator, departure_offset_seconds, duration_seconds, distance_km, price, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			from_stop_id = EXCLUDED.from_stop_id, to_stop_id = EXCLUDED.to_stop_id,
			transport = EXCLUDED.transport, operator = EXCLUDED.operator,
			departure_offset_seconds = EXCLUDED.departure_offset_seconds,
			duration_seconds = EXCLUDED.duration_seconds,
			distance_km = EXCLUDED.distance_km, price = EXCLUDED.price,
			source_id = EXCLUDED.source_id
	`, table)
	_, err := tx.Exec(ctx, query,
		r.ID, r.FromStopID, r.ToStopID, r.Transport, nullString(r.Operator),
		int64(r.DepartureOffset.Seconds()), int64(r.Duration.Seconds()), r.DistanceKm, r.Price, nullString(r.SourceID))
	return err
}

func upsertFlight(ctx context.Context, tx pgx.Tx, f domain.Flight) error {
	query := `
		INSERT INTO flights (route_id, flight_number, airline, cancellation_rate_90d, average_delay_minutes, average_occupancy)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (route_id, flight_number) DO UPDATE SET
			airline = EXCLUDED.airline,
			cancellation_rate_90d = EXCLUDED.cancellation_rate_90d,
			average_delay_minutes = EXCLUDED.average_delay_minutes,
			average_occupancy = EXCLUDED.average_occupancy
	`
	_, err := tx.Exec(ctx, query, f.Route.ID, f.FlightNumber, f.Airline, f.CancellationRate90d, f.AverageDelayMinutes, f.AverageOccupancy)
	return err
}

func insertDatasetRecord(ctx context.Context, tx pgx.Tx, d domain.Dataset) error {
	query := `
		INSERT INTO datasets (id, content_hash, mode, quality, fetched_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.Exec(ctx, query, d.ID, d.ContentHash, d.Mode, d.Quality, d.FetchedAt, d.CreatedAt)
	return err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
