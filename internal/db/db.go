package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"itinerary-geometry/internal/gazetteer"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// FetchPlaces loads curated places for the gazetteer from table (optionally
// schema-qualified, default schema public). The table needs id and name
// text columns plus either lat/lon or a PostGIS point column loc.
func FetchPlaces(ctx context.Context, db *sql.DB, table string) ([]gazetteer.Place, error) {
	schema, name := splitTable(table)
	latlon, err := hasColumns(ctx, db, schema, name, "lat", "lon", "loc")
	if err != nil {
		return nil, fmt.Errorf("introspect %s columns: %w", table, err)
	}
	var layout coordLayout
	switch {
	case latlon["lat"] && latlon["lon"]:
		layout = layoutLatLon
	case latlon["loc"]:
		layout = layoutPostGIS
	default:
		return nil, fmt.Errorf("%s missing expected columns (lat/lon or loc)", table)
	}

	rows, err := db.QueryContext(ctx, placesQuery(pgx.Identifier{schema, name}.Sanitize(), layout))
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	var places []gazetteer.Place
	for rows.Next() {
		var p gazetteer.Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Lat, &p.Lon); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

type coordLayout int

const (
	layoutLatLon coordLayout = iota
	layoutPostGIS
)

func placesQuery(ident string, layout coordLayout) string {
	if layout == layoutPostGIS {
		return `SELECT COALESCE(id::text, ''), COALESCE(name, ''),
                    ST_Y(loc::geometry), ST_X(loc::geometry)
             FROM ` + ident + ` WHERE loc IS NOT NULL ORDER BY id`
	}
	return `SELECT COALESCE(id::text, ''), COALESCE(name, ''), lat, lon
             FROM ` + ident + ` WHERE lat IS NOT NULL AND lon IS NOT NULL ORDER BY id`
}

func splitTable(table string) (schema, name string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "public", table
}

// hasColumns returns a map of requested column names to existence for the given table.
func hasColumns(ctx context.Context, db *sql.DB, schema, table string, cols ...string) (map[string]bool, error) {
	res := make(map[string]bool, len(cols))
	if len(cols) == 0 {
		return res, nil
	}
	// Initialize to false
	for _, c := range cols {
		res[c] = false
	}
	q := `SELECT column_name FROM information_schema.columns
          WHERE table_schema = $1 AND table_name = $2 AND column_name = ANY($3)`
	rows, err := db.QueryContext(ctx, q, schema, table, cols)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		res[name] = true
	}
	return res, rows.Err()
}
