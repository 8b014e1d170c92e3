package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// ArchiveDB loads historical matches from the historical_matches table
//
//	CREATE TABLE historical_matches (
//	    league      TEXT NOT NULL,
//	    match_date  DATE NOT NULL,
//	    home_team   TEXT NOT NULL,
//	    away_team   TEXT NOT NULL,
//	    home_goals  INT  NOT NULL,
//	    away_goals  INT  NOT NULL,
//	    result      CHAR(1) NOT NULL,
//	    ref_home    NUMERIC,
//	    ref_draw    NUMERIC,
//	    ref_away    NUMERIC
//	);
type ArchiveDB struct {
	db *sql.DB
}

// NewArchiveDB opens and pings the archive database
func NewArchiveDB(dsn string) (*ArchiveDB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &ArchiveDB{db: db}, nil
}

// LoadMatches implements ArchiveSource
// Rows come back in chronological order, the way the source files are written.
func (a *ArchiveDB) LoadMatches(ctx context.Context, league string) ([]models.HistoricalMatch, error) {
	query := `
		SELECT league, match_date, home_team, away_team, home_goals, away_goals,
		       result, ref_home, ref_draw, ref_away
		FROM historical_matches
		WHERE league = $1
		ORDER BY match_date ASC
	`

	rows, err := a.db.QueryContext(ctx, query, league)
	if err != nil {
		return nil, fmt.Errorf("query historical matches: %w", err)
	}
	defer rows.Close()

	var matches []models.HistoricalMatch
	for rows.Next() {
		var (
			m                         models.HistoricalMatch
			result                    string
			refHome, refDraw, refAway sql.NullFloat64
		)
		if err := rows.Scan(
			&m.League, &m.Date, &m.HomeTeam, &m.AwayTeam, &m.HomeGoals, &m.AwayGoals,
			&result, &refHome, &refDraw, &refAway,
		); err != nil {
			return nil, fmt.Errorf("scan historical match: %w", err)
		}

		m.Result = models.MatchResult(result)
		m.ReferenceHome = nullablePrice(refHome)
		m.ReferenceDraw = nullablePrice(refDraw)
		m.ReferenceAway = nullablePrice(refAway)
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate historical matches: %w", err)
	}

	return matches, nil
}

// Ping implements ArchiveSource
func (a *ArchiveDB) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close closes the database connection
func (a *ArchiveDB) Close() error {
	return a.db.Close()
}

// nullablePrice maps NULL and non-positive archive prices to nil
func nullablePrice(v sql.NullFloat64) *float64 {
	if !v.Valid || v.Float64 <= 0 {
		return nil
	}
	p := v.Float64
	return &p
}
