package collector

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"TrendSentinel/internal/model"
)

// dailyBarsQuery selects the trailing $2 rows of daily_data for a symbol, oldest first.
const dailyBarsQuery = `
	SELECT date, open, high, low, close, volume FROM (
		SELECT date, open, high, low, close, volume
		FROM daily_data
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT $2
	) recent
	ORDER BY date ASC`

// PostgresFetcher implements Fetcher over the dashboard's daily_data table.
type PostgresFetcher struct {
	db *sql.DB
}

// NewPostgresFetcher opens a lib/pq connection pool and verifies it.
func NewPostgresFetcher(ctx context.Context, dsn string) (*PostgresFetcher, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Info().Str("component", "postgres_fetcher").Msg("postgres bar source connected")
	return &PostgresFetcher{db: db}, nil
}

// NewPostgresFetcherFromDB wraps an existing pool.
func NewPostgresFetcherFromDB(db *sql.DB) *PostgresFetcher {
	return &PostgresFetcher{db: db}
}

func (f *PostgresFetcher) Name() string { return "postgres" }

func (f *PostgresFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	rows, err := f.db.QueryContext(ctx, dailyBarsQuery, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("query daily_data: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan daily_data: %w", err)
		}
		b.Time = b.Time.UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily_data: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("postgres %s: %w", symbol, ErrNoBars)
	}
	return bars, nil
}

// Close releases the connection pool.
func (f *PostgresFetcher) Close() error {
	return f.db.Close()
}
