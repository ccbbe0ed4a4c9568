package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TrendSentinel/internal/model"
)

// SQLiteRecorder persists trend runs and trendlines to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	now    func() time.Time
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the API can read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		now:    time.Now,
		logger: log.With().Str("component", "sqlite_recorder").Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trend_runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			source          TEXT,
			start_date      TEXT,
			timeframe_days  INTEGER,
			bar_count       INTEGER,
			last_close      REAL,
			resistance_y1   REAL,
			support_y1      REAL,
			signal_type     TEXT,
			signal_label    TEXT,
			distance_pct    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON trend_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS trendlines (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           INTEGER NOT NULL REFERENCES trend_runs(id),
			symbol           TEXT NOT NULL,
			timeframe_days   INTEGER NOT NULL,
			trendline_number INTEGER NOT NULL,
			start_date       TEXT NOT NULL,
			end_date         TEXT NOT NULL,
			start_price      REAL,
			end_price        REAL,
			slope            REAL,
			trend_type       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trendlines_key ON trendlines(symbol, timeframe_days)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordTrendReport stores the run and replaces the current trendlines for its
// (symbol, timeframe) key in one transaction.
func (r *SQLiteRecorder) RecordTrendReport(rep *model.TrendReport, timeframeDays int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var resY1, supY1 sql.NullFloat64
	if l := rep.Pack.Minor.Resistance; l != nil {
		resY1 = sql.NullFloat64{Float64: l.Y1, Valid: true}
	}
	if l := rep.Pack.Minor.Support; l != nil {
		supY1 = sql.NullFloat64{Float64: l.Y1, Valid: true}
	}
	var sigType, sigLabel string
	var dist float64
	if rep.Signal != nil {
		sigType, sigLabel, dist = string(rep.Signal.Type), rep.Signal.Label, rep.Signal.DistancePct
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO trend_runs
		(timestamp, symbol, source, start_date, timeframe_days, bar_count, last_close,
		 resistance_y1, support_y1, signal_type, signal_label, distance_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), rep.Symbol, rep.Source, rep.Start.Format("2006-01-02"), timeframeDays,
		rep.BarCount, rep.Stats.LastClose, resY1, supY1, sigType, sigLabel, dist,
	)
	if err != nil {
		return fmt.Errorf("insert trend run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("trend run id: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM trendlines WHERE symbol = ? AND timeframe_days = ?`,
		rep.Symbol, timeframeDays); err != nil {
		return fmt.Errorf("clear trendlines: %w", err)
	}
	for _, seg := range rep.Segments {
		if _, err := tx.Exec(`INSERT INTO trendlines
			(run_id, symbol, timeframe_days, trendline_number, start_date, end_date,
			 start_price, end_price, slope, trend_type)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			runID, rep.Symbol, timeframeDays, seg.Number,
			seg.StartDate.Format("2006-01-02"), seg.EndDate.Format("2006-01-02"),
			seg.StartPrice, seg.EndPrice, seg.Slope, string(seg.TrendType),
		); err != nil {
			return fmt.Errorf("insert trendline: %w", err)
		}
	}
	return tx.Commit()
}

// LatestTrendlines returns the stored trendlines for a (symbol, timeframe) key,
// ordered by trendline number.
func (r *SQLiteRecorder) LatestTrendlines(symbol string, timeframeDays int) ([]model.TrendSegment, error) {
	rows, err := r.db.Query(`SELECT trendline_number, start_date, end_date,
			start_price, end_price, slope, trend_type
		FROM trendlines
		WHERE symbol = ? AND timeframe_days = ?
		ORDER BY trendline_number`, symbol, timeframeDays)
	if err != nil {
		return nil, fmt.Errorf("query trendlines: %w", err)
	}
	defer rows.Close()

	var out []model.TrendSegment
	for rows.Next() {
		var seg model.TrendSegment
		var start, end, kind string
		if err := rows.Scan(&seg.Number, &start, &end, &seg.StartPrice, &seg.EndPrice, &seg.Slope, &kind); err != nil {
			return nil, fmt.Errorf("scan trendline: %w", err)
		}
		if seg.StartDate, err = time.Parse("2006-01-02", start); err != nil {
			return nil, fmt.Errorf("parse start_date: %w", err)
		}
		if seg.EndDate, err = time.Parse("2006-01-02", end); err != nil {
			return nil, fmt.Errorf("parse end_date: %w", err)
		}
		seg.TrendType = model.TrendKind(kind)
		out = append(out, seg)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
