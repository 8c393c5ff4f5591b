// Package sqlite persists a history of completed analyses so the dashboard
// can show how a symbol's signals evolved across requests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"analysis-systemv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryConfig configures the history store.
type HistoryConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/analysis.db"
}

// History is a single-writer SQLite store of analysis outcomes.
type History struct {
	db *sql.DB
}

// Entry is one recorded analysis outcome.
type Entry struct {
	ID            int64     `json:"id"`
	Symbol        string    `json:"symbol"`
	Period        string    `json:"period"`
	MACDSignal    string    `json:"macd_signal"`
	RSISignal     string    `json:"rsi_signal"`
	BollSignal    string    `json:"boll_signal"`
	LastPrice     float64   `json:"last_price"`
	ChangePercent float64   `json:"change_percent"`
	Points        int       `json:"points"`
	CreatedAt     time.Time `json:"created_at"`
}

// New opens the database, enables WAL mode, and ensures the schema.
func New(cfg HistoryConfig) (*History, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single-writer pool
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened history database at %s", cfg.DBPath)
	return &History{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_history (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol         TEXT    NOT NULL,
			period         TEXT    NOT NULL,
			macd_signal    TEXT    NOT NULL,
			rsi_signal     TEXT    NOT NULL,
			boll_signal    TEXT    NOT NULL,
			last_price     REAL    NOT NULL,
			change_percent REAL    NOT NULL,
			points         INTEGER NOT NULL,
			created_at     INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_history_symbol_ts
			ON analysis_history (symbol, created_at DESC);
	`)
	return err
}

// DB returns the underlying sql.DB for health checks.
func (h *History) DB() *sql.DB { return h.db }

// Close closes the database.
func (h *History) Close() error { return h.db.Close() }

// Record inserts one analysis outcome.
func (h *History) Record(ctx context.Context, result *model.Result) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO analysis_history
			(symbol, period, macd_signal, rsi_signal, boll_signal, last_price, change_percent, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Symbol,
		result.Period,
		result.LastSignals[model.StrategyMACD],
		result.LastSignals[model.StrategyRSI],
		result.LastSignals[model.StrategyBollinger],
		result.Summary.LastPrice,
		result.Summary.ChangePercent,
		result.Summary.Points,
		time.Now().UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite insert history: %w", err)
	}
	return nil
}

// Recent returns the most recent entries for a symbol, newest first.
// An empty symbol returns entries across all symbols.
func (h *History) Recent(ctx context.Context, symbol string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, symbol, period, macd_signal, rsi_signal, boll_signal,
		       last_price, change_percent, points, created_at
		FROM analysis_history`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &e.Symbol, &e.Period, &e.MACDSignal, &e.RSISignal, &e.BollSignal,
			&e.LastPrice, &e.ChangePercent, &e.Points, &ts); err != nil {
			return nil, fmt.Errorf("sqlite scan history: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
