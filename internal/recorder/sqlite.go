package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycle_snapshots (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT,
			last_price   REAL,
			low20        REAL,
			low50        REAL,
			sma200       REAL,
			holding_qty  INTEGER,
			avg_cost     REAL,
			max_price    REAL,
			action_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_ts ON cycle_snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS order_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			side      TEXT,
			quantity  INTEGER,
			price     REAL,
			label     TEXT,
			outcome   TEXT,
			detail    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_ts ON order_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS run_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			event          TEXT,
			run_id         TEXT,
			initial_equity REAL,
			final_equity   REAL,
			return_pct     REAL,
			note           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_ts ON run_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(snap *CycleSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycle_snapshots
		(timestamp, symbol, last_price, low20, low50, sma200,
		 holding_qty, avg_cost, max_price, action_count)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), snap.Symbol, snap.LastPrice,
		snap.Levels.Low20, snap.Levels.Low50, snap.Levels.SMA200,
		snap.HoldingQty, snap.AvgCost, snap.MaxPrice, snap.ActionCount,
	)
	return err
}

func (r *SQLiteRecorder) RecordOrder(evt *OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO order_events
		(timestamp, side, quantity, price, label, outcome, detail)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Side, evt.Quantity, evt.Price,
		evt.Label, evt.Outcome, evt.Detail,
	)
	return err
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO run_events
		(timestamp, event, run_id, initial_equity, final_equity, return_pct, note)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Event, evt.RunID,
		evt.InitialEquity, evt.FinalEquity, evt.ReturnPct, evt.Note,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
