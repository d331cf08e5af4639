package storage

import (
	"database/sql"
	"fmt"
	"time"

	"market-simulator/src/logger"
	"market-simulator/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// AsyncSQLiteJournal persists the broadcast trade stream to a local SQLite
// file. The table survives restarts, retention is enforced by CleanupOldData.
// -----------------------------------------------------------------------------

type AsyncSQLiteJournal struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteJournal(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteJournal, error) {
	return &AsyncSQLiteJournal{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteJournal) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteJournal) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string.
	// Several trades can share one millisecond, so the order id is the key
	query := `
		CREATE TABLE IF NOT EXISTS trades (
			buy_order_id TEXT PRIMARY KEY,
			sell_order_id TEXT,
			symbol TEXT,
			price REAL,
			quantity INTEGER,
			timestamp INTEGER
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create trades: %w", err)
	}

	query = `CREATE INDEX IF NOT EXISTS idx_trades_symbol_ts ON trades (symbol, timestamp);`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create trades index: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteJournal) SaveTradesBulk(rows []models.MSymbolTrade) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO trades (buy_order_id, sell_order_id, symbol, price, quantity, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		t := row.Trade
		_, err := stmt.Exec(t.BuyOrderID, t.SellOrderID, row.Symbol, t.Price, t.Quantity, t.Timestamp)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteJournal) RecentTrades(symbol string, limit int) ([]models.MTrade, error) {
	if limit <= 0 {
		return []models.MTrade{}, nil
	}

	rows, err := d.DB.Query(`
		SELECT buy_order_id, sell_order_id, price, quantity, timestamp
		FROM trades WHERE symbol = ?
		ORDER BY timestamp DESC LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	newestFirst := []models.MTrade{}
	for rows.Next() {
		var t models.MTrade
		if err := rows.Scan(&t.BuyOrderID, &t.SellOrderID, &t.Price, &t.Quantity, &t.Timestamp); err != nil {
			return nil, err
		}
		newestFirst = append(newestFirst, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Oldest first on the way out
	result := make([]models.MTrade, len(newestFirst))
	for i, t := range newestFirst {
		result[len(newestFirst)-1-i] = t
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteJournal) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()
	d.Logger.Info("Cleaning up trades older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec("DELETE FROM trades WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup trades error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteJournal) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
