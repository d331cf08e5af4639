package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"market-simulator/src/logger"
	"market-simulator/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------
// PostgresJournal persists the broadcast trade stream to Postgres. Each
// deployment writes into its own schema named after the executable.
// -----------------------------------------------------------------------------

type PostgresJournal struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresJournal(cfg *models.MConfig, log *logger.Logger) (*PostgresJournal, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresJournal{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresJournal initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."trades" (
			buy_order_id TEXT PRIMARY KEY,
			sell_order_id TEXT,
			symbol TEXT,
			price DOUBLE PRECISION,
			quantity BIGINT,
			timestamp BIGINT
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create trades: %w", err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_trades_symbol_ts ON "%s"."trades" (symbol, timestamp);`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create trades index: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) SaveTradesBulk(rows []models.MSymbolTrade) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."trades" (buy_order_id, sell_order_id, symbol, price, quantity, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (buy_order_id) DO NOTHING
	`, d.Schema)
	stmt, err := tx.Prepare(query)
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

func (d *PostgresJournal) RecentTrades(symbol string, limit int) ([]models.MTrade, error) {
	if limit <= 0 {
		return []models.MTrade{}, nil
	}

	query := fmt.Sprintf(`
		SELECT buy_order_id, sell_order_id, price, quantity, timestamp
		FROM "%s"."trades" WHERE symbol = $1
		ORDER BY timestamp DESC LIMIT $2
	`, d.Schema)

	rows, err := d.DB.Query(query, symbol, limit)
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

	result := make([]models.MTrade, len(newestFirst))
	for i, t := range newestFirst {
		result[len(newestFirst)-1-i] = t
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()
	d.Logger.Info("Cleaning up trades older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."trades" WHERE timestamp < $1`, d.Schema), cutoff); err != nil {
		d.Logger.Error("Cleanup trades error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
