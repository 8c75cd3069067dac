package persistence

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hoenas/econosim/internal/market"
)

// DB wraps a SQLite connection for run telemetry. Telemetry is additive
// history (trades, per-tick stats); exact world state lives in the YAML
// snapshot.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tick_stats (
		tick INTEGER PRIMARY KEY,
		live_offers INTEGER NOT NULL,
		live_orders INTEGER NOT NULL,
		trades INTEGER NOT NULL,
		volume REAL NOT NULL,
		offers_placed INTEGER NOT NULL,
		orders_placed INTEGER NOT NULL,
		offers_fulfilled INTEGER NOT NULL,
		orders_fulfilled INTEGER NOT NULL,
		offers_partly_fulfilled INTEGER NOT NULL,
		orders_partly_fulfilled INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		resource INTEGER NOT NULL,
		amount REAL NOT NULL,
		price_per_unit REAL NOT NULL,
		buyer TEXT NOT NULL,
		seller TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_tick ON trades(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// TradeRow is a settled trade as stored in the telemetry database.
type TradeRow struct {
	Tick         uint64  `db:"tick" json:"tick"`
	Resource     int     `db:"resource" json:"resource"`
	Amount       float64 `db:"amount" json:"amount"`
	PricePerUnit float64 `db:"price_per_unit" json:"price_per_unit"`
	Buyer        string  `db:"buyer" json:"buyer"`
	Seller       string  `db:"seller" json:"seller"`
}

// RecordTick appends one tick's clearing summary and its trades.
func (db *DB) RecordTick(tick uint64, liveOffers, liveOrders int, stats market.Stats, trades []market.Trade) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var volume float64
	for _, t := range trades {
		volume += t.Amount * t.PricePerUnit
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO tick_stats
		(tick, live_offers, live_orders, trades, volume,
		 offers_placed, orders_placed, offers_fulfilled, orders_fulfilled,
		 offers_partly_fulfilled, orders_partly_fulfilled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tick, liveOffers, liveOrders, len(trades), volume,
		stats.OffersPlaced, stats.OrdersPlaced,
		stats.OffersFulfilled, stats.OrdersFulfilled,
		stats.OffersPartlyFulfilled, stats.OrdersPartlyFulfilled,
	)
	if err != nil {
		return fmt.Errorf("insert tick stats: %w", err)
	}

	for _, t := range trades {
		_, err := tx.Exec(
			"INSERT INTO trades (tick, resource, amount, price_per_unit, buyer, seller) VALUES (?, ?, ?, ?, ?, ?)",
			tick, t.Resource, t.Amount, t.PricePerUnit, ownerLabel(t.Buyer), ownerLabel(t.Seller),
		)
		if err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}

	return tx.Commit()
}

// RecentTrades returns the most recent N trades, newest first.
func (db *DB) RecentTrades(limit int) ([]TradeRow, error) {
	var rows []TradeRow
	err := db.conn.Select(&rows,
		"SELECT tick, resource, amount, price_per_unit, buyer, seller FROM trades ORDER BY id DESC LIMIT ?",
		limit,
	)
	return rows, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

func ownerLabel(o market.Owner) string {
	if handle, isCompany := o.AsCompany(); isCompany {
		return fmt.Sprintf("company:%d", handle)
	}
	return "market"
}
