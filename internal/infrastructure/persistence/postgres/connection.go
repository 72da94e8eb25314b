package postgres

import (
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/lib/pq"

	"github.com/pharmaterm/pos-core/internal/config"
)

type Connection struct {
	db *sql.DB
}

// driverName picks the registered sql driver for the config. Both pq
// ("postgres") and the pgx stdlib adapter ("pgx") accept the same
// keyword/value DSN.
func driverName(cfg config.DatabaseConfig) string {
	if cfg.Driver != "" {
		return cfg.Driver
	}
	return "postgres"
}

func NewConnection(cfg config.DatabaseConfig) (*Connection, error) {
	db, err := sql.Open(driverName(cfg), cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// A terminal talks to the ledger with a handful of sequential calls;
	// this is not a server pool.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	return &Connection{db: db}, nil
}

func NewConnectionFromDB(db *sql.DB) *Connection {
	return &Connection{db: db}
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) GetDB() *sql.DB {
	return c.db
}
