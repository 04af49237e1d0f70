package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"

	"nutritrack/config"
	"nutritrack/internal/models"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresDB struct {
	db *sqlx.DB
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	connConfig, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	sqlDB := stdlib.OpenDB(*connConfig)

	// Set connection pool parameters
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnLifetime)
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)

	// Connect with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{db: sqlx.NewDb(sqlDB, "pgx")}, nil
}

// NewWithDB wraps an existing handle. Tests pass a sqlmock-backed one.
func NewWithDB(db *sqlx.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

func (db *PostgresDB) Close() {
	if db.db != nil {
		db.db.Close()
	}
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *PostgresDB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// wrapErr maps driver errors onto the model sentinels.
func wrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, models.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", msg, models.ErrConflict)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func expectAffected(res sql.Result, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", msg, models.ErrNotFound)
	}
	return nil
}
