package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/go-scrape-marketplace/models"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
)

const productsTable = "marketplace_products"

type dialect struct {
	driver    string
	floatType string
	numbered  bool // $1, $2 placeholders instead of ?
}

var (
	sqliteDialect   = dialect{driver: "sqlite3", floatType: "REAL"}
	postgresDialect = dialect{driver: "pgx", floatType: "DOUBLE PRECISION", numbered: true}
)

func (d dialect) placeholder(i int) string {
	if d.numbered {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// SQLWriter upserts records into a products table keyed by detail URL.
// Every row is tagged with the crawl that last wrote it.
type SQLWriter struct {
	db      *sql.DB
	dialect dialect
	crawlID string
	upsert  string
	mu      sync.Mutex
}

// NewSQLiteWriter opens (or creates) a SQLite database file.
func NewSQLiteWriter(filename, crawlID string) (*SQLWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	db, err := sql.Open(sqliteDialect.driver, filename)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return newSQLWriter(db, sqliteDialect, crawlID)
}

// NewPostgresWriter connects to PostgreSQL using a pgx DSN.
func NewPostgresWriter(dsn, crawlID string) (*SQLWriter, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return newSQLWriter(db, postgresDialect, crawlID)
}

func newSQLWriter(db *sql.DB, d dialect, crawlID string) (*SQLWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}

	w := &SQLWriter{
		db:      db,
		dialect: d,
		crawlID: crawlID,
		upsert:  upsertStatement(d),
	}
	if err := w.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLWriter) ensureSchema(ctx context.Context) error {
	var cols strings.Builder
	for _, col := range recordColumns {
		colType := "TEXT"
		switch col {
		case "price", "gold_price", "star_rating":
			colType = w.dialect.floatType
		case "detail_url":
			colType = "TEXT PRIMARY KEY"
		}
		fmt.Fprintf(&cols, "\t%s %s,\n", col, colType)
	}

	schema := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\tcrawl_id TEXT NOT NULL\n)", productsTable, cols.String())
	if _, err := w.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create %s table: %w", productsTable, err)
	}
	return nil
}

func upsertStatement(d dialect) string {
	cols := append(append([]string{}, recordColumns...), "crawl_id")

	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols)-1)
	for i, col := range cols {
		placeholders[i] = d.placeholder(i + 1)
		if col != "detail_url" {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
		}
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (detail_url) DO UPDATE SET %s",
		productsTable,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

// Write upserts a batch in one transaction.
func (w *SQLWriter) Write(records []*models.ProductRecord) (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(w.upsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		args := append(recordArgs(record), w.crawlID)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("upsert %s: %w", record.DetailURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (w *SQLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.db.Close()
}

// Validate ensures the current crawl wrote at least one row.
func (w *SQLWriter) Validate() error {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE crawl_id = %s", productsTable, w.dialect.placeholder(1))
	if err := w.db.QueryRow(query, w.crawlID).Scan(&count); err != nil {
		return fmt.Errorf("count %s rows: %w", productsTable, err)
	}
	if count == 0 {
		return fmt.Errorf("no rows written for crawl %s", w.crawlID)
	}
	return nil
}
