package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

// SQLiteRepository is a gateway.Gateway backed by a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB

	mu   sync.Mutex
	now  func() time.Time
	last time.Time

	customers *table[core.Customer]
	services  *table[core.ServiceRecord]
	employees *table[core.Employee]
	salaries  *table[core.SalaryPayment]
	marketing *table[core.MarketingExpense]
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the main pool opens
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &SQLiteRepository{db: db, now: time.Now}
	r.customers = &table[core.Customer]{r: r, schema: customerSchema}
	r.services = &table[core.ServiceRecord]{r: r, schema: serviceSchema}
	r.employees = &table[core.Employee]{r: r, schema: employeeSchema}
	r.salaries = &table[core.SalaryPayment]{r: r, schema: salarySchema}
	r.marketing = &table[core.MarketingExpense]{r: r, schema: marketingSchema}

	slog.Info("SQLite repository ready", "path", dbPath)
	return r, nil
}

func dsn(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Customers() gateway.Table[core.Customer]                 { return r.customers }
func (r *SQLiteRepository) ServiceRecords() gateway.Table[core.ServiceRecord]       { return r.services }
func (r *SQLiteRepository) Employees() gateway.Table[core.Employee]                 { return r.employees }
func (r *SQLiteRepository) SalaryPayments() gateway.Table[core.SalaryPayment]       { return r.salaries }
func (r *SQLiteRepository) MarketingExpenses() gateway.Table[core.MarketingExpense] { return r.marketing }

// stamp returns a strictly increasing UTC timestamp.
func (r *SQLiteRepository) stamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.now().UTC()
	if !t.After(r.last) {
		t = r.last.Add(time.Nanosecond)
	}
	r.last = t
	return t
}

func newID() string { return uuid.NewString() }

// translate maps driver errors onto the gateway sentinels.
func translate(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %v", gateway.ErrConstraint, err)
	}
	return err
}
