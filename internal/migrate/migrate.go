// Package migrate applies bot database schema migrations between versions.
//
// Migrations run in version order inside transactions and are written
// to be re-runnable: existing columns and tables are tolerated, missing
// tables are skipped.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hiddify/hidyctl/internal/botversion"
)

// Migrator applies schema migrations to the bot database
type Migrator struct {
	db *sql.DB

	// installDir locates legacy artifacts (config.json) migrated
	// into the database
	installDir string
}

// Open opens the bot database for migration
func Open(dbPath, installDir string) (*Migrator, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// SQLite only supports one writer; limit pool accordingly
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Migrator{db: db, installDir: installDir}, nil
}

// Close closes the underlying database
func (m *Migrator) Close() error {
	return m.db.Close()
}

// migration is one versioned schema step, applied when the current
// version is below the threshold
type migration struct {
	below string
	name  string
	apply func(ctx context.Context, tx *sql.Tx) error
}

func (m *Migrator) migrations() []migration {
	return []migration{
		{"5.0.0", "v4_to_v5", m.migrateV4ToV5},
		{"5.5.0", "v5.1_to_v5.5", m.migrateV51ToV55},
		{"6.1.0", "v5.9.5_to_v6.1.0", m.migrateV595ToV610},
		{"6.2.0", "v6.1.5_to_v6.2.0", m.migrateV615ToV620},
	}
}

// Run applies every migration between current and target and returns
// the names of the steps performed. A current version at or above the
// target is a no-op.
func (m *Migrator) Run(ctx context.Context, current, target string) ([]string, error) {
	current = botversion.Clean(current)
	target = botversion.Clean(target)

	if botversion.Compare(current, target) >= 0 {
		return nil, nil
	}

	var applied []string
	for _, mig := range m.migrations() {
		if !botversion.Less(current, mig.below) {
			continue
		}

		tx, err := m.db.BeginTx(ctx, nil)
		if err != nil {
			return applied, err
		}
		if err := mig.apply(ctx, tx); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %s: %w", mig.name, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("migration %s: %w", mig.name, err)
		}

		applied = append(applied, mig.name)
	}

	return applied, nil
}

// migrateV4ToV5 cleans up the order tables, drops obsolete tables, and
// folds the legacy config.json into the database.
func (m *Migrator) migrateV4ToV5(ctx context.Context, tx *sql.Tx) error {
	// A previous run has already dropped the approved column; the
	// order cleanup only makes sense while it is still there.
	if ok, err := columnExists(ctx, tx, "orders", "approved"); err != nil {
		return err
	} else if ok {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM orders WHERE approved = 0 OR approved IS NULL"); err != nil {
			return err
		}
		if err := dropColumns(ctx, tx, "orders",
			"payment_image", "payment_method", "approved"); err != nil {
			return err
		}
	}

	for _, table := range []string{"owner_info", "settings"} {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return err
		}
	}

	if err := addColumn(ctx, tx, "users", "test_subscription", "BOOLEAN DEFAULT 0"); err != nil {
		return err
	}

	return m.migrateLegacyConfig(ctx, tx)
}

// migrateV51ToV55 introduces multi-server support
func (m *Migrator) migrateV51ToV55(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"plans", "order_subscriptions", "non_order_subscriptions"} {
		if err := addColumn(ctx, tx, table, "server_id", "INTEGER"); err != nil {
			return err
		}
		if err := backfill(ctx, tx, table, "server_id", "1"); err != nil {
			return err
		}
	}

	if err := addColumn(ctx, tx, "servers", "user_limit", "INTEGER"); err != nil {
		return err
	}
	if err := addColumn(ctx, tx, "servers", "status", "BOOLEAN DEFAULT 1"); err != nil {
		return err
	}
	if ok, err := tableExists(ctx, tx, "servers"); err != nil {
		return err
	} else if ok {
		stmts := []string{
			"UPDATE servers SET user_limit = 2000 WHERE user_limit IS NULL",
			"UPDATE servers SET status = 1 WHERE status IS NULL",
			"UPDATE servers SET title = 'Main Server' WHERE title IS NULL",
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
	}

	if err := addColumn(ctx, tx, "users", "full_name", "TEXT NULL"); err != nil {
		return err
	}
	if err := addColumn(ctx, tx, "users", "username", "TEXT NULL"); err != nil {
		return err
	}

	return dropColumns(ctx, tx, "payments", "user_name")
}

// migrateV595ToV610 adds the user ban flag
func (m *Migrator) migrateV595ToV610(ctx context.Context, tx *sql.Tx) error {
	if err := addColumn(ctx, tx, "users", "banned", "BOOLEAN DEFAULT 0"); err != nil {
		return err
	}
	return backfill(ctx, tx, "users", "banned", "0")
}

// migrateV615ToV620 adds affiliate, coupon, and online-payment support
func (m *Migrator) migrateV615ToV620(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS referrals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			referrer_id INTEGER NOT NULL,
			referred_id INTEGER NOT NULL,
			commission INTEGER DEFAULT 0,
			created_at TEXT,
			FOREIGN KEY (referrer_id) REFERENCES users (telegram_id),
			FOREIGN KEY (referred_id) REFERENCES users (telegram_id),
			UNIQUE(referrer_id, referred_id)
		)`,
		`CREATE TABLE IF NOT EXISTS coupons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT UNIQUE NOT NULL,
			discount_type TEXT NOT NULL,
			discount_value INTEGER NOT NULL,
			usage_limit INTEGER,
			used_count INTEGER DEFAULT 0,
			expiry_date TEXT,
			is_active BOOLEAN DEFAULT 1,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS coupon_usage (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			coupon_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			used_at TEXT,
			FOREIGN KEY (coupon_id) REFERENCES coupons (id),
			FOREIGN KEY (user_id) REFERENCES users (telegram_id)
		)`,
		`CREATE TABLE IF NOT EXISTS online_payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			payment_id INTEGER NOT NULL,
			gateway TEXT NOT NULL,
			transaction_id TEXT,
			callback_url TEXT,
			status TEXT,
			created_at TEXT,
			updated_at TEXT,
			FOREIGN KEY (payment_id) REFERENCES payments (id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// SQLite cannot add a UNIQUE column through ALTER TABLE, so the
	// referral code column is added plain
	if err := addColumn(ctx, tx, "users", "referral_code", "TEXT"); err != nil {
		return err
	}
	if err := addColumn(ctx, tx, "payments", "payment_method_details", "TEXT"); err != nil {
		return err
	}
	return addColumn(ctx, tx, "users", "last_activity", "TEXT")
}

// tableExists reports whether a table is present in the schema
func tableExists(ctx context.Context, tx *sql.Tx, name string) (bool, error) {
	var found string
	err := tx.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// columnExists reports whether table has column; a missing table
// counts as a missing column
func columnExists(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	if ok, err := tableExists(ctx, tx, table); err != nil || !ok {
		return false, err
	}
	columns, err := tableColumns(ctx, tx, table)
	if err != nil {
		return false, err
	}
	for _, c := range columns {
		if c == column {
			return true, nil
		}
	}
	return false, nil
}

// addColumn adds a column, tolerating a missing table and an already
// existing column
func addColumn(ctx context.Context, tx *sql.Tx, table, column, decl string) error {
	if ok, err := tableExists(ctx, tx, table); err != nil || !ok {
		return err
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl)
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column name") {
			return nil
		}
		return err
	}
	return nil
}

// backfill sets a column to value where it is NULL
func backfill(ctx context.Context, tx *sql.Tx, table, column, value string) error {
	if ok, err := tableExists(ctx, tx, table); err != nil || !ok {
		return err
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL",
		table, column, value, column)
	_, err := tx.ExecContext(ctx, stmt)
	return err
}

// dropColumns removes columns by recreating the table, since this
// SQLite schema predates DROP COLUMN support
func dropColumns(ctx context.Context, tx *sql.Tx, table string, columns ...string) error {
	if ok, err := tableExists(ctx, tx, table); err != nil || !ok {
		return err
	}

	all, err := tableColumns(ctx, tx, table)
	if err != nil {
		return err
	}

	drop := make(map[string]bool, len(columns))
	for _, c := range columns {
		drop[c] = true
	}

	var kept []string
	dropping := false
	for _, c := range all {
		if drop[c] {
			dropping = true
			continue
		}
		kept = append(kept, c)
	}
	if !dropping || len(kept) == 0 {
		return nil
	}

	keptList := strings.Join(kept, ", ")
	stmts := []string{
		fmt.Sprintf("CREATE TABLE new_%s AS SELECT %s FROM %s", table, keptList, table),
		fmt.Sprintf("DROP TABLE %s", table),
		fmt.Sprintf("ALTER TABLE new_%s RENAME TO %s", table, table),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// tableColumns lists the column names of a table in order
func tableColumns(ctx context.Context, tx *sql.Tx, table string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}
