package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4/database"
)

// DefaultTable tracks the applied version
const DefaultTable = "schema_migrations"

var errNilConfig = errors.New("migrations: nil config")

// Config tunes the driver
type Config struct {
	Table    string
	NoTxWrap bool // Run each migration outside a transaction
}

// Driver implements database.Driver over a caller-owned *sql.DB
type Driver struct {
	db     *sql.DB
	cfg    Config
	locked atomic.Bool
}

var _ database.Driver = (*Driver)(nil)

// WithInstance wraps db and creates the version table if needed
func WithInstance(db *sql.DB, cfg *Config) (database.Driver, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	d := &Driver{db: db, cfg: *cfg}
	if d.cfg.Table == "" {
		d.cfg.Table = DefaultTable
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (version uint64, dirty bool);
CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_version ON %[1]s (version);`, d.cfg.Table)
	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("create %s: %w", d.cfg.Table, err)
	}
	return d, nil
}

// Open is unsupported; the connection always comes from WithInstance
func (d *Driver) Open(string) (database.Driver, error) {
	return nil, errors.New("migrations: Open unsupported, use WithInstance")
}

// Close closes the wrapped connection
func (d *Driver) Close() error {
	return d.db.Close()
}

// Lock is process-local; one migrator per connection
func (d *Driver) Lock() error {
	if !d.locked.CompareAndSwap(false, true) {
		return database.ErrLocked
	}
	return nil
}

func (d *Driver) Unlock() error {
	if !d.locked.CompareAndSwap(true, false) {
		return database.ErrNotLocked
	}
	return nil
}

// Run executes one migration body
func (d *Driver) Run(r io.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if d.cfg.NoTxWrap {
		if _, err := d.db.Exec(string(body)); err != nil {
			return &database.Error{OrigErr: err, Query: body}
		}
		return nil
	}
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(body)); err != nil {
			return &database.Error{OrigErr: err, Query: body}
		}
		return nil
	})
}

// SetVersion replaces the stored version row
func (d *Driver) SetVersion(version int, dirty bool) error {
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM " + d.cfg.Table); err != nil {
			return &database.Error{OrigErr: err, Err: "clear version"}
		}
		// A dirty nil version is kept so a failed first down migration stays visible
		if version < 0 && !(version == database.NilVersion && dirty) {
			return nil
		}
		q := fmt.Sprintf("INSERT INTO %s (version, dirty) VALUES (?, ?)", d.cfg.Table)
		if _, err := tx.Exec(q, version, dirty); err != nil {
			return &database.Error{OrigErr: err, Query: []byte(q)}
		}
		return nil
	})
}

// Version returns NilVersion when nothing is applied
func (d *Driver) Version() (int, bool, error) {
	var (
		version int
		dirty   bool
	)
	err := d.db.QueryRow("SELECT version, dirty FROM "+d.cfg.Table+" LIMIT 1").Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return database.NilVersion, false, nil
	}
	if err != nil {
		return database.NilVersion, false, &database.Error{OrigErr: err, Err: "read version"}
	}
	return version, dirty, nil
}

// Drop removes every table
func (d *Driver) Drop() error {
	rows, err := d.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return &database.Error{OrigErr: err, Err: "list tables"}
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return &database.Error{OrigErr: err, Err: "list tables"}
	}

	for _, t := range tables {
		if _, err := d.db.Exec("DROP TABLE IF EXISTS " + t); err != nil {
			return &database.Error{OrigErr: err, Err: "drop " + t}
		}
	}
	if len(tables) > 0 {
		if _, err := d.db.Exec("VACUUM"); err != nil {
			return &database.Error{OrigErr: err, Err: "vacuum"}
		}
	}
	return nil
}

func (d *Driver) inTx(fn func(*sql.Tx) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return &database.Error{OrigErr: err, Err: "begin"}
	}
	if err := fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return &database.Error{OrigErr: err, Err: "commit"}
	}
	return nil
}
