package migration

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Migration is one versioned schema step, loaded from a pair of
// NNN_name.up.sql / NNN_name.down.sql files.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
}

// Migrator applies versioned SQL migrations from an embedded filesystem and
// tracks them in a schema_migrations table.
type Migrator struct {
	db     *sql.DB
	logger *slog.Logger
	files  fs.FS
}

// NewMigrator creates a new migration manager
func NewMigrator(db *sql.DB, logger *slog.Logger, files fs.FS) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.With("component", "migrator"),
		files:  files,
	}
}

func (m *Migrator) ensureTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		checksum VARCHAR(64) NOT NULL
	)`

	if _, err := m.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// load reads every up/down pair from the filesystem, sorted by version
func (m *Migrator) load() ([]Migration, error) {
	var migrations []Migration

	err := fs.WalkDir(m.files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".up.sql") {
			return nil
		}

		filename := path.Base(p)
		prefix, rest, ok := strings.Cut(filename, "_")
		if !ok {
			m.logger.Warn("skipping migration file with unexpected name", "filename", filename)
			return nil
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			m.logger.Warn("skipping migration file with non-numeric version", "filename", filename)
			return nil
		}

		up, err := fs.ReadFile(m.files, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		downPath := strings.Replace(p, ".up.sql", ".down.sql", 1)
		down, err := fs.ReadFile(m.files, downPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", downPath, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".up.sql"),
			UpSQL:   string(up),
			DownSQL: string(down),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// applied returns the rows of schema_migrations ordered by version
func (m *Migrator) applied() ([]Migration, error) {
	rows, err := m.db.Query(`SELECT version, name, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	var migrations []Migration
	for rows.Next() {
		var mig Migration
		if err := rows.Scan(&mig.Version, &mig.Name, &mig.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		migrations = append(migrations, mig)
	}
	return migrations, rows.Err()
}

// Up applies every pending migration in version order
func (m *Migrator) Up() error {
	if err := m.ensureTable(); err != nil {
		return err
	}

	all, err := m.load()
	if err != nil {
		return err
	}
	done, err := m.applied()
	if err != nil {
		return err
	}

	doneVersions := make(map[int]bool, len(done))
	for _, mig := range done {
		doneVersions[mig.Version] = true
	}

	for _, mig := range all {
		if doneVersions[mig.Version] {
			continue
		}
		if err := m.apply(mig); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", mig.Version, err)
		}
		m.logger.Info("applied migration", "version", mig.Version, "name", mig.Name)
	}
	return nil
}

// Down rolls back the most recently applied migration
func (m *Migrator) Down() error {
	done, err := m.applied()
	if err != nil {
		return err
	}
	if len(done) == 0 {
		m.logger.Info("no migrations to roll back")
		return nil
	}
	last := done[len(done)-1]

	all, err := m.load()
	if err != nil {
		return err
	}

	for _, mig := range all {
		if mig.Version != last.Version {
			continue
		}
		if err := m.rollback(mig); err != nil {
			return fmt.Errorf("failed to roll back migration %d: %w", mig.Version, err)
		}
		m.logger.Info("rolled back migration", "version", mig.Version, "name", mig.Name)
		return nil
	}
	return fmt.Errorf("migration %d has no file to roll back with", last.Version)
}

// Status logs each known migration as applied or pending
func (m *Migrator) Status() error {
	all, err := m.load()
	if err != nil {
		return err
	}
	done, err := m.applied()
	if err != nil {
		return err
	}

	appliedAt := make(map[int]time.Time, len(done))
	for _, mig := range done {
		appliedAt[mig.Version] = mig.AppliedAt
	}

	for _, mig := range all {
		if at, ok := appliedAt[mig.Version]; ok {
			m.logger.Info("migration applied",
				"version", mig.Version,
				"name", mig.Name,
				"applied_at", at.Format(time.RFC3339))
		} else {
			m.logger.Info("migration pending", "version", mig.Version, "name", mig.Name)
		}
	}
	return nil
}

// apply runs one migration and records it in the same transaction
func (m *Migrator) apply(mig Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(mig.UpSQL); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		mig.Version, mig.Name, checksum(mig.UpSQL),
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

// rollback runs one down migration and removes the record transactionally
func (m *Migrator) rollback(mig Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(mig.DownSQL); err != nil {
		return fmt.Errorf("failed to execute rollback: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM schema_migrations WHERE version = $1`, mig.Version); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	return tx.Commit()
}

func checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
