package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the database file inside the data directory.
const FileName = "sitepass.db"

// fingerprintLength is the length of a hex encoded SHA3-512 digest.
const fingerprintLength = 128

// ErrInvalidFingerprint is returned when a value is not a 128 character
// lower-case hex string.
var ErrInvalidFingerprint = errors.New("invalid master fingerprint: want 128 lower-case hex characters")

// MasterCheck is the outcome of looking up a master fingerprint.
type MasterCheck int

const (
	// Unchecked means fingerprints are not stored, so nothing can be said.
	Unchecked MasterCheck = iota
	// Checked means the fingerprint was seen before.
	Checked
	// Missing means fingerprints are stored but this one was never seen.
	// The master secret is probably mistyped.
	Missing
)

// String returns the lower-case name of the check.
func (c MasterCheck) String() string {
	switch c {
	case Checked:
		return "checked"
	case Missing:
		return "missing"
	default:
		return "unchecked"
	}
}

// Store persists master fingerprints.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the store in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS master_fingerprints (
		fingerprint TEXT PRIMARY KEY,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used DATETIME DEFAULT CURRENT_TIMESTAMP,
		use_count INTEGER NOT NULL DEFAULT 1
	);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Fingerprint is a stored master fingerprint with its usage metadata.
type Fingerprint struct {
	Value     string
	FirstSeen time.Time
	LastUsed  time.Time
	UseCount  int
}

// Check reports whether fingerprint was seen before. A known fingerprint is
// always Checked, even when storing is disabled; otherwise the result is
// Missing when storeHash is true and Unchecked when it is false.
func (s *Store) Check(ctx context.Context, fingerprint string, storeHash bool) (MasterCheck, error) {
	if err := validateFingerprint(fingerprint); err != nil {
		return Unchecked, err
	}

	found, err := s.Has(ctx, fingerprint)
	if err != nil {
		return Unchecked, err
	}

	switch {
	case found:
		return Checked, nil
	case storeHash:
		return Missing, nil
	default:
		return Unchecked, nil
	}
}

// Has reports whether fingerprint is stored.
func (s *Store) Has(ctx context.Context, fingerprint string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM master_fingerprints WHERE fingerprint = ?`, fingerprint,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up master fingerprint: %w", err)
	}
	return count > 0, nil
}

// Remember stores fingerprint, or refreshes its last use if already known.
func (s *Store) Remember(ctx context.Context, fingerprint string) error {
	if err := validateFingerprint(fingerprint); err != nil {
		return err
	}

	query := `
	INSERT INTO master_fingerprints (fingerprint) VALUES (?)
	ON CONFLICT(fingerprint) DO UPDATE SET
		last_used = CURRENT_TIMESTAMP,
		use_count = use_count + 1
	`
	if _, err := s.db.ExecContext(ctx, query, fingerprint); err != nil {
		return fmt.Errorf("failed to store master fingerprint: %w", err)
	}
	return nil
}

// Forget deletes fingerprint. It reports whether a row was removed.
func (s *Store) Forget(ctx context.Context, fingerprint string) (bool, error) {
	if err := validateFingerprint(fingerprint); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM master_fingerprints WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return false, fmt.Errorf("failed to delete master fingerprint: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete master fingerprint: %w", err)
	}
	return n > 0, nil
}

// Get returns the stored fingerprint, or nil if it is unknown.
func (s *Store) Get(ctx context.Context, fingerprint string) (*Fingerprint, error) {
	var (
		fp                  Fingerprint
		firstSeen, lastUsed string
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT fingerprint, first_seen, last_used, use_count
	FROM master_fingerprints
	WHERE fingerprint = ?
	`, fingerprint).Scan(&fp.Value, &firstSeen, &lastUsed, &fp.UseCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get master fingerprint: %w", err)
	}

	fp.FirstSeen = parseTimestamp(firstSeen)
	fp.LastUsed = parseTimestamp(lastUsed)
	return &fp, nil
}

// Count returns the number of stored fingerprints.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM master_fingerprints`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count master fingerprints: %w", err)
	}
	return count, nil
}

func validateFingerprint(fp string) error {
	if len(fp) != fingerprintLength {
		return ErrInvalidFingerprint
	}
	for i := 0; i < len(fp); i++ {
		c := fp[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ErrInvalidFingerprint
		}
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
