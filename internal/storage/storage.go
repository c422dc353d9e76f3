package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	stateUninitialized int32 = iota
	stateConnected
	stateReady
	stateClosed
)

// Storage owns the single on-disk sqlite store. All bot components share one Storage; the underlying
// *sql.DB is limited to one connection so sqlite serializes writers.
type Storage struct {
	logger *zap.Logger
	db     *sql.DB
	now    func() time.Time

	mu    sync.Mutex // guards lifecycle transitions
	state *atomic.Int32
}

func NewStorage(l *zap.Logger) *Storage {
	return &Storage{
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
		state:  atomic.NewInt32(stateUninitialized),
	}
}

func dsn(path string) string {
	return filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_time_format=sqlite"
}

func readOnlyDSN(path string) string {
	return "file:" + filepath.ToSlash(filepath.Clean(path)) + "?mode=ro&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// Connect opens the store at path, creating the file if it does not exist.
func (s *Storage) Connect(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: storage path is required", ErrStorageUnavailable)
	}
	return s.open(path, dsn(path), stateConnected)
}

func (s *Storage) open(path, dsn string, next int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.Load() {
	case stateUninitialized:
	case stateClosed:
		return ErrClosed
	default:
		return errors.New("storage already connected")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrStorageUnavailable, path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: open %s: %w", ErrStorageUnavailable, path, err)
	}
	// Ping succeeds on files that are not databases; reading the catalog does not.
	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master`).Scan(&n); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, path, err)
	}

	s.db = db
	s.state.Store(next)
	s.logger.Sugar().Infof("Connected to database %s.", path)
	return nil
}

// InitSchema creates every table and index that does not exist yet. It is safe to call on every start.
func (s *Storage) InitSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.Load() {
	case stateConnected, stateReady:
	case stateClosed:
		return ErrClosed
	default:
		return ErrNotInitialized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin schema transaction: %w", ErrQuery, err)
	}
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: initialize schema: %w", ErrQuery, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit schema: %w", ErrQuery, err)
	}

	s.state.Store(stateReady)
	s.logger.Info("Database schema initialized.")
	return nil
}

// Close releases the store. Calling it again is a no-op.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Swap(stateClosed) == stateClosed || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.logger.Info("Database connection closed.")
	return err
}

func (s *Storage) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return ErrNotInitialized
	}
	switch s.state.Load() {
	case stateReady:
		return nil
	case stateClosed:
		return ErrClosed
	default:
		return ErrNotInitialized
	}
}

// readFailed logs a failed read. Reads degrade to an empty result, so only cancellation reaches the caller.
func (s *Storage) readFailed(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if shouldLogError(err) {
		s.logger.Sugar().Errorf("Failed to %s: %s.", op, err)
	}
	return nil
}

// writeFailed logs a failed write and returns it wrapped in ErrQuery.
func (s *Storage) writeFailed(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if shouldLogError(err) {
		s.logger.Sugar().Errorf("Failed to %s: %s.", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrQuery, op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func limitOrDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
