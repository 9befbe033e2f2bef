// Package record stores session telemetry in a local SQLite database
package record

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrLocked is returned when another process holds the database
var ErrLocked = errors.New("telemetry database is locked by another process")

// memoryDSN keeps the database in process, used when no path is configured
const memoryDSN = "file::memory:?cache=shared"

// Store owns the gorm handle and the single-writer file lock
type Store struct {
	DB   *gorm.DB
	Path string

	lock *flock.Flock
	log  zerolog.Logger
}

// Open opens or creates the database at path and migrates the schema
// An empty path opens an in-memory database without a lock
func Open(path string, log zerolog.Logger) (*Store, error) {
	s := &Store{Path: path, log: log.With().Str("component", "record").Logger()}

	dsn := memoryDSN
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "could not create telemetry directory for %s", path)
		}
		s.lock = flock.New(path + ".lock")
		locked, err := s.lock.TryLock()
		if err != nil {
			return nil, errors.Wrap(err, "could not try locking telemetry database")
		}
		if !locked {
			return nil, errors.Wrap(ErrLocked, path)
		}
		dsn = path
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		s.unlock()
		return nil, errors.Wrap(err, "could not open telemetry database")
	}
	s.DB = db

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			s.Close()
			return nil, errors.Wrapf(err, "could not set %s", pragma)
		}
	}

	if err := db.AutoMigrate(Models...); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "could not migrate telemetry schema")
	}

	if path == "" {
		s.log.Debug().Msg("using in-memory telemetry database")
	} else {
		s.log.Info().Str("path", path).Msg("telemetry database ready")
	}
	return s, nil
}

// Close releases the database and the lock
func (s *Store) Close() error {
	var firstErr error
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				firstErr = errors.Wrap(err, "could not close telemetry database")
			}
		}
		s.DB = nil
	}
	s.unlock()
	return firstErr
}

func (s *Store) unlock() {
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(); err != nil {
		s.log.Warn().Err(err).Msg("could not release telemetry lock")
	}
	s.lock = nil
}

// Sessions returns the most recent sessions, newest first; limit <= 0 returns all
func (s *Store) Sessions(limit int) ([]Session, error) {
	var out []Session
	q := s.DB.Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "could not list sessions")
	}
	return out, nil
}

// Events returns a session's events in recording order
func (s *Store) Events(sessionID uint) ([]Event, error) {
	var out []Event
	if err := s.DB.Where("session_id = ?", sessionID).Order("id asc").Find(&out).Error; err != nil {
		return nil, errors.Wrapf(err, "could not list events for session %d", sessionID)
	}
	return out, nil
}
