// Package ratelimit persists the last successful publish time so scheduler
// misfires cannot update the gist more often than the configured interval.
package ratelimit

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	bucketName     = []byte("ratelimit")
	lastPublishKey = []byte("last_publish")
)

// Store tracks the last publish timestamp in a local bbolt file. Corrupt or
// missing state never blocks a run; it only means the guard waves it through.
type Store struct {
	db          *bolt.DB
	minInterval time.Duration
	logger      *zap.Logger
}

// Open creates or opens the store at path. A nil logger is replaced with a
// no-op logger.
func Open(path string, minInterval time.Duration, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open rate limit store: %w", err)
	}
	return &Store{db: db, minInterval: minInterval, logger: logger}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close rate limit store: %w", err)
	}
	return nil
}

// Allow reports whether a publish may proceed at now. It returns true when no
// previous publish is recorded or when the minimum interval has elapsed.
func (s *Store) Allow(now time.Time) (bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}
		if v := bucket.Get(lastPublishKey); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("read last publish: %w", err)
	}
	if raw == nil {
		return true, nil
	}

	last, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		s.logger.Warn("unreadable last publish timestamp; allowing run", zap.Error(err))
		return true, nil
	}
	if elapsed := now.Sub(last); elapsed < s.minInterval {
		s.logger.Info("publish rate limited",
			zap.Duration("since_last", elapsed),
			zap.Duration("min_interval", s.minInterval),
		)
		return false, nil
	}
	return true, nil
}

// MarkPublished records now as the most recent successful publish.
func (s *Store) MarkPublished(now time.Time) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return bucket.Put(lastPublishKey, []byte(now.UTC().Format(time.RFC3339Nano)))
	})
	if err != nil {
		return fmt.Errorf("record last publish: %w", err)
	}
	return nil
}
