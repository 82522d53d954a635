package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"vouch/internal/credential/models"
)

var bucketCredentials = []byte("credentials")

// BoltStore persists credential records in a bbolt file. It is the default
// backend for single-node deployments: durable, crash-safe, and dependency
// free at runtime.
type BoltStore struct {
	db *bbolt.DB
}

// NewBolt opens or creates the bbolt database at path and ensures the
// credentials bucket exists. Opening is idempotent; a failure here means the
// process cannot serve traffic.
func NewBolt(path string) (*BoltStore, error) {
	if path == "" {
		path = "vouch.db"
	}

	// Ensure directory exists.
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCredentials)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save inserts a new record. bbolt serializes writers, so the duplicate check
// and the put are atomic within one Update transaction.
func (s *BoltStore) Save(_ context.Context, record models.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal credential record: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCredentials)
		if b.Get([]byte(record.ID)) != nil {
			return ErrConflict
		}
		return b.Put([]byte(record.ID), data)
	})
	if errors.Is(err, ErrConflict) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Exists reports whether a record with the given ID is present.
func (s *BoltStore) Exists(_ context.Context, id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketCredentials).Get([]byte(id)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check credential: %w", err)
	}
	return found, nil
}

// Get retrieves a record by ID or returns ErrNotFound.
func (s *BoltStore) Get(_ context.Context, id string) (models.Record, error) {
	var record models.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCredentials).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &record)
	})
	if errors.Is(err, ErrNotFound) {
		return models.Record{}, ErrNotFound
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("get credential: %w", err)
	}
	return record, nil
}

// ListIDs returns all stored credential IDs in key order.
func (s *BoltStore) ListIDs(_ context.Context) ([]string, error) {
	ids := []string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCredentials).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return ids, nil
}

// Health verifies the database handle is still usable.
func (s *BoltStore) Health(_ context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketCredentials) == nil {
			return fmt.Errorf("credentials bucket missing")
		}
		return nil
	})
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BoltStore)(nil)
