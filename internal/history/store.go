// Package history persists the outcome of finished batches so a later
// session can list them and re-run the failed subset.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ytget/yt-batch-downloader/internal/download"
	"github.com/ytget/yt-batch-downloader/internal/model"
)

// DBFileName is the database file created inside the history directory
const DBFileName = "history.db"

var bucketBatches = []byte("batches")

// ErrNotFound is returned when a batch id is unknown
var ErrNotFound = errors.New("batch not found")

// Store keeps batch records in BoltDB, or in memory when opened without a directory
type Store struct {
	db *bolt.DB

	mu     sync.RWMutex
	memory map[string][]byte
}

// Open opens the store under dir. An empty dir selects memory-only mode.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return &Store{memory: make(map[string][]byte)}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, DBFileName), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBatches)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordBatch stores rec under its id, replacing any previous record
func (s *Store) RecordBatch(rec download.BatchRecord) error {
	if rec.ID == "" {
		return errors.New("batch record without id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	if s.db == nil {
		s.mu.Lock()
		s.memory[rec.ID] = data
		s.mu.Unlock()
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBatches).Put([]byte(rec.ID), data)
	})
}

// Get returns the record for id
func (s *Store) Get(id string) (download.BatchRecord, error) {
	var rec download.BatchRecord
	var data []byte

	if s.db == nil {
		s.mu.RLock()
		data = s.memory[id]
		s.mu.RUnlock()
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			if v := tx.Bucket(bucketBatches).Get([]byte(id)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if err != nil {
			return rec, err
		}
	}

	if data == nil {
		return rec, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode batch %s: %w", id, err)
	}
	return rec, nil
}

// Recent returns up to n records, newest first
func (s *Store) Recent(n int) ([]download.BatchRecord, error) {
	var raw [][]byte

	if s.db == nil {
		s.mu.RLock()
		for _, v := range s.memory {
			raw = append(raw, v)
		}
		s.mu.RUnlock()
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			c := tx.Bucket(bucketBatches).Cursor()
			for k, v := c.Last(); k != nil && (n <= 0 || len(raw) < n); k, v = c.Prev() {
				buf := make([]byte, len(v))
				copy(buf, v)
				raw = append(raw, buf)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	records := make([]download.BatchRecord, 0, len(raw))
	for _, data := range raw {
		var rec download.BatchRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// FailedSources returns the sources that failed in batch id, in batch order
func (s *Store) FailedSources(id string) ([]string, error) {
	rec, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	var sources []string
	for _, item := range rec.Items {
		if item.State == model.StateFailed {
			sources = append(sources, item.Source)
		}
	}
	return sources, nil
}
