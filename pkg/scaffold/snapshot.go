package scaffold

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"piletctl/pkg/pilet"

	"go.etcd.io/bbolt"
)

const (
	bucketSnapshots = "file_snapshots"

	// MaxSnapshotsPerProject bounds the stored history per project.
	MaxSnapshotsPerProject = 10
)

// SnapshotRecord is one persisted pre-upgrade file snapshot.
type SnapshotRecord struct {
	Root      string             `json:"root"`
	Timestamp time.Time          `json:"timestamp"`
	Files     pilet.FileSnapshot `json:"files"`
}

// SnapshotStore persists pre-upgrade file snapshots in BoltDB, keyed by
// project root, so later runs can tell user modifications apart from
// template drift.
type SnapshotStore struct {
	db *bbolt.DB
}

// OpenSnapshotStore opens or creates the snapshot database at path.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshots))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing snapshot bucket: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// Close closes the database.
func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores a snapshot for a project root, pruning old entries.
func (s *SnapshotStore) Save(root string, snap pilet.FileSnapshot) error {
	record := SnapshotRecord{
		Root:      root,
		Timestamp: time.Now(),
		Files:     snap,
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket not found")
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling snapshot: %w", err)
		}

		key := []byte(root + "|" + record.Timestamp.Format(time.RFC3339Nano))
		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}

		return pruneProject(bucket, root)
	})
}

// Latest returns the most recent snapshot for a project root, or nil.
func (s *SnapshotStore) Latest(root string) (*SnapshotRecord, error) {
	var latest *SnapshotRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return nil
		}

		prefix := []byte(root + "|")
		cursor := bucket.Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var record SnapshotRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue // skip malformed entries
			}
			if latest == nil || record.Timestamp.After(latest.Timestamp) {
				r := record
				latest = &r
			}
		}
		return nil
	})

	return latest, err
}

// pruneProject drops the oldest snapshots of a project beyond the limit.
func pruneProject(bucket *bbolt.Bucket, root string) error {
	prefix := []byte(root + "|")

	var keys [][]byte
	cursor := bucket.Cursor()
	for k, _ := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cursor.Next() {
		key := make([]byte, len(k))
		copy(key, k)
		keys = append(keys, key)
	}

	// Keys sort chronologically because the timestamp is RFC3339.
	for len(keys) > MaxSnapshotsPerProject {
		if err := bucket.Delete(keys[0]); err != nil {
			return err
		}
		keys = keys[1:]
	}
	return nil
}
