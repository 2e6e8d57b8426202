package sim

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	configBucket = []byte("config")
	recordKey    = []byte("record")
)

// BoltStore keeps the framed configuration record in a bbolt file, standing
// in for the flash sector
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the database at path
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(configBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Read() ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(configBucket).Get(recordKey); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (s *BoltStore) Write(data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(configBucket).Put(recordKey, data)
	})
}

func (s *BoltStore) Erase() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(configBucket).Delete(recordKey)
	})
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}
