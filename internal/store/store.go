package store

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/gardenzilla/procurement/internal/paths"
	"github.com/gardenzilla/procurement/internal/procurement"
)

// Bucket holding all procurement records.
var bucketName = []byte("procurements")

// How long Open waits for another process to release the file lock.
const openTimeout = 5 * time.Second

// Procurement records backed by a bbolt file.
type Store struct {
	db *bolt.DB
}

// Opens the store at path, creating the file, its parent directory and
// the bucket if they do not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	db, err := bolt.Open(path, paths.PrivateFileMode, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStore, path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	slog.Debug("store opened", "path", path)
	return &Store{db: db}, nil
}

// Closes the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Allocates the next id and stores the procurement returned by build.
//
// The id is one above the largest stored id, so ids of removed records
// at the tail are reused.
func (s *Store) Create(build func(id uint32) *procurement.Procurement) (*procurement.Procurement, error) {
	var created *procurement.Procurement

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)

		var next uint32 = 1
		if k, _ := b.Cursor().Last(); k != nil {
			next = binary.BigEndian.Uint32(k) + 1
		}

		created = build(next)
		return put(b, created)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return created, nil
}

// Returns the procurement with the given id.
func (s *Store) Get(id uint32) (*procurement.Procurement, error) {
	var p *procurement.Procurement

	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		p, err = get(tx.Bucket(bucketName), id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Returns every stored procurement in id order.
func (s *Store) List() ([]*procurement.Procurement, error) {
	var all []*procurement.Procurement

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, v []byte) error {
			p, err := decode(v)
			if err != nil {
				return fmt.Errorf("%w: record %d: %w", ErrStore, binary.BigEndian.Uint32(k), err)
			}
			all = append(all, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

// Loads the procurement, applies fn, and writes the result back in one
// transaction. Nothing is written when fn returns an error.
func (s *Store) Update(id uint32, fn func(*procurement.Procurement) error) (*procurement.Procurement, error) {
	var p *procurement.Procurement

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)

		var err error
		p, err = get(b, id)
		if err != nil {
			return err
		}

		if err := fn(p); err != nil {
			return err
		}

		return put(b, p)
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Deletes the procurement with the given id.
func (s *Store) Remove(id uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get(key(id)) == nil {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return b.Delete(key(id))
	})
}

func get(b *bolt.Bucket, id uint32) (*procurement.Procurement, error) {
	data := b.Get(key(id))
	if data == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	p, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: record %d: %w", ErrStore, id, err)
	}
	return p, nil
}

func put(b *bolt.Bucket, p *procurement.Procurement) error {
	data, err := encode(p)
	if err != nil {
		return fmt.Errorf("%w: encode %d: %w", ErrStore, p.ID, err)
	}
	return b.Put(key(p.ID), data)
}

// Big-endian keys keep bbolt's byte order equal to id order.
func key(id uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, id)
	return k
}
