// Package bolt is a file-backed store.Store on bbolt. Namespaces marked to
// persist survive process restarts. A bbolt file is locked by one process
// at a time, so instances sharing a token must live in the same process.
package bolt

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/unkn0wn-root/nsmap/internal/glob"
	"github.com/unkn0wn-root/nsmap/store"
)

const DefaultBucket = "nsmap"

var ErrNilDB = errors.New("bolt store: nil db")

type Store struct {
	db        *bolt.DB
	bucket    []byte
	closeDB   bool
	closeOnce sync.Once
}

var _ store.Store = (*Store)(nil)

type Config struct {
	DB      *bolt.DB
	Bucket  string // "" => DefaultBucket
	CloseDB bool   // set true only if this store exclusively owns the db
}

func New(cfg Config) (*Store, error) {
	if cfg.DB == nil {
		return nil, ErrNilDB
	}
	name := cfg.Bucket
	if name == "" {
		name = DefaultBucket
	}
	s := &Store{db: cfg.DB, bucket: []byte(name), closeDB: cfg.CloseDB}
	err := s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Open opens (or creates) the file at path and owns the resulting db.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	s, err := New(Config{DB: db, CloseDB: true})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// lookup distinguishes an empty value from a missing key, which Bucket.Get cannot.
func lookup(b *bolt.Bucket, key []byte) ([]byte, bool) {
	k, v := b.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false
	}
	return v, true
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	var (
		out string
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		var v []byte
		v, ok = lookup(tx.Bucket(s.bucket), []byte(key))
		out = string(v) // copy; v is only valid inside the tx
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return out, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) (string, bool, error) {
	var (
		prev string
		ok   bool
	)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var v []byte
		v, ok = lookup(b, []byte(key))
		prev = string(v)
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return "", false, err
	}
	return prev, ok, nil
}

func (s *Store) Del(_ context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			if glob.Match(pattern, string(k)) {
				out = append(out, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the db when this store owns it. Safe to call more than once.
func (s *Store) Close(context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		if s.closeDB {
			err = s.db.Close()
		}
	})
	return err
}
