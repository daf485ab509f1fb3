package bigcache

import (
	"context"
	"errors"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/nsmap/internal/glob"
	"github.com/unkn0wn-root/nsmap/store"
)

// BigCache has no per-entry TTL and drops entries older than LifeWindow,
// so the default window is long enough to behave like a map.
const defaultLifeWindow = 10 * 365 * 24 * time.Hour

type Store struct {
	c *bc.BigCache
	// serializes read-modify-write so Set can report the value it replaced
	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

var _ store.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration // 0 => ~10y (effectively no expiry)
	CleanWindow        time.Duration // 0 => no background cleanup
	Shards             int           // power of two; 0 => bigcache default
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = defaultLifeWindow
	}
	conf := bc.DefaultConfig(life)
	conf.CleanWindow = cfg.CleanWindow
	conf.Verbose = false
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) (string, bool, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	prev, ok, err := s.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if err := s.c.Set(key, []byte(value)); err != nil {
		return "", false, err
	}
	return prev, ok, nil
}

func (s *Store) Del(_ context.Context, keys ...string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for _, k := range keys {
		if err := s.c.Delete(k); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
			return err
		}
	}
	return nil
}

// Scan walks every shard with the bigcache iterator. Entries that vanish
// while iterating are skipped.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	var out []string
	it := s.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			continue
		}
		if k := e.Key(); glob.Match(pattern, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Close stops bigcache's background worker. bigcache panics on a second
// Close, so only the first call reaches it.
func (s *Store) Close(context.Context) error {
	s.closeOnce.Do(func() { s.closeErr = s.c.Close() })
	return s.closeErr
}

// Stats exposes bigcache hit/miss counters (not part of store.Store).
func (s *Store) Stats() bc.Stats { return s.c.Stats() }
