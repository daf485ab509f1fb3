package redis

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/nsmap/store"
)

var ErrNilClient = errors.New("redis store: nil client")

const defaultScanCount = 512

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	scanCount   int64
}

var _ store.Store = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool  // set true only if this store exclusively owns the client
	ScanCount   int64 // SCAN COUNT hint; 0 => 512
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	count := cfg.ScanCount
	if count <= 0 {
		count = defaultScanCount
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, scanCount: count}, nil
}

// Dial builds a store that owns a fresh client for host:port.
// go-redis connects lazily, so an unreachable server surfaces on first use.
func Dial(host string, port int) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr: net.JoinHostPort(host, strconv.Itoa(port)),
	})
	return New(Config{Client: rdb, CloseClient: true})
}

func (p *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := p.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil // miss
	}
	if err != nil {
		return "", false, err // transport/server error
	}
	return v, true, nil
}

// Set uses GETSET so the overwrite and the previous value come from one command.
func (p *Redis) Set(ctx context.Context, key, value string) (string, bool, error) {
	prev, err := p.rdb.GetSet(ctx, key, value).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return prev, true, nil
}

// Del pipelines one DEL per key; multi-key DEL is rejected by clusters
// when keys hash to different slots.
func (p *Redis) Del(ctx context.Context, keys ...string) error {
	switch len(keys) {
	case 0:
		return nil
	case 1:
		return p.rdb.Del(ctx, keys[0]).Err()
	}
	_, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, k := range keys {
			pipe.Del(ctx, k)
		}
		return nil
	})
	return err
}

type scanner interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) *goredis.ScanCmd
}

// Scan walks the keyspace with SCAN. On a cluster client every master is
// scanned. SCAN may report a key more than once; the result is de-duplicated.
func (p *Redis) Scan(ctx context.Context, pattern string) ([]string, error) {
	var mu sync.Mutex
	seen := make(map[string]struct{})
	walk := func(ctx context.Context, c scanner) error {
		it := c.Scan(ctx, 0, pattern, p.scanCount).Iterator()
		for it.Next(ctx) {
			mu.Lock()
			seen[it.Val()] = struct{}{}
			mu.Unlock()
		}
		return it.Err()
	}

	var err error
	if cc, ok := p.rdb.(*goredis.ClusterClient); ok {
		err = cc.ForEachMaster(ctx, func(ctx context.Context, c *goredis.Client) error {
			return walk(ctx, c)
		})
	} else {
		err = walk(ctx, p.rdb)
	}
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	return out, nil
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
