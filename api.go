package nsmap

import (
	"context"
	"time"

	"github.com/unkn0wn-root/nsmap/store"
	"github.com/unkn0wn-root/nsmap/token"
)

// Map is a string-to-string map stored in a shared key-value store under one
// namespace token. Store failures come back as *StoreError.
type Map interface {
	Len(ctx context.Context) (int, error)
	IsEmpty(ctx context.Context) (bool, error)
	ContainsKey(ctx context.Context, key string) (bool, error)
	ContainsValue(ctx context.Context, value string) (bool, error)

	// Single
	Get(ctx context.Context, key string) (v string, ok bool, err error)
	Put(ctx context.Context, key, value string) (prev string, existed bool, err error)
	Replace(ctx context.Context, key, value string) (prev string, existed bool, err error)
	Remove(ctx context.Context, key string) (prev string, existed bool, err error)

	// Bulk. Not atomic; see the package doc.
	PutAll(ctx context.Context, entries map[string]string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
	Values(ctx context.Context) ([]string, error)
	Entries(ctx context.Context) (map[string]string, error)

	// Namespace and endpoint
	Token() string
	SetToken(tok string) error
	Host() string
	Port() int
	SetHostAndPort(host string, port int) error

	// Lifecycle
	Persist()
	Ephemeral()
	Persisted() bool
	Close(ctx context.Context) error
}

// Dialer returns the store for an endpoint. The map owns what it returns and
// closes it on Close or when the endpoint changes.
type Dialer func(host string, port int) (store.Store, error)

// Options configure a Map. The zero value is a fresh, ephemeral map on
// localhost:6379.
type Options struct {
	Host        string       // "" => "localhost"
	Port        int          // 0 => 6379
	Token       string       // "" => TokenSource.Token()
	TokenSource token.Source // nil => token.Default
	Persist     bool         // default false => purge on Close/collection

	Dialer Dialer // nil => go-redis client per map
	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	CleanupTimeout   time.Duration // budget for a collector-driven purge; 0 => 5s
	DisableSafetyNet bool          // true => only Close ever purges
}

func New(opts Options) (Map, error) {
	return newMap(opts)
}

// Open attaches to an existing namespace. The returned map sees, and on
// Close purges, everything written under tok by any other map.
func Open(tok string, opts Options) (Map, error) {
	if tok == "" {
		return nil, invalidArg("empty token")
	}
	opts.Token = tok
	return newMap(opts)
}

// Shared returns a Dialer handing every map the same store regardless of
// host and port. Maps never close a shared store; its owner does.
func Shared(st store.Store) Dialer {
	return func(string, int) (store.Store, error) { return unowned{st}, nil }
}

type unowned struct{ store.Store }

func (unowned) Close(context.Context) error { return nil }
