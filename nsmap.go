package nsmap

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/emirpasic/gods/sets/treeset"

	"github.com/unkn0wn-root/nsmap/internal/keys"
	"github.com/unkn0wn-root/nsmap/store"
	redisstore "github.com/unkn0wn-root/nsmap/store/redis"
	"github.com/unkn0wn-root/nsmap/token"
)

// core is everything the collector cleanup needs. It must never point back
// at the nsMap handle, or the handle would stay reachable forever.
type core struct {
	mu      sync.RWMutex
	host    string
	port    int
	token   string
	st      store.Store
	persist bool
	closed  bool

	dial           Dialer
	log            Logger
	hooks          Hooks
	cleanupTimeout time.Duration
}

// nsMap is the handle given to callers; its collection triggers the safety
// net. Methods that reach the store end with runtime.KeepAlive(m) so the
// handle cannot be collected while one of its own calls is in flight.
type nsMap struct {
	c *core
}

var _ Map = (*nsMap)(nil)

func dialRedis(host string, port int) (store.Store, error) {
	s, err := redisstore.Dial(host, port)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newMap(opts Options) (*nsMap, error) {
	host := coalesce(opts.Host, DefaultHost)
	port := coalesce(opts.Port, DefaultPort)
	if err := checkEndpoint(host, port); err != nil {
		return nil, err
	}

	tok := opts.Token
	if tok == "" {
		src := coalesce[token.Source](opts.TokenSource, token.Default)
		tok = src.Token()
		if tok == "" {
			return nil, invalidArg("token source returned an empty token")
		}
	}

	dial := opts.Dialer
	if dial == nil {
		dial = dialRedis
	}
	st, err := dial(host, port)
	if err != nil {
		return nil, storeErr("dial", "", err)
	}
	if st == nil {
		return nil, storeErr("dial", "", errors.New("dialer returned nil store"))
	}

	c := &core{
		host:    host,
		port:    port,
		token:   tok,
		st:      st,
		persist: opts.Persist,
		dial:    dial,
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.cleanupTimeout = coalesce(opts.CleanupTimeout, defaultCleanupTimeout)

	m := &nsMap{c: c}
	if !opts.DisableSafetyNet {
		runtime.AddCleanup(m, (*core).collected, c)
	}
	c.log.Debug("map opened", Fields{"token": tok, "host": host, "port": port, "persist": opts.Persist})
	return m, nil
}

func checkEndpoint(host string, port int) error {
	if host == "" {
		return invalidArg("empty host")
	}
	if port < 1 || port > 65535 {
		return invalidArg("port %d out of range", port)
	}
	return nil
}

// binding is a consistent (store, token) pair for one operation. Store calls
// run on the binding, outside the lock, so SetToken/SetHostAndPort do not
// redirect an operation that already started. SetHostAndPort closes the old
// store, so such an operation may still fail with a *StoreError.
type binding struct {
	st    store.Store
	token string
}

func (c *core) bind() (binding, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return binding{}, ErrClosed
	}
	return binding{st: c.st, token: c.token}, nil
}

// scan returns the namespace's physical keys exactly as the store listed them.
func (b binding) scan(ctx context.Context) ([]string, error) {
	ks, err := b.st.Scan(ctx, keys.Pattern(b.token))
	if err != nil {
		return nil, storeErr("scan", "", err)
	}
	return ks, nil
}

// each fetches every entry of the namespace. Keys that vanished between the
// scan and the read are skipped. fn returns false to stop.
func (b binding) each(ctx context.Context, h Hooks, fn func(key, value string) bool) error {
	phys, err := b.scan(ctx)
	if err != nil {
		return err
	}
	for _, pk := range phys {
		lk, ok := keys.Logical(pk, b.token)
		if !ok {
			continue
		}
		v, ok, err := b.st.Get(ctx, pk)
		if err != nil {
			return storeErr("get", pk, err)
		}
		if !ok {
			h.ScanMiss(pk)
			continue
		}
		if !fn(lk, v) {
			return nil
		}
	}
	return nil
}

// purge deletes every key of the namespace and reports how many it removed.
func (b binding) purge(ctx context.Context) (int, error) {
	phys, err := b.scan(ctx)
	if err != nil {
		return 0, err
	}
	for i := 0; i < len(phys); i += delBatch {
		end := min(i+delBatch, len(phys))
		if err := b.st.Del(ctx, phys[i:end]...); err != nil {
			return i, storeErr("del", "", err)
		}
	}
	return len(phys), nil
}

func (m *nsMap) Len(ctx context.Context) (int, error) {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return 0, err
	}
	phys, err := b.scan(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, pk := range phys {
		if _, ok := keys.Logical(pk, b.token); ok {
			n++
		}
	}
	return n, nil
}

func (m *nsMap) IsEmpty(ctx context.Context) (bool, error) {
	n, err := m.Len(ctx)
	return n == 0, err
}

func (m *nsMap) ContainsKey(ctx context.Context, key string) (bool, error) {
	_, ok, err := m.Get(ctx, key)
	return ok, err
}

// ContainsValue reads the physical keys returned by the scan; the scan
// result itself is never modified.
func (m *nsMap) ContainsValue(ctx context.Context, value string) (bool, error) {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return false, err
	}
	found := false
	err = b.each(ctx, m.c.hooks, func(_, v string) bool {
		found = v == value
		return !found
	})
	return found, err
}

func (m *nsMap) Get(ctx context.Context, key string) (string, bool, error) {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return "", false, err
	}
	pk := keys.Physical(key, b.token)
	v, ok, err := b.st.Get(ctx, pk)
	if err != nil {
		return "", false, storeErr("get", pk, err)
	}
	return v, ok, nil
}

func (m *nsMap) Put(ctx context.Context, key, value string) (string, bool, error) {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return "", false, err
	}
	pk := keys.Physical(key, b.token)
	prev, existed, err := b.st.Set(ctx, pk, value)
	if err != nil {
		return "", false, storeErr("set", pk, err)
	}
	return prev, existed, nil
}

func (m *nsMap) Replace(ctx context.Context, key, value string) (string, bool, error) {
	return m.Put(ctx, key, value)
}

// Remove is a read followed by a delete; a concurrent writer between the two
// loses its write and is not reported.
func (m *nsMap) Remove(ctx context.Context, key string) (string, bool, error) {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return "", false, err
	}
	pk := keys.Physical(key, b.token)
	prev, ok, err := b.st.Get(ctx, pk)
	if err != nil {
		return "", false, storeErr("get", pk, err)
	}
	if err := b.st.Del(ctx, pk); err != nil {
		return "", false, storeErr("del", pk, err)
	}
	return prev, ok, nil
}

// PutAll writes entries one by one and stops at the first failure; writes
// already made stay in place.
func (m *nsMap) PutAll(ctx context.Context, entries map[string]string) error {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return err
	}
	for k, v := range entries {
		pk := keys.Physical(k, b.token)
		if _, _, err := b.st.Set(ctx, pk, v); err != nil {
			return storeErr("set", pk, err)
		}
	}
	return nil
}

func (m *nsMap) Clear(ctx context.Context) error {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return err
	}
	_, err = b.purge(ctx)
	return err
}

// Keys returns the logical keys, sorted and unique.
func (m *nsMap) Keys(ctx context.Context) ([]string, error) {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return nil, err
	}
	phys, err := b.scan(ctx)
	if err != nil {
		return nil, err
	}
	set := treeset.NewWithStringComparator()
	for _, pk := range phys {
		if lk, ok := keys.Logical(pk, b.token); ok {
			set.Add(lk)
		}
	}
	out := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(string))
	}
	return out, nil
}

// Values returns one value per present key; duplicates are kept and order is
// unspecified.
func (m *nsMap) Values(ctx context.Context) ([]string, error) {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return nil, err
	}
	var out []string
	err = b.each(ctx, m.c.hooks, func(_, v string) bool {
		out = append(out, v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *nsMap) Entries(ctx context.Context) (map[string]string, error) {
	defer runtime.KeepAlive(m)
	b, err := m.c.bind()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	err = b.each(ctx, m.c.hooks, func(k, v string) bool {
		out[k] = v
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *nsMap) Token() string {
	m.c.mu.RLock()
	defer m.c.mu.RUnlock()
	return m.c.token
}

// SetToken moves the map to another namespace. Nothing is copied or deleted;
// the old namespace stays in the store as it is.
func (m *nsMap) SetToken(tok string) error {
	if tok == "" {
		return invalidArg("empty token")
	}
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	if m.c.closed {
		return ErrClosed
	}
	m.c.log.Debug("token changed", Fields{"from": m.c.token, "to": tok})
	m.c.token = tok
	return nil
}

func (m *nsMap) Host() string {
	m.c.mu.RLock()
	defer m.c.mu.RUnlock()
	return m.c.host
}

func (m *nsMap) Port() int {
	m.c.mu.RLock()
	defer m.c.mu.RUnlock()
	return m.c.port
}

// SetHostAndPort dials the new endpoint and closes the previous store.
// Reachability is not checked; the first store call reports it. Calls still
// running on the previous store may fail once it is closed.
func (m *nsMap) SetHostAndPort(host string, port int) error {
	defer runtime.KeepAlive(m)
	if err := checkEndpoint(host, port); err != nil {
		return err
	}
	st, err := m.c.dial(host, port)
	if err != nil {
		return storeErr("dial", "", err)
	}
	if st == nil {
		return storeErr("dial", "", errors.New("dialer returned nil store"))
	}

	m.c.mu.Lock()
	if m.c.closed {
		m.c.mu.Unlock()
		_ = st.Close(context.Background())
		return ErrClosed
	}
	old := m.c.st
	m.c.st, m.c.host, m.c.port = st, host, port
	m.c.mu.Unlock()

	m.c.log.Info("store endpoint changed", Fields{"host": host, "port": port})
	if err := old.Close(context.Background()); err != nil {
		m.c.log.Warn("closing previous store failed", Fields{"err": err})
	}
	return nil
}

func (m *nsMap) Persist()   { m.setPersist(true) }
func (m *nsMap) Ephemeral() { m.setPersist(false) }

func (m *nsMap) setPersist(v bool) {
	m.c.mu.Lock()
	m.c.persist = v
	m.c.mu.Unlock()
}

func (m *nsMap) Persisted() bool {
	m.c.mu.RLock()
	defer m.c.mu.RUnlock()
	return m.c.persist
}

// Close purges the namespace unless the map is persisted, then releases the
// store. Later calls return nil and later operations return ErrClosed. A
// failed purge is returned but the map is closed regardless.
func (m *nsMap) Close(ctx context.Context) error {
	defer runtime.KeepAlive(m)
	return m.c.release(ctx, ReasonClose)
}

func (c *core) release(ctx context.Context, reason string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	b := binding{st: c.st, token: c.token}
	persist := c.persist
	c.mu.Unlock()

	var errs []error
	if persist {
		c.log.Debug("namespace kept", Fields{"token": b.token, "reason": reason})
		c.hooks.Kept(b.token, reason)
	} else {
		n, err := b.purge(ctx)
		if err != nil {
			errs = append(errs, err)
		} else {
			c.log.Debug("namespace purged", Fields{"token": b.token, "keys": n, "reason": reason})
			c.hooks.Purged(b.token, n, reason)
		}
	}
	if err := b.st.Close(ctx); err != nil {
		c.log.Warn("store close failed", Fields{"token": b.token, "err": err})
		errs = append(errs, storeErr("close", "", err))
	}
	return errors.Join(errs...)
}

// collected runs once the handle is unreachable. Cleanups share one
// goroutine, so the store work happens on a fresh one.
func (c *core) collected() {
	c.mu.RLock()
	closed, tok, persist := c.closed, c.token, c.persist
	c.mu.RUnlock()
	if closed {
		return
	}
	c.log.Warn("map collected without Close", Fields{"token": tok, "persisted": persist})
	c.hooks.Leaked(tok, persist)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cleanupTimeout)
		defer cancel()
		if err := c.release(ctx, ReasonCollected); err != nil {
			c.log.Error("safety-net cleanup failed", Fields{"token": tok, "err": err})
			c.hooks.CleanupError(tok, err)
		}
	}()
}
