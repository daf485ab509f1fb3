package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	goredis "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := New(Config{
		Client:      goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
		CloseClient: true,
		ScanCount:   2, // force several SCAN round trips
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, mr
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); err != ErrNilClient {
		t.Fatalf("got %v, want ErrNilClient", err)
	}
}

func TestGetSetReturnsPrevious(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("miss expected, ok=%v err=%v", ok, err)
	}
	if prev, ok, err := s.Set(ctx, "k", "v1"); err != nil || ok || prev != "" {
		t.Fatalf("first Set: prev=%q ok=%v err=%v", prev, ok, err)
	}
	if prev, ok, err := s.Set(ctx, "k", "v2"); err != nil || !ok || prev != "v1" {
		t.Fatalf("second Set: prev=%q ok=%v err=%v", prev, ok, err)
	}
	if got, _ := mr.Get("k"); got != "v2" {
		t.Fatalf("server holds %q, want v2", got)
	}
	if v, ok, err := s.Get(ctx, "k"); err != nil || !ok || v != "v2" {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestScanPaginatesAndMatches(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	var want []string
	for i := 0; i < 25; i++ {
		k := fmt.Sprintf("key%dTOKEN", i)
		want = append(want, k)
		if err := mr.Set(k, strconv.Itoa(i)); err != nil {
			t.Fatal(err)
		}
	}
	_ = mr.Set("keyOTHER", "x")

	got, err := s.Scan(ctx, "*TOKEN")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	sort.Strings(got)
	sort.Strings(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Scan mismatch (-want +got):\n%s", diff)
	}
}

func TestDelMany(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	for _, k := range []string{"a", "b", "c"} {
		_ = mr.Set(k, k)
	}
	if err := s.Del(ctx); err != nil {
		t.Fatalf("Del(): %v", err)
	}
	if err := s.Del(ctx, "a"); err != nil {
		t.Fatalf("Del(a): %v", err)
	}
	if err := s.Del(ctx, "b", "c", "missing"); err != nil {
		t.Fatalf("Del(b,c,missing): %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("keys left: %v", keys)
	}
}

func TestServerErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	mr.SetError("ERR server down")

	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Fatalf("Get: expected error")
	}
	if _, _, err := s.Set(ctx, "k", "v"); err == nil {
		t.Fatalf("Set: expected error")
	}
	if _, err := s.Scan(ctx, "*"); err == nil {
		t.Fatalf("Scan: expected error")
	}
}

func TestDialAndCloseTwice(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatal(err)
	}
	s, err := Dial(mr.Host(), port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	ctx := context.Background()
	if _, _, err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
