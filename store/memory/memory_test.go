package memory

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func TestSetReturnsPrevious(t *testing.T) {
	ctx := context.Background()
	s := New()

	if prev, ok, err := s.Set(ctx, "k", "v1"); err != nil || ok || prev != "" {
		t.Fatalf("first Set: prev=%q ok=%v err=%v", prev, ok, err)
	}
	if prev, ok, err := s.Set(ctx, "k", "v2"); err != nil || !ok || prev != "v1" {
		t.Fatalf("second Set: prev=%q ok=%v err=%v", prev, ok, err)
	}
	if v, ok, err := s.Get(ctx, "k"); err != nil || !ok || v != "v2" {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestEmptyValueIsAHit(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _, _ = s.Set(ctx, "k", "")
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("empty value must be stored")
	}
}

func TestScanAndDel(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []string{"aTOK", "b/cTOK", "aOTHER"} {
		_, _, _ = s.Set(ctx, k, "x")
	}
	got, err := s.Scan(ctx, "*TOK")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "aTOK" || got[1] != "b/cTOK" {
		t.Fatalf("Scan got %v", got)
	}
	if err := s.Del(ctx, append(got, "missing")...); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if keys := s.Keys(); len(keys) != 1 || keys[0] != "aOTHER" {
		t.Fatalf("after Del keys=%v", keys)
	}
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Close(ctx)
	_ = s.Close(ctx)
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Get after Close: %v", err)
	}
	if _, err := s.Scan(ctx, "*"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Scan after Close: %v", err)
	}
}
