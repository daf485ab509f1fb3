package bolt

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestSetReturnsPreviousAndKeepsEmptyValues(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "nsmap.db"))
	defer s.Close(ctx)

	if prev, ok, err := s.Set(ctx, "k", ""); err != nil || ok || prev != "" {
		t.Fatalf("first Set: prev=%q ok=%v err=%v", prev, ok, err)
	}
	if v, ok, err := s.Get(ctx, "k"); err != nil || !ok || v != "" {
		t.Fatalf("empty value must be a hit: v=%q ok=%v err=%v", v, ok, err)
	}
	if prev, ok, err := s.Set(ctx, "k", "v2"); err != nil || !ok || prev != "" {
		t.Fatalf("second Set: prev=%q ok=%v err=%v", prev, ok, err)
	}
	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Fatalf("missing key reported as hit")
	}
}

func TestScanDelAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nsmap.db")
	s := openTestStore(t, path)
	for _, k := range []string{"aTOK", "bTOK", "cOTHER"} {
		if _, _, err := s.Set(ctx, k, k); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Del(ctx, "bTOK", "missing"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	s = openTestStore(t, path)
	defer s.Close(ctx)
	got, err := s.Scan(ctx, "*TOK")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	if diff := cmp.Diff([]string{"aTOK"}, got); diff != "" {
		t.Fatalf("Scan after reopen (-want +got):\n%s", diff)
	}
}
