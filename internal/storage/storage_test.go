package storage

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

// newTestStorage opens a storage in a temporary directory closed at test end.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}

	t.Cleanup(func() { s.Close() })

	return s
}

func TestSetAndGet(t *testing.T) {
	s := newTestStorage(t)

	key := []byte("c:coin-1")
	value := []byte("payload")

	if err := s.Set(key, value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !bytes.Equal(got, value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}
}

func TestGetNonExistent(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.Get([]byte("missing"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got != nil {
		t.Errorf("Get returned %q, want nil", got)
	}

	ok, err := s.Has([]byte("missing"))
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}

	if ok {
		t.Error("Has returned true for missing key")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)

	key := []byte("to-delete")

	if err := s.Set(key, []byte("value")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := s.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	ok, err := s.Has(key)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}

	if ok {
		t.Error("Has after Delete returned true")
	}
}

func TestApplyMixesSetAndDelete(t *testing.T) {
	s := newTestStorage(t)

	if err := s.Set([]byte("k:gone"), []byte("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	pairs := []KeyValue{
		{Key: []byte("k:1"), Value: []byte("value-1")},
		{Key: []byte("k:2"), Value: []byte("value-2")},
		{Key: []byte("k:gone"), Value: nil},
	}

	if err := s.Apply(pairs); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for _, kv := range pairs[:2] {
		got, err := s.Get(kv.Key)
		if err != nil {
			t.Fatalf("Get failed for %q: %v", kv.Key, err)
		}

		if !bytes.Equal(got, kv.Value) {
			t.Errorf("Get(%q) = %q, want %q", kv.Key, got, kv.Value)
		}
	}

	if got, _ := s.Get([]byte("k:gone")); got != nil {
		t.Errorf("deleted key still present: %q", got)
	}
}

func TestIteratePrefix(t *testing.T) {
	s := newTestStorage(t)

	for _, k := range []string{"a:2", "a:1", "b:1", "a:3"} {
		if err := s.Set([]byte(k), []byte(k)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	var keys []string
	err := s.IteratePrefix([]byte("a:"), func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("IteratePrefix failed: %v", err)
	}

	want := []string{"a:1", "a:2", "a:3"}
	if len(keys) != len(want) {
		t.Fatalf("got keys %v, want %v", keys, want)
	}

	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestIteratePrefixStopsOnError(t *testing.T) {
	s := newTestStorage(t)

	for _, k := range []string{"p:1", "p:2"} {
		if err := s.Set([]byte(k), nil); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	stop := errors.New("stop")
	calls := 0

	err := s.IteratePrefix([]byte("p:"), func(_, _ []byte) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("got %v, want stop error", err)
	}

	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestPrefixUpperBound(t *testing.T) {
	if got := prefixUpperBound([]byte("a:")); !bytes.Equal(got, []byte("a;")) {
		t.Errorf("got %q, want %q", got, "a;")
	}

	if got := prefixUpperBound([]byte{0x01, 0xFF}); !bytes.Equal(got, []byte{0x02}) {
		t.Errorf("got %x, want 02", got)
	}

	if got := prefixUpperBound([]byte{0xFF, 0xFF}); got != nil {
		t.Errorf("got %x, want nil", got)
	}
}
