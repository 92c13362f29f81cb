package atomicconfig

import "testing"

func newTestCatalogStore(t *testing.T) *CatalogStore {
	t.Helper()
	cs := newCatalogStore(newMemStorage(), newMemStorage(), NewNopLogger())
	if err := cs.create(); err != nil {
		t.Fatalf("create: %v", err)
	}
	return cs
}

func TestCatalogStorePutGetDrop(t *testing.T) {
	cs := newTestCatalogStore(t)

	if _, ok, err := cs.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want ok=false", ok, err)
	}

	if err := cs.Put("k1", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	v, ok, err := cs.Get("k1")
	if err != nil || !ok || string(v) != "v1" {
		t.Fatalf("Get(k1) = %q ok=%v err=%v", v, ok, err)
	}

	// overwrite reuses the existing record rather than allocating a new one
	if err := cs.Put("k1", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	v, ok, err = cs.Get("k1")
	if err != nil || !ok || string(v) != "v2" {
		t.Fatalf("Get(k1) after overwrite = %q ok=%v err=%v", v, ok, err)
	}

	dropped, err := cs.Drop("k1")
	if err != nil || !dropped {
		t.Fatalf("Drop(k1) = dropped=%v err=%v", dropped, err)
	}
	if _, ok, err := cs.Get("k1"); err != nil || ok {
		t.Fatalf("Get(k1) after drop = ok=%v err=%v", ok, err)
	}

	dropped, err = cs.Drop("k1")
	if err != nil || dropped {
		t.Fatalf("Drop(k1) again = dropped=%v err=%v, want false", dropped, err)
	}
}

func TestCatalogStorePrefixScan(t *testing.T) {
	cs := newTestCatalogStore(t)
	entries := map[string]string{
		"p_a": "1",
		"p_b": "2",
		"p_c": "3",
		"q_z": "ignored",
	}
	for k, v := range entries {
		if err := cs.Put(k, []byte(v)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := cs.PrefixScan("p_")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("PrefixScan returned %d entries, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Key >= got[i].Key {
			t.Fatalf("PrefixScan not in ascending order: %q >= %q", got[i-1].Key, got[i].Key)
		}
	}
}

func TestCatalogStoreClearRemovesWholeFamily(t *testing.T) {
	cs := newTestCatalogStore(t)
	for _, k := range []string{"fam_1", "fam_2", "fam_3"} {
		if err := cs.Put(k, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if err := cs.Put("other", []byte("y")); err != nil {
		t.Fatal(err)
	}

	if err := cs.Clear("fam_"); err != nil {
		t.Fatal(err)
	}

	got, err := cs.PrefixScan("fam_")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries left under fam_, got %v", got)
	}
	if _, ok, err := cs.Get("other"); err != nil || !ok {
		t.Fatalf("Clear(fam_) should not have touched other, ok=%v err=%v", ok, err)
	}
}

func TestCatalogStoreListenerFiresAfterCommit(t *testing.T) {
	cs := newTestCatalogStore(t)
	var seen []string
	cs.SetListener(func(key string) {
		// The write must already be visible when the listener runs.
		_, ok, err := cs.Get(key)
		if err != nil || !ok {
			panic("listener observed an uncommitted write")
		}
		seen = append(seen, key)
	})

	if err := cs.Put("a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := cs.Put("b", []byte("2")); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Fatalf("listener calls = %v", seen)
	}
}

func TestCatalogStoreRejectsOperationsBeforeOpen(t *testing.T) {
	cs := newCatalogStore(newMemStorage(), newMemStorage(), NewNopLogger())
	if _, _, err := cs.Get("k"); err != ErrNotOpen {
		t.Fatalf("Get before open = %v, want ErrNotOpen", err)
	}
	if err := cs.Put("k", []byte("v")); err != ErrNotOpen {
		t.Fatalf("Put before open = %v, want ErrNotOpen", err)
	}
}
