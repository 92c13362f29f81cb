package atomicconfig

import "testing"

func seedBucket(t *testing.T, keys ...string) (storageTx, storageBucket) {
	t.Helper()
	st := newMemStorage()
	tx, err := st.BeginTx(true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := tx.CreateBucket("b", "")
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range keys {
		if err := b.Put([]byte(k), []byte("v:"+k)); err != nil {
			t.Fatal(err)
		}
	}
	return tx, b
}

func collect(cur *RawRangeCursor) []string {
	var out []string
	for cur.Next() {
		out = append(out, string(cur.Key()))
	}
	return out
}

func TestRawPrefixScanForward(t *testing.T) {
	_, b := seedBucket(t, "a_1", "a_2", "a_3", "b_1")
	rr := RawPrefix([]byte("a_"))
	cur := rr.newCursor(b.Cursor(), noopSlog)
	got := collect(cur)
	want := []string{"a_1", "a_2", "a_3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRawPrefixScanReverse(t *testing.T) {
	_, b := seedBucket(t, "a_1", "a_2", "a_3", "b_1")
	rr := RawPrefix([]byte("a_")).Reversed()
	cur := rr.newCursor(b.Cursor(), noopSlog)
	got := collect(cur)
	want := []string{"a_3", "a_2", "a_1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRawRangeInclusiveExclusiveBounds(t *testing.T) {
	_, b := seedBucket(t, "k1", "k2", "k3", "k4")
	rr := RawIE([]byte("k1"), []byte("k3"))
	cur := rr.newCursor(b.Cursor(), noopSlog)
	got := collect(cur)
	want := []string{"k1", "k2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRawRangeEmptyBucketYieldsNothing(t *testing.T) {
	_, b := seedBucket(t)
	rr := RawOO()
	cur := rr.newCursor(b.Cursor(), noopSlog)
	if cur.Next() {
		t.Fatal("expected no results from an empty bucket")
	}
}
