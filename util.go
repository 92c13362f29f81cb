package atomicconfig

import (
	"encoding/hex"
	"log/slog"
	"strings"
)

// must panics if err is non-nil, for invariants whose failure indicates a
// programming error, never a runtime condition.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func nonNil[T any](v *T) *T {
	if v == nil {
		panic("atomicconfig: unexpected nil")
	}
	return v
}

// splitByte splits on the first occurrence of sep. The text serializer
// does not use it; it splits fields with strings.Split.
func splitByte(s string, sep byte) (string, string, bool) {
	i := strings.IndexByte(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

// inc increments data in place as if it were a big-endian integer,
// reporting true on success and false if it overflowed (all bytes were
// already 0xFF, in which case data is left unchanged).
func inc(data []byte) bool {
	n := len(data)
	for i := n - 1; i >= 0; i-- {
		if data[i] != 0xFF {
			for j := i; j < n; j++ {
				data[j]++
			}
			return true
		}
	}
	return false
}

func hexstr(b []byte) string {
	if b == nil {
		return "<nil>"
	}
	if len(b) == 0 {
		return "<empty>"
	}
	return hex.EncodeToString(b)
}

func hexAttr(key string, b []byte) slog.Attr {
	return slog.String(key, hexstr(b))
}
