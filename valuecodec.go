package atomicconfig

import "encoding/binary"

// This file implements the two scalar value families every other codec in
// the package (clusterdescriptor.go, enginedescriptor.go,
// configurationblob.go) is built out of:
//
//   - string value: 1 null-flag byte; if present (flag==1), a 4-byte
//     big-endian length followed by that many bytes of UTF-16BE content.
//   - integer value: 4 raw big-endian bytes, the whole value (never null).
//
// Both are consumed through byteWriter/byteReader (byteutil.go) when
// embedded in a larger structured value, and through the two
// free-standing functions below when a catalog key's *entire* value is
// one such scalar (e.g. "version", "schemaRecordId", "charset").

// EncodeStringValue renders a nilable string in the wire format every
// string-typed catalog key shares.
func EncodeStringValue(s *string) []byte {
	w := newByteWriter(5)
	w.StringValue(s)
	return w.Bytes()
}

// DecodeStringValue parses a buffer produced by EncodeStringValue. key is
// used only to annotate a CorruptValueError.
func DecodeStringValue(key string, data []byte) (*string, error) {
	r := newByteReader(key, data)
	v, err := r.StringValue()
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, r.corrupt("%d trailing bytes after string value", r.Remaining())
	}
	return v, nil
}

// StringValueSizeOnWire reports how many bytes, starting at offset, the
// next string value occupies: 1 for the null form, or 5+len(content)
// for the present form. It does not validate the UTF-16 content, only
// the framing, so callers can skip over a string value embedded in a
// larger structured record without fully decoding it.
func StringValueSizeOnWire(key string, data []byte, offset int) (int, error) {
	if offset >= len(data) {
		return 0, corruptf(key, offset, "expected a string value flag byte, found end of value")
	}
	switch data[offset] {
	case 0:
		return 1, nil
	case 1:
		if offset+5 > len(data) {
			return 0, corruptf(key, offset, "truncated string value length prefix")
		}
		n := binary.BigEndian.Uint32(data[offset+1 : offset+5])
		return int(n) + 5, nil
	default:
		return 0, corruptf(key, offset, "invalid string value flag %#x", data[offset])
	}
}

// EncodeIntValue renders the 4-byte big-endian integer value shared by
// every int-typed catalog key.
func EncodeIntValue(v int32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v))
	return buf
}

// DecodeIntValue parses a buffer produced by EncodeIntValue.
func DecodeIntValue(key string, data []byte) (int32, error) {
	if len(data) != 4 {
		return 0, corruptf(key, 0, "expected exactly 4 bytes for an integer value, found %d", len(data))
	}
	return int32(binary.BigEndian.Uint32(data)), nil
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
