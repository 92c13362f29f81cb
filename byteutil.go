package atomicconfig

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// byteWriter builds a value's wire bytes by straight concatenation: every
// field in a catalog value family has a fixed width or is self-delimiting
// (see the null-flag + length-prefixed string value), so there is no need
// for the teacher's uvarint framing here.
type byteWriter struct {
	buf []byte
}

func newByteWriter(capHint int) *byteWriter {
	return &byteWriter{buf: make([]byte, 0, capHint)}
}

func (w *byteWriter) Bytes() []byte { return w.buf }

func (w *byteWriter) Byte(b byte) { w.buf = append(w.buf, b) }

func (w *byteWriter) Bool(b bool) {
	if b {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func (w *byteWriter) Int32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *byteWriter) Float32(v float32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *byteWriter) Raw(b []byte) { w.buf = append(w.buf, b...) }

// StringValue writes the null-flag-prefixed, length-prefixed UTF-16 string
// value described in valuecodec.go. s == nil writes the null form.
func (w *byteWriter) StringValue(s *string) {
	if s == nil {
		w.Byte(0)
		return
	}
	content := encodeUTF16BE(*s)
	w.Byte(1)
	w.Int32(int32(len(content)))
	w.Raw(content)
}

// byteReader consumes a value's wire bytes left to right, reporting
// CorruptValueError (tagged with key and byte offset) on any shortfall.
type byteReader struct {
	orig []byte
	buf  []byte
	key  string
}

func newByteReader(key string, data []byte) *byteReader {
	return &byteReader{orig: data, buf: data, key: key}
}

func (r *byteReader) off() int { return len(r.orig) - len(r.buf) }

func (r *byteReader) Remaining() int { return len(r.buf) }

func (r *byteReader) corrupt(format string, args ...any) error {
	return corruptf(r.key, r.off(), format, args...)
}

func (r *byteReader) Byte() (byte, error) {
	if len(r.buf) < 1 {
		return 0, r.corrupt("expected 1 more byte, found end of value")
	}
	b := r.buf[0]
	r.buf = r.buf[1:]
	return b, nil
}

func (r *byteReader) Bool() (bool, error) {
	b, err := r.Byte()
	if err != nil {
		return false, err
	}
	if b != 0 && b != 1 {
		return false, r.corrupt("expected a 0/1 flag byte, found %#x", b)
	}
	return b == 1, nil
}

func (r *byteReader) Int32() (int32, error) {
	if len(r.buf) < 4 {
		return 0, r.corrupt("expected 4 more bytes (int32), found %d", len(r.buf))
	}
	v := int32(binary.BigEndian.Uint32(r.buf))
	r.buf = r.buf[4:]
	return v, nil
}

func (r *byteReader) Float32() (float32, error) {
	v, err := r.Int32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

func (r *byteReader) Raw(n int) ([]byte, error) {
	if n < 0 {
		return nil, r.corrupt("negative length %d", n)
	}
	if len(r.buf) < n {
		return nil, r.corrupt("expected %d more bytes, found %d", n, len(r.buf))
	}
	v := r.buf[:n]
	r.buf = r.buf[n:]
	return v, nil
}

// StringValue reads the value written by byteWriter.StringValue.
func (r *byteReader) StringValue() (*string, error) {
	flag, err := r.Byte()
	if err != nil {
		return nil, err
	}
	if flag == 0 {
		return nil, nil
	}
	if flag != 1 {
		return nil, r.corrupt("invalid string value flag %#x", flag)
	}
	n, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, r.corrupt("negative string byte length %d", n)
	}
	raw, err := r.Raw(int(n))
	if err != nil {
		return nil, err
	}
	s, err := decodeUTF16BE(raw)
	if err != nil {
		return nil, r.corrupt("%v", err)
	}
	return &s, nil
}

func encodeUTF16BE(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.BigEndian.PutUint16(buf[i*2:], u)
	}
	return buf
}

func decodeUTF16BE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", corruptError{"odd byte length for UTF-16 content"}
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(b[i*2:])
	}
	return string(utf16.Decode(units)), nil
}

type corruptError struct{ msg string }

func (e corruptError) Error() string { return e.msg }
