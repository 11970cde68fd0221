// Package codec implements the canonical Borsh-compatible binary
// serialization used for NEAR transactions, actions, and delegate actions:
// little-endian fixed-width integers, u32-length-prefixed strings/bytes/
// sequences, and 0x00/0x01-tagged options. Encoding is deterministic:
// structurally equal values always produce byte-identical output.
//
// Writer and Reader follow the sticky-error idiom: once an error is set, all
// further operations are no-ops that preserve it, so a long chain of writes
// or reads can be checked once at the end instead of after every call.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

// ErrTrailingBytes is returned by Decode when bytes remain after decoding a
// value fully (§4.1: "extraneous trailing bytes are a decode failure").
var ErrTrailingBytes = errors.New("codec: trailing bytes after decode")

// Encoder is implemented by every value with a canonical Borsh encoding.
type Encoder interface {
	EncodeBorsh(w *Writer)
}

// Decoder is implemented by every value with a canonical Borsh decoding.
type Decoder interface {
	DecodeBorsh(r *Reader)
}

// Writer accumulates a Borsh-encoded byte stream.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps an arbitrary io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// NewBufWriter returns a Writer backed by an in-memory buffer; its
// accumulated bytes are retrieved with Bytes.
func NewBufWriter() *Writer {
	return &Writer{w: new(bytes.Buffer)}
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

// SetErr injects an error, e.g. from higher-level validation, so that
// Bytes reports failure without a partial result.
func (w *Writer) SetErr(err error) { w.err = err }

// Bytes returns the accumulated buffer. It is only meaningful when Writer
// was built with NewBufWriter, and returns nil once an error has occurred.
func (w *Writer) Bytes() []byte {
	if w.err != nil {
		return nil
	}
	buf, ok := w.w.(*bytes.Buffer)
	if !ok {
		return nil
	}
	return buf.Bytes()
}

// Len reports the number of bytes written so far (NewBufWriter only).
func (w *Writer) Len() int {
	buf, ok := w.w.(*bytes.Buffer)
	if !ok {
		return 0
	}
	return buf.Len()
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(p); err != nil {
		w.err = err
	}
}

// WriteBytesRaw writes p with no length prefix. Most callers want WriteBytes.
func (w *Writer) WriteBytesRaw(p []byte) { w.write(p) }

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(v uint8) { w.write([]byte{v}) }

// WriteBool writes 0x00 or 0x01.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

// WriteU16LE writes v little-endian.
func (w *Writer) WriteU16LE(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.write(b[:])
}

// WriteU32LE writes v little-endian.
func (w *Writer) WriteU32LE(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.write(b[:])
}

// WriteU64LE writes v little-endian.
func (w *Writer) WriteU64LE(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.write(b[:])
}

// WriteU128LE writes v as 16 little-endian bytes. v must fit in 128 bits;
// a wider value writes nothing and sets the Writer's error.
func (w *Writer) WriteU128LE(v *uint256.Int) {
	if w.err != nil {
		return
	}
	if v.BitLen() > 128 {
		w.err = fmt.Errorf("codec: value %s overflows u128", v.String())
		return
	}
	b := v.Bytes32() // big-endian, 32 bytes
	var le [16]byte
	for i := 0; i < 16; i++ {
		le[i] = b[31-i]
	}
	w.write(le[:])
}

// WriteBytes writes a u32 length prefix followed by p.
func (w *Writer) WriteBytes(p []byte) {
	w.WriteU32LE(uint32(len(p)))
	w.write(p)
}

// WriteString writes a u32 length prefix followed by the UTF-8 bytes of s.
func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// WriteOption writes 0x00 if v is nil, else 0x01 followed by write(*v).
func WriteOption[T any](w *Writer, v *T, write func(*Writer, T)) {
	if v == nil {
		w.WriteBool(false)
		return
	}
	w.WriteBool(true)
	write(w, *v)
}

// WriteVec writes a u32 length prefix followed by each element via write.
func WriteVec[T any](w *Writer, items []T, write func(*Writer, T)) {
	w.WriteU32LE(uint32(len(items)))
	for _, it := range items {
		write(w, it)
	}
}

// Reader consumes a Borsh-encoded byte stream.
type Reader struct {
	r   io.Reader
	err error
}

// NewReader wraps an arbitrary io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// NewReaderFromBytes wraps a byte slice.
func NewReaderFromBytes(b []byte) *Reader {
	return &Reader{r: bytes.NewReader(b)}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// SetErr injects an error, e.g. from higher-level validation.
func (r *Reader) SetErr(err error) { r.err = err }

func (r *Reader) read(p []byte) {
	if r.err != nil {
		return
	}
	if _, err := io.ReadFull(r.r, p); err != nil {
		r.err = err
	}
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() uint8 {
	var b [1]byte
	r.read(b[:])
	return b[0]
}

// ReadBool reads 0x00/0x01; any other byte is a decode error.
func (r *Reader) ReadBool() bool {
	v := r.ReadU8()
	if r.err != nil {
		return false
	}
	switch v {
	case 0:
		return false
	case 1:
		return true
	default:
		r.err = fmt.Errorf("codec: invalid bool tag 0x%02x", v)
		return false
	}
}

// ReadU16LE reads a little-endian uint16.
func (r *Reader) ReadU16LE() uint16 {
	var b [2]byte
	r.read(b[:])
	return binary.LittleEndian.Uint16(b[:])
}

// ReadU32LE reads a little-endian uint32.
func (r *Reader) ReadU32LE() uint32 {
	var b [4]byte
	r.read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

// ReadU64LE reads a little-endian uint64.
func (r *Reader) ReadU64LE() uint64 {
	var b [8]byte
	r.read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// ReadU128LE reads 16 little-endian bytes into a uint256.Int.
func (r *Reader) ReadU128LE() *uint256.Int {
	var le [16]byte
	r.read(le[:])
	if r.err != nil {
		return new(uint256.Int)
	}
	var be [32]byte
	for i := 0; i < 16; i++ {
		be[31-i] = le[i]
	}
	return new(uint256.Int).SetBytes32(be[:])
}

// maxAlloc bounds a single length-prefixed allocation to guard against a
// corrupt or adversarial length field.
const maxAlloc = 64 << 20

// ReadBytes reads a u32 length prefix followed by that many bytes.
func (r *Reader) ReadBytes() []byte {
	n := r.ReadU32LE()
	if r.err != nil {
		return nil
	}
	if n > maxAlloc {
		r.err = fmt.Errorf("codec: length %d exceeds maximum allocation", n)
		return nil
	}
	buf := make([]byte, n)
	r.read(buf)
	if r.err != nil {
		return nil
	}
	return buf
}

// ReadString reads a u32-length-prefixed UTF-8 string.
func (r *Reader) ReadString() string {
	return string(r.ReadBytes())
}

// ReadOption reads the 0x00/0x01 discriminant and, when present, decodes a
// value with read.
func ReadOption[T any](r *Reader, read func(*Reader) T) *T {
	present := r.ReadBool()
	if r.err != nil || !present {
		return nil
	}
	v := read(r)
	return &v
}

// ReadVec reads a u32 length prefix and then that many elements via read.
func ReadVec[T any](r *Reader, read func(*Reader) T) []T {
	n := r.ReadU32LE()
	if r.err != nil {
		return nil
	}
	if n > maxAlloc {
		r.err = fmt.Errorf("codec: vector length %d exceeds maximum allocation", n)
		return nil
	}
	items := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		items = append(items, read(r))
		if r.err != nil {
			return items
		}
	}
	return items
}

// Encode runs e.EncodeBorsh against a fresh buffer and returns the result,
// or the error produced partway through encoding.
func Encode(e Encoder) ([]byte, error) {
	w := NewBufWriter()
	e.EncodeBorsh(w)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Decode decodes d from b in full, failing on trailing bytes (§4.1's
// round-trip invariant: decode(encode(x)) == x, with no slack either way).
func Decode(b []byte, d Decoder) error {
	br := bytes.NewReader(b)
	r := NewReader(br)
	d.DecodeBorsh(r)
	if err := r.Err(); err != nil {
		return err
	}
	if br.Len() != 0 {
		return ErrTrailingBytes
	}
	return nil
}
