package codec

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type badRW struct{}

func (badRW) Write(p []byte) (int, error) { return 0, errors.New("always fails") }
func (badRW) Read(p []byte) (int, error)  { return 0, errors.New("always fails") }

func TestU64RoundTrip(t *testing.T) {
	w := NewBufWriter()
	w.WriteU64LE(0xbadc0de15a11dead)
	require.NoError(t, w.Err())
	require.Equal(t, []byte{0xad, 0xde, 0x11, 0x5a, 0xe1, 0x0d, 0xdc, 0xba}, w.Bytes())

	r := NewReaderFromBytes(w.Bytes())
	require.Equal(t, uint64(0xbadc0de15a11dead), r.ReadU64LE())
	require.NoError(t, r.Err())
}

func TestU128RoundTrip(t *testing.T) {
	v := uint256.MustFromDecimal("1000000000000000000000000")
	w := NewBufWriter()
	w.WriteU128LE(v)
	require.NoError(t, w.Err())
	require.Len(t, w.Bytes(), 16)

	r := NewReaderFromBytes(w.Bytes())
	got := r.ReadU128LE()
	require.NoError(t, r.Err())
	require.Equal(t, v.String(), got.String())
}

func TestU128Overflow(t *testing.T) {
	v := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	w := NewBufWriter()
	w.WriteU128LE(v)
	require.Error(t, w.Err())
}

func TestStringRoundTrip(t *testing.T) {
	w := NewBufWriter()
	w.WriteString("hello borsh")
	require.NoError(t, w.Err())
	require.Equal(t, len("hello borsh")+4, w.Len())

	r := NewReaderFromBytes(w.Bytes())
	require.Equal(t, "hello borsh", r.ReadString())
	require.NoError(t, r.Err())
}

func TestOptionRoundTrip(t *testing.T) {
	w := NewBufWriter()
	var none *uint64
	WriteOption(w, none, func(w *Writer, v uint64) { w.WriteU64LE(v) })
	v := uint64(42)
	WriteOption(w, &v, func(w *Writer, v uint64) { w.WriteU64LE(v) })
	require.NoError(t, w.Err())

	r := NewReaderFromBytes(w.Bytes())
	gotNone := ReadOption(r, func(r *Reader) uint64 { return r.ReadU64LE() })
	require.Nil(t, gotNone)
	gotSome := ReadOption(r, func(r *Reader) uint64 { return r.ReadU64LE() })
	require.NotNil(t, gotSome)
	require.Equal(t, uint64(42), *gotSome)
	require.NoError(t, r.Err())
}

func TestVecRoundTrip(t *testing.T) {
	w := NewBufWriter()
	WriteVec(w, []uint32{1, 2, 3}, func(w *Writer, v uint32) { w.WriteU32LE(v) })
	require.NoError(t, w.Err())

	r := NewReaderFromBytes(w.Bytes())
	got := ReadVec(r, func(r *Reader) uint32 { return r.ReadU32LE() })
	require.NoError(t, r.Err())
	require.Equal(t, []uint32{1, 2, 3}, got)
}

func TestTrailingBytesRejected(t *testing.T) {
	data := append([]byte{0, 0, 0, 0}, 0xff)
	err := Decode(data, decodeFunc(func(r *Reader) { r.ReadU32LE() }))
	require.ErrorIs(t, err, ErrTrailingBytes)
}

func TestWriterErrIsSticky(t *testing.T) {
	w := NewWriter(badRW{})
	w.WriteU32LE(1)
	require.Error(t, w.Err())
	w.WriteU16LE(1)
	w.WriteString("x")
	require.Error(t, w.Err())
}

func TestReaderErrIsSticky(t *testing.T) {
	r := NewReader(badRW{})
	r.ReadU32LE()
	require.Error(t, r.Err())
	require.Equal(t, uint64(0), r.ReadU64LE())
	require.Equal(t, "", r.ReadString())
}

type decodeFunc func(r *Reader)

func (f decodeFunc) DecodeBorsh(r *Reader) { f(r) }
