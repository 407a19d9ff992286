package codec

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// Encoder writes fixed-layout fields to a stream
type Encoder struct {
	w   io.Writer
	buf [8]byte
}

// NewEncoder creates an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteText writes the byte length of s followed by its raw bytes
func (e *Encoder) WriteText(s string) error {
	if err := e.WriteUint64(uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

// WriteUint64 writes v as 8 little-endian bytes
func (e *Encoder) WriteUint64(v uint64) error {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	_, err := e.w.Write(e.buf[:8])
	return err
}

// WriteInt32 writes v as 4 little-endian bytes
func (e *Encoder) WriteInt32(v int32) error {
	binary.LittleEndian.PutUint32(e.buf[:4], uint32(v))
	_, err := e.w.Write(e.buf[:4])
	return err
}

// WriteFloat64 writes the IEEE-754 bits of v as 8 little-endian bytes
func (e *Encoder) WriteFloat64(v float64) error {
	return e.WriteUint64(math.Float64bits(v))
}

// Decoder reads fixed-layout fields from a stream
type Decoder struct {
	r   io.Reader
	buf [8]byte
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// ReadText reads a length-prefixed string
func (d *Decoder) ReadText() (string, error) {
	n, err := d.ReadUint64()
	if err != nil {
		return "", err
	}
	if n > math.MaxInt64 {
		return "", ErrTruncated
	}

	// Read through a limited reader so a corrupt length grows the buffer
	// only as far as the data that actually exists.
	data, err := io.ReadAll(io.LimitReader(d.r, int64(n)))
	if err != nil {
		return "", err
	}
	if uint64(len(data)) < n {
		return "", ErrTruncated
	}
	return string(data), nil
}

// ReadUint64 reads 8 little-endian bytes
func (d *Decoder) ReadUint64() (uint64, error) {
	if err := d.fill(8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(d.buf[:8]), nil
}

// ReadInt32 reads 4 little-endian bytes as a signed integer
func (d *Decoder) ReadInt32() (int32, error) {
	if err := d.fill(4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(d.buf[:4])), nil
}

// ReadFloat64 reads an IEEE-754 double
func (d *Decoder) ReadFloat64() (float64, error) {
	bits, err := d.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// fill reads exactly n bytes into buf. A clean end of stream is reported as
// io.EOF so callers can tell "no more input" from a cut-off field.
func (d *Decoder) fill(n int) error {
	_, err := io.ReadFull(d.r, d.buf[:n])
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
