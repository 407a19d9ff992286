package codec

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ssargent/stockroom/pkg/model"
)

// Errors
var (
	ErrTruncated  = &CodecError{"truncated input"}
	ErrFieldRange = &CodecError{"field value out of range"}
)

// CodecError represents a failure to encode or decode a record
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return e.Message
}

// RecordCodec encodes and decodes one record type
type RecordCodec[T any] interface {
	Encode(e *Encoder, record T) error
	Decode(d *Decoder) (T, error)
}

// ProductCodec handles product records
// Format: [NameLen(8)][Name][IDLen(8)][ID][Quantity(4)][Price(8)]
type ProductCodec struct{}

// Encode writes a product in field order
func (ProductCodec) Encode(e *Encoder, p model.Product) error {
	if p.Quantity < math.MinInt32 || p.Quantity > math.MaxInt32 {
		return fmt.Errorf("%w: quantity %d does not fit in 32 bits", ErrFieldRange, p.Quantity)
	}
	if err := e.WriteText(p.Name); err != nil {
		return err
	}
	if err := e.WriteText(p.ID); err != nil {
		return err
	}
	if err := e.WriteInt32(int32(p.Quantity)); err != nil {
		return err
	}
	return e.WriteFloat64(p.Price)
}

// Decode reads a product in field order
func (ProductCodec) Decode(d *Decoder) (model.Product, error) {
	var p model.Product
	var err error

	if p.Name, err = d.ReadText(); err != nil {
		return model.Product{}, err
	}
	if p.ID, err = d.ReadText(); err != nil {
		return model.Product{}, err
	}
	quantity, err := d.ReadInt32()
	if err != nil {
		return model.Product{}, err
	}
	p.Quantity = int(quantity)
	if p.Price, err = d.ReadFloat64(); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// CredentialCodec handles credential records
// Format: [UsernameLen(8)][Username][TokenLen(8)][Token]
type CredentialCodec struct{}

// Encode writes a credential in field order
func (CredentialCodec) Encode(e *Encoder, c model.Credential) error {
	if err := e.WriteText(c.Username); err != nil {
		return err
	}
	return e.WriteText(c.Token)
}

// Decode reads a credential in field order
func (CredentialCodec) Decode(d *Decoder) (model.Credential, error) {
	var c model.Credential
	var err error

	if c.Username, err = d.ReadText(); err != nil {
		return model.Credential{}, err
	}
	if c.Token, err = d.ReadText(); err != nil {
		return model.Credential{}, err
	}
	return c, nil
}

// maxPrealloc caps the slice capacity reserved from an untrusted record count
const maxPrealloc = 1024

// EncodeSnapshot writes the record count followed by every record
func EncodeSnapshot[T any](w io.Writer, c RecordCodec[T], records []T) error {
	e := NewEncoder(w)
	if err := e.WriteUint64(uint64(len(records))); err != nil {
		return err
	}
	for i, record := range records {
		if err := c.Encode(e, record); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot. An empty stream
// decodes as an empty snapshot.
func DecodeSnapshot[T any](r io.Reader, c RecordCodec[T]) ([]T, error) {
	d := NewDecoder(r)
	count, err := d.ReadUint64()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("record count: %w", err)
	}

	records := make([]T, 0, min(count, maxPrealloc))
	for i := uint64(0); i < count; i++ {
		record, err := c.Decode(d)
		if err != nil {
			// Running out of input inside the declared count is truncation
			if errors.Is(err, io.EOF) {
				err = ErrTruncated
			}
			return nil, fmt.Errorf("record %d of %d: %w", i, count, err)
		}
		records = append(records, record)
	}
	return records, nil
}
