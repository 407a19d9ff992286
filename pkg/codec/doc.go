// Package codec provides record serialization and deserialization for the
// stockroom snapshot files.
//
// The codec package implements the private binary format shared by the
// product store and the credential store. A snapshot is a record count
// followed by that many records of a single type.
//
// # Snapshot Format
//
//	[Count(8)][Record]...[Record]
//
// Product record:
//
//	[NameLen(8)][Name][IDLen(8)][ID][Quantity(4)][Price(8)]
//
// Credential record:
//
//	[UsernameLen(8)][Username][TokenLen(8)][Token]
//
// Fields:
//   - Count and every *Len: 64-bit unsigned integer (little-endian)
//   - Text: raw bytes, no terminator and no escaping
//   - Quantity: 32-bit signed integer (little-endian)
//   - Price: IEEE-754 double (little-endian)
//
// There is no version field and no checksum. The record count and a
// successful read of every following field are the only integrity check.
//
// # Usage
//
//	var buf bytes.Buffer
//	if err := codec.EncodeSnapshot(&buf, codec.ProductCodec{}, products); err != nil {
//	    return err
//	}
//
//	products, err := codec.DecodeSnapshot(&buf, codec.ProductCodec{})
//	if err != nil {
//	    return err // errors.Is(err, codec.ErrTruncated) for short input
//	}
//
// # Error Handling
//
// Reading fewer bytes than a length or fixed-width field declares fails with
// ErrTruncated. A stream that ends before the record count decodes as an
// empty snapshot. Declared lengths are never used to size an allocation up
// front, so a corrupted length cannot exhaust memory.
//
// # Thread Safety
//
// Encoder and Decoder wrap a single stream and are not safe for concurrent
// use. ProductCodec and CredentialCodec are stateless.
package codec
