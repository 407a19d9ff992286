package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/ssargent/stockroom/pkg/model"
)

func TestProductCodec_RoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		product model.Product
	}{
		{
			name:    "simple product",
			product: model.Product{Name: "Widget", ID: "W-001", Quantity: 42, Price: 9.99},
		},
		{
			name:    "zero quantity and price",
			product: model.Product{Name: "Freebie", ID: "F-0", Quantity: 0, Price: 0},
		},
		{
			name:    "empty strings",
			product: model.Product{},
		},
		{
			name:    "max quantity",
			product: model.Product{Name: "Bolt", ID: "B", Quantity: math.MaxInt32, Price: 0.01},
		},
		{
			name:    "unicode name",
			product: model.Product{Name: "🔩 Schraube groß", ID: "ü-7", Quantity: 3, Price: 1e6},
		},
		{
			name:    "long name",
			product: model.Product{Name: strings.Repeat("n", 10240), ID: "L-1", Quantity: 1, Price: 2},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (ProductCodec{}).Encode(NewEncoder(&buf), tc.product); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			wantSize := 8 + len(tc.product.Name) + 8 + len(tc.product.ID) + 4 + 8
			if buf.Len() != wantSize {
				t.Errorf("Encoded size mismatch: got %d, want %d", buf.Len(), wantSize)
			}

			decoded, err := (ProductCodec{}).Decode(NewDecoder(&buf))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if decoded != tc.product {
				t.Errorf("Product mismatch: got %+v, want %+v", decoded, tc.product)
			}
		})
	}
}

func TestCredentialCodec_RoundTrip(t *testing.T) {
	testCases := []model.Credential{
		{Username: "alice", Token: "$2a$10$abcdefghijklmnopqrstuv"},
		{Username: "", Token: ""},
		{Username: "bob", Token: string([]byte{0x00, 0xFF, 0x10})},
	}

	for _, cred := range testCases {
		var buf bytes.Buffer
		if err := (CredentialCodec{}).Encode(NewEncoder(&buf), cred); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		decoded, err := (CredentialCodec{}).Decode(NewDecoder(&buf))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if decoded != cred {
			t.Errorf("Credential mismatch: got %+v, want %+v", decoded, cred)
		}
	}
}

func TestProductCodec_Layout(t *testing.T) {
	var buf bytes.Buffer
	p := model.Product{Name: "ab", ID: "X", Quantity: -2, Price: 2.5}
	if err := (ProductCodec{}).Encode(NewEncoder(&buf), p); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data := buf.Bytes()

	if got := binary.LittleEndian.Uint64(data[0:8]); got != 2 {
		t.Errorf("name length: got %d, want 2", got)
	}
	if string(data[8:10]) != "ab" {
		t.Errorf("name bytes: got %q", data[8:10])
	}
	if got := binary.LittleEndian.Uint64(data[10:18]); got != 1 {
		t.Errorf("id length: got %d, want 1", got)
	}
	if string(data[18:19]) != "X" {
		t.Errorf("id bytes: got %q", data[18:19])
	}
	if got := int32(binary.LittleEndian.Uint32(data[19:23])); got != -2 {
		t.Errorf("quantity: got %d, want -2", got)
	}
	if got := math.Float64frombits(binary.LittleEndian.Uint64(data[23:31])); got != 2.5 {
		t.Errorf("price: got %v, want 2.5", got)
	}
	if len(data) != 31 {
		t.Errorf("total length: got %d, want 31", len(data))
	}
}

func TestProductCodec_QuantityOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	err := (ProductCodec{}).Encode(NewEncoder(&buf), model.Product{Name: "n", ID: "i", Quantity: math.MaxInt32 + 1})
	if !errors.Is(err, ErrFieldRange) {
		t.Errorf("Expected ErrFieldRange, got %v", err)
	}
}

func TestDecoder_ReadTextTruncated(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	if err := e.WriteUint64(10); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("short")

	_, err := NewDecoder(&buf).ReadText()
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
}

func TestDecoder_HugeDeclaredLength(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).WriteUint64(math.MaxUint64); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("abc")

	_, err := NewDecoder(&buf).ReadText()
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	products := []model.Product{
		{Name: "Alpha", ID: "A-1", Quantity: 3, Price: 2.5},
		{Name: "Beta", ID: "B-1", Quantity: 0, Price: 100},
		{Name: "Gamma", ID: "C-1", Quantity: 11, Price: 0.5},
	}

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, ProductCodec{}, products); err != nil {
		t.Fatalf("EncodeSnapshot failed: %v", err)
	}

	if got := binary.LittleEndian.Uint64(buf.Bytes()[0:8]); got != uint64(len(products)) {
		t.Errorf("record count: got %d, want %d", got, len(products))
	}

	decoded, err := DecodeSnapshot(&buf, ProductCodec{})
	if err != nil {
		t.Fatalf("DecodeSnapshot failed: %v", err)
	}
	if len(decoded) != len(products) {
		t.Fatalf("Decoded %d records, want %d", len(decoded), len(products))
	}
	for i := range products {
		if decoded[i] != products[i] {
			t.Errorf("record %d: got %+v, want %+v", i, decoded[i], products[i])
		}
	}
}

func TestSnapshot_Empty(t *testing.T) {
	t.Run("zero records", func(t *testing.T) {
		var buf bytes.Buffer
		if err := EncodeSnapshot(&buf, CredentialCodec{}, nil); err != nil {
			t.Fatalf("EncodeSnapshot failed: %v", err)
		}
		if buf.Len() != 8 {
			t.Errorf("Expected 8 byte snapshot, got %d", buf.Len())
		}
		decoded, err := DecodeSnapshot(&buf, CredentialCodec{})
		if err != nil {
			t.Fatalf("DecodeSnapshot failed: %v", err)
		}
		if len(decoded) != 0 {
			t.Errorf("Expected no records, got %d", len(decoded))
		}
	})

	t.Run("empty stream", func(t *testing.T) {
		decoded, err := DecodeSnapshot(bytes.NewReader(nil), CredentialCodec{})
		if err != nil {
			t.Fatalf("DecodeSnapshot failed: %v", err)
		}
		if decoded == nil || len(decoded) != 0 {
			t.Errorf("Expected empty non-nil slice, got %v", decoded)
		}
	})
}

func TestSnapshot_TruncatedAtEveryOffset(t *testing.T) {
	creds := []model.Credential{
		{Username: "alice", Token: "token-a"},
		{Username: "bob", Token: "token-b"},
	}

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, CredentialCodec{}, creds); err != nil {
		t.Fatalf("EncodeSnapshot failed: %v", err)
	}
	full := buf.Bytes()

	// Offset 0 is an empty stream, which is a valid empty snapshot
	for cut := 1; cut < len(full); cut++ {
		_, err := DecodeSnapshot(bytes.NewReader(full[:cut]), CredentialCodec{})
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("cut at %d/%d: expected ErrTruncated, got %v", cut, len(full), err)
		}
	}
}

func TestSnapshot_CountLargerThanData(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).WriteUint64(1 << 40); err != nil {
		t.Fatal(err)
	}

	_, err := DecodeSnapshot(&buf, ProductCodec{})
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestEncodeSnapshot_WriterError(t *testing.T) {
	err := EncodeSnapshot(failingWriter{}, ProductCodec{}, []model.Product{{Name: "n", ID: "i"}})
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Expected writer error, got %v", err)
	}
}
