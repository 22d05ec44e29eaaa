package colfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	MagicNumber = 0x4C4B4331 // "LKC1"
	Version     = 1
	HeaderSize  = 4 + 4 + 1 + 3 + 4 + 8
)

var (
	ErrInvalidMagic       = errors.New("colfile: invalid magic number")
	ErrUnsupportedVersion = errors.New("colfile: unsupported version")
	ErrChecksumMismatch   = errors.New("colfile: checksum mismatch")
	ErrCorrupt            = errors.New("colfile: corrupt file")
	ErrUnknownCompression = errors.New("colfile: unknown compression")
)

// Compression selects the block compression used for column data.
type Compression uint8

const (
	// CompressionNone stores column data raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression.
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses Zstandard.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Valid reports whether c is a known compression.
func (c Compression) Valid() bool { return c <= CompressionZSTD }

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// Header is the fixed-size file prefix.
type Header struct {
	Magic       uint32
	Version     uint32
	Compression Compression
	_           [3]byte // Padding
	Checksum    uint32  // CRC32C of the body
	BodyLength  uint64
}

// Encode serializes the header.
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	buf[8] = byte(h.Compression)
	// Padding [9:12]
	binary.LittleEndian.PutUint32(buf[12:], h.Checksum)
	binary.LittleEndian.PutUint64(buf[16:], h.BodyLength)
	return buf
}

// DecodeHeader parses and validates a header.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too small for a header", ErrCorrupt, len(buf))
	}
	h := &Header{}
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	if h.Magic != MagicNumber {
		return nil, ErrInvalidMagic
	}
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	h.Compression = Compression(buf[8])
	if !h.Compression.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, buf[8])
	}
	h.Checksum = binary.LittleEndian.Uint32(buf[12:])
	h.BodyLength = binary.LittleEndian.Uint64(buf[16:])
	return h, nil
}
