package colfile

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ZSTD encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

const blockHeaderSize = 8

// appendBlock appends data as a block to dst. Data that does not shrink below
// 90% of its size is stored raw.
func appendBlock(dst, data []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(data)))
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		dst = binary.LittleEndian.AppendUint32(dst, 0) // 0 = uncompressed
		return append(dst, data...), nil
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(compressed)))
	return append(dst, compressed...), nil
}

// readBlock decodes the block at the start of buf and returns its payload and
// the number of bytes consumed.
func readBlock(buf []byte, c Compression) ([]byte, int, error) {
	if len(buf) < blockHeaderSize {
		return nil, 0, fmt.Errorf("%w: block too small for header", ErrCorrupt)
	}

	uncompressedSize := binary.LittleEndian.Uint32(buf[0:])
	compressedSize := binary.LittleEndian.Uint32(buf[4:])

	if compressedSize == 0 {
		end := uint64(blockHeaderSize) + uint64(uncompressedSize)
		if uint64(len(buf)) < end {
			return nil, 0, fmt.Errorf("%w: block data too small", ErrCorrupt)
		}
		return buf[blockHeaderSize:end], int(end), nil
	}

	end := uint64(blockHeaderSize) + uint64(compressedSize)
	if uint64(len(buf)) < end {
		return nil, 0, fmt.Errorf("%w: compressed block data too small", ErrCorrupt)
	}
	compressed := buf[blockHeaderSize:end]
	result := make([]byte, uncompressedSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressed, result)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
		}
		if uint32(n) != uncompressedSize {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressed, result[:0])
		putZstdDecoder(dec)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		result = decoded
	default:
		return nil, 0, fmt.Errorf("%w: compressed block in a %s file", ErrCorrupt, c)
	}
	return result, int(end), nil
}
