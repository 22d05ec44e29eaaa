// Package colfile implements the on-disk format of a prediction log.
//
// A file is a fixed 24-byte header followed by a CRC32C-protected body:
//
//	Header
//	  Magic       uint32  "LKC1"
//	  Version     uint32
//	  Compression uint8   0 none, 1 lz4, 2 zstd
//	  _           [3]byte
//	  Checksum    uint32  CRC32C of body
//	  BodyLength  uint64
//	Body
//	  StoreID     [16]byte
//	  CreatedAt   uint64  unix nanos
//	  Model       string
//	  Writer      string
//	  NumRows     uint64
//	  NumFields   uint32
//	  Fields      name string, type uint8
//	  Columns     nulls (uint32 length + roaring bitmap), data block
//
// Strings are prefixed with a uint16 length. Every column's data is stored as a
// block [uncompressed uint32][compressed uint32][bytes]; a compressed size of 0
// means the bytes are stored raw. Float32 values are written as their IEEE-754
// bits so a round trip is bit-exact.
//
// Files are always written whole. Appending a row or a column means decoding
// the file, changing the table and encoding a new file.
package colfile
