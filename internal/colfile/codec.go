package colfile

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"github.com/hupe1980/lookout/schema"
	"github.com/hupe1980/lookout/table"
)

// Meta identifies the log a file belongs to. It is carried unchanged across
// rewrites of the same log.
type Meta struct {
	StoreID   uuid.UUID
	CreatedAt time.Time
	Model     string
	Writer    string
}

// File is a decoded log file.
type File struct {
	Header Header
	Meta   Meta
	Table  *table.Table
}

// Encode serializes t with meta using compression c.
func Encode(t *table.Table, meta Meta, c Compression) ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}

	p := newPayloadBuffer(make([]byte, 0, 256))
	p.writeRaw(meta.StoreID[:])
	p.writeUint64(uint64(meta.CreatedAt.UnixNano()))
	p.writeString(meta.Model)
	p.writeString(meta.Writer)

	rows, err := toWire[uint64](t.NumRows())
	if err != nil {
		return nil, err
	}
	if rows > math.MaxUint32 {
		return nil, fmt.Errorf("colfile: %d rows exceed the row limit", rows)
	}
	p.writeUint64(rows)

	s := t.Schema()
	numFields, err := toWire[uint32](s.Len())
	if err != nil {
		return nil, err
	}
	p.writeUint32(numFields)
	for _, f := range s.Fields() {
		p.writeString(f.Name)
		p.writeUint8(uint8(f.Type))
	}

	for i := 0; i < t.NumCols(); i++ {
		col := t.Column(i)

		nulls, err := col.Nulls().ToBytes()
		if err != nil {
			return nil, fmt.Errorf("colfile: encode nulls of %q: %w", s.FieldAt(i).Name, err)
		}
		p.writeBytes(nulls)

		raw, err := encodeValues(col)
		if err != nil {
			return nil, fmt.Errorf("colfile: encode %q: %w", s.FieldAt(i).Name, err)
		}
		if uint64(len(raw)) > math.MaxUint32 {
			return nil, fmt.Errorf("colfile: column %q too large", s.FieldAt(i).Name)
		}
		if p.err == nil {
			if p.buf, err = appendBlock(p.buf, raw, c); err != nil {
				return nil, err
			}
		}
	}
	if p.err != nil {
		return nil, fmt.Errorf("colfile: encode: %w", p.err)
	}

	h := Header{
		Magic:       MagicNumber,
		Version:     Version,
		Compression: c,
		Checksum:    checksum(p.buf),
		BodyLength:  uint64(len(p.buf)),
	}
	return append(h.Encode(), p.buf...), nil
}

func encodeValues(col *table.Column) ([]byte, error) {
	switch col.Type() {
	case schema.FieldTypeFloat32:
		vals := col.Float32s()
		out := make([]byte, 0, 4*len(vals))
		for _, v := range vals {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
		return out, nil
	case schema.FieldTypeInt64:
		vals := col.Int64s()
		out := make([]byte, 0, 8*len(vals))
		for _, v := range vals {
			out = binary.LittleEndian.AppendUint64(out, uint64(v))
		}
		return out, nil
	case schema.FieldTypeBool:
		vals := col.Bools()
		out := make([]byte, len(vals))
		for i, v := range vals {
			if v {
				out[i] = 1
			}
		}
		return out, nil
	case schema.FieldTypeString:
		vals := col.Strings()
		total := 0
		for _, v := range vals {
			total += len(v)
		}
		if uint64(total) > math.MaxUint32 {
			return nil, fmt.Errorf("string data too large: %d bytes", total)
		}
		out := make([]byte, 0, 4*(len(vals)+1)+total)
		var off uint32
		out = binary.LittleEndian.AppendUint32(out, off)
		for _, v := range vals {
			off += uint32(len(v))
			out = binary.LittleEndian.AppendUint32(out, off)
		}
		for _, v := range vals {
			out = append(out, v...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported column type %s", col.Type())
	}
}

// Decode parses and verifies a complete file.
func Decode(data []byte) (*File, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	body := data[HeaderSize:]
	if uint64(len(body)) != h.BodyLength {
		return nil, fmt.Errorf("%w: body is %d bytes, header says %d", ErrCorrupt, len(body), h.BodyLength)
	}
	if checksum(body) != h.Checksum {
		return nil, ErrChecksumMismatch
	}

	p := newPayloadBuffer(body)
	f := &File{Header: *h}

	copy(f.Meta.StoreID[:], p.readRaw(len(f.Meta.StoreID)))
	f.Meta.CreatedAt = time.Unix(0, int64(p.readUint64())).UTC()
	f.Meta.Model = p.readString()
	f.Meta.Writer = p.readString()

	rows64 := p.readUint64()
	numFields := p.readUint32()
	if p.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, p.err)
	}
	if rows64 > math.MaxUint32 {
		return nil, fmt.Errorf("%w: row count %d", ErrCorrupt, rows64)
	}
	rows, err := fromWire(rows64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	fields := make([]schema.Field, 0, min(int(numFields), 1024))
	for i := uint32(0); i < numFields; i++ {
		name := p.readString()
		typ := schema.FieldType(p.readUint8())
		if p.err != nil {
			return nil, fmt.Errorf("%w: field %d: %w", ErrCorrupt, i, p.err)
		}
		fields = append(fields, schema.Field{Name: name, Type: typ})
	}
	s, err := schema.New(fields...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	cols := make([]*table.Column, s.Len())
	for i := range cols {
		f := s.FieldAt(i)

		nulls := roaring.New()
		if b := p.readBytes(); p.err == nil {
			if err := nulls.UnmarshalBinary(b); err != nil {
				return nil, fmt.Errorf("%w: nulls of %q: %w", ErrCorrupt, f.Name, err)
			}
		}
		if p.err != nil {
			return nil, fmt.Errorf("%w: column %q: %w", ErrCorrupt, f.Name, p.err)
		}
		if !nulls.IsEmpty() && int(nulls.Maximum()) >= rows {
			return nil, fmt.Errorf("%w: null bitmap of %q exceeds %d rows", ErrCorrupt, f.Name, rows)
		}

		raw, n, err := readBlock(p.rest(), h.Compression)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		p.skip(n)

		if cols[i], err = decodeValues(f.Type, raw, rows, nulls); err != nil {
			return nil, fmt.Errorf("%w: column %q: %w", ErrCorrupt, f.Name, err)
		}
	}
	if p.pos != len(p.buf) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(p.buf)-p.pos)
	}

	t, err := table.FromColumns(s, cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	f.Table = t
	return f, nil
}

func decodeValues(t schema.FieldType, raw []byte, rows int, nulls *roaring.Bitmap) (*table.Column, error) {
	switch t {
	case schema.FieldTypeFloat32:
		if len(raw) != 4*rows {
			return nil, fmt.Errorf("float32 data is %d bytes, want %d", len(raw), 4*rows)
		}
		vals := make([]float32, rows)
		for i := range vals {
			vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
		return table.NewFloat32Column(vals, nulls), nil
	case schema.FieldTypeInt64:
		if len(raw) != 8*rows {
			return nil, fmt.Errorf("int64 data is %d bytes, want %d", len(raw), 8*rows)
		}
		vals := make([]int64, rows)
		for i := range vals {
			vals[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
		}
		return table.NewInt64Column(vals, nulls), nil
	case schema.FieldTypeBool:
		if len(raw) != rows {
			return nil, fmt.Errorf("bool data is %d bytes, want %d", len(raw), rows)
		}
		vals := make([]bool, rows)
		for i, b := range raw {
			vals[i] = b != 0
		}
		return table.NewBoolColumn(vals, nulls), nil
	case schema.FieldTypeString:
		offsetsLen := 4 * (rows + 1)
		if len(raw) < offsetsLen {
			return nil, fmt.Errorf("string offsets truncated")
		}
		data := raw[offsetsLen:]
		vals := make([]string, rows)
		prev := binary.LittleEndian.Uint32(raw)
		if prev != 0 {
			return nil, fmt.Errorf("first string offset is %d", prev)
		}
		for i := range vals {
			next := binary.LittleEndian.Uint32(raw[4*(i+1):])
			if next < prev || uint64(next) > uint64(len(data)) {
				return nil, fmt.Errorf("string offset %d out of range", next)
			}
			vals[i] = string(data[prev:next])
			prev = next
		}
		if uint64(prev) != uint64(len(data)) {
			return nil, fmt.Errorf("string data has %d trailing bytes", uint64(len(data))-uint64(prev))
		}
		return table.NewStringColumn(vals, nulls), nil
	default:
		return nil, fmt.Errorf("unsupported column type %s", t)
	}
}
