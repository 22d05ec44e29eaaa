package imagemetric

import (
	"bytes"
	"fmt"
	"image"
	"os"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type inputKind uint8

const (
	kindPath inputKind = iota + 1
	kindBytes
	kindPixels
	kindImage
)

// Input is an image source. Decoding is deferred until a metric needs pixels.
type Input struct {
	kind   inputKind
	path   string
	data   []byte
	pixels Pixels
	img    image.Image
}

// FromPath returns an input that decodes the file at path.
func FromPath(path string) *Input { return &Input{kind: kindPath, path: path} }

// FromBytes returns an input that decodes an encoded image held in memory.
func FromBytes(data []byte) *Input { return &Input{kind: kindBytes, data: data} }

// FromPixels returns an input backed by a raw pixel array.
func FromPixels(p Pixels) *Input { return &Input{kind: kindPixels, pixels: p} }

// FromImage returns an input backed by an already decoded image.
func FromImage(img image.Image) *Input { return &Input{kind: kindImage, img: img} }

// String describes the source for log output.
func (in *Input) String() string {
	if in == nil {
		return "<none>"
	}
	switch in.kind {
	case kindPath:
		return "path:" + in.path
	case kindBytes:
		return fmt.Sprintf("bytes:%d", len(in.data))
	case kindPixels:
		return fmt.Sprintf("pixels:%v", in.pixels.Shape)
	case kindImage:
		return "image"
	default:
		return "<invalid>"
	}
}

// Frame decodes the input into a frame.
func (in *Input) Frame() (*Frame, error) {
	if in == nil {
		return nil, ErrNoImage
	}

	switch in.kind {
	case kindPath:
		f, err := os.Open(in.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		defer func() { _ = f.Close() }()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, in.path, err)
		}
		return newFrameFromImage(img)
	case kindBytes:
		img, _, err := image.Decode(bytes.NewReader(in.data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return newFrameFromImage(img)
	case kindPixels:
		return newFrameFromPixels(in.pixels)
	case kindImage:
		return newFrameFromImage(in.img)
	default:
		return nil, ErrNoImage
	}
}
