package imagemetric

import (
	"fmt"
	"image"
	"image/color"
)

// Frame is decoded pixel data in row-major order.
//
// A frame decoded from an image always has shape [H, W, C] with C in {1, 3, 4}
// and samples on the 0..255 scale. Frames built from [Pixels] keep the caller's
// shape, so formulas must check dimensions themselves.
type Frame struct {
	shape []int
	data  []float64
}

// Shape returns the frame dimensions.
func (f *Frame) Shape() []int { return f.shape }

// Samples returns every sample of the frame.
func (f *Frame) Samples() []float64 { return f.data }

// HWC returns height, width and channel count for a three-dimensional frame.
func (f *Frame) HWC() (h, w, c int, err error) {
	if len(f.shape) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: want 3 dimensions, got %v", ErrShape, f.shape)
	}
	return f.shape[0], f.shape[1], f.shape[2], nil
}

// Pixels is an in-memory pixel array with an explicit shape.
//
// A two-dimensional shape [H, W] is treated as a single-channel image.
type Pixels struct {
	Shape []int
	Data  []float64
}

func newFrameFromPixels(p Pixels) (*Frame, error) {
	if len(p.Shape) == 0 {
		return nil, fmt.Errorf("%w: empty shape", ErrShape)
	}

	n := 1
	for _, d := range p.Shape {
		if d <= 0 {
			return nil, fmt.Errorf("%w: non-positive dimension in %v", ErrShape, p.Shape)
		}
		n *= d
	}
	if n != len(p.Data) {
		return nil, fmt.Errorf("%w: shape %v needs %d samples, got %d", ErrShape, p.Shape, n, len(p.Data))
	}

	shape := append([]int(nil), p.Shape...)
	if len(shape) == 2 {
		shape = append(shape, 1)
	}
	return &Frame{shape: shape, data: p.Data}, nil
}

func newFrameFromImage(img image.Image) (*Frame, error) {
	if img == nil {
		return nil, ErrNoImage
	}

	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrShape)
	}

	c := channelsOf(img)
	data := make([]float64, 0, h*w*c)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.At(x, y)
			if c == 1 {
				g := color.GrayModel.Convert(px).(color.Gray)
				data = append(data, float64(g.Y))
				continue
			}
			n := color.NRGBAModel.Convert(px).(color.NRGBA)
			data = append(data, float64(n.R), float64(n.G), float64(n.B))
			if c == 4 {
				data = append(data, float64(n.A))
			}
		}
	}

	return &Frame{shape: []int{h, w, c}, data: data}, nil
}

// channelsOf mirrors the decoded pixel layout: images stored with an alpha
// channel (PNG RGBA decodes to NRGBA) keep four channels even when opaque.
func channelsOf(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.NRGBAModel, color.NRGBA64Model:
		return 4
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		return 4
	}
	return 3
}
