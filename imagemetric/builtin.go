package imagemetric

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ITU-R BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Builtins returns the built-in metrics in their canonical order.
func Builtins() []Metric {
	return []Metric{
		{ID: Contrast, Requires: RequiresImage, Func: contrast},
		{ID: Blur, Requires: RequiresImage, Func: blur},
		{ID: Orientation, Requires: RequiresImage, Func: orientation},
		{ID: BBoxRatio, Requires: RequiresImage | RequiresBBox, Func: bboxRatio},
	}
}

// contrast is the population standard deviation over every sample.
func contrast(f *Frame, _ *BBox) (float64, error) {
	return stat.PopStdDev(f.Samples(), nil), nil
}

// blur is the variance of the Laplacian of the grayscale frame. Low values
// indicate a blurry image.
func blur(f *Frame, _ *BBox) (float64, error) {
	h, w, c, err := f.HWC()
	if err != nil {
		return 0, err
	}
	gray, err := grayscale(f.Samples(), h, w, c)
	if err != nil {
		return 0, err
	}
	return stat.PopVariance(laplacian(gray, h, w), nil), nil
}

// orientation is 0 for portrait, 1 for landscape and 0.5 for square frames.
func orientation(f *Frame, _ *BBox) (float64, error) {
	shape := f.Shape()
	if len(shape) < 2 {
		return 0, fmt.Errorf("%w: want at least 2 dimensions, got %v", ErrShape, shape)
	}
	h, w := shape[0], shape[1]
	switch {
	case h > w:
		return 0.0, nil
	case w > h:
		return 1.0, nil
	default:
		return 0.5, nil
	}
}

// bboxRatio is the bounding-box area relative to the image area.
func bboxRatio(f *Frame, b *BBox) (float64, error) {
	shape := f.Shape()
	if len(shape) < 2 {
		return 0, fmt.Errorf("%w: want at least 2 dimensions, got %v", ErrShape, shape)
	}
	if !b.Valid() {
		return 0, ErrInvalidBBox
	}
	return b.Area() / float64(shape[0]*shape[1]), nil
}

func grayscale(data []float64, h, w, c int) ([]float64, error) {
	n := h * w
	switch c {
	case 1:
		return data[:n], nil
	case 3, 4:
		gray := make([]float64, n)
		for i := range gray {
			px := data[i*c:]
			gray[i] = lumaR*px[0] + lumaG*px[1] + lumaB*px[2]
		}
		return gray, nil
	default:
		return nil, fmt.Errorf("%w: %d channels", ErrShape, c)
	}
}

// laplacian applies the 4-neighbour kernel [0 1 0; 1 -4 1; 0 1 0] with
// reflect-101 borders (gfedcb|abcdefgh|gfedcba).
func laplacian(gray []float64, h, w int) []float64 {
	out := make([]float64, h*w)
	for y := 0; y < h; y++ {
		up := reflect101(y-1, h) * w
		down := reflect101(y+1, h) * w
		row := y * w
		for x := 0; x < w; x++ {
			left := reflect101(x-1, w)
			right := reflect101(x+1, w)
			out[row+x] = gray[up+x] + gray[down+x] + gray[row+left] + gray[row+right] - 4*gray[row+x]
		}
	}
	return out
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}
