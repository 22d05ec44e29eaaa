package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NoiseImage returns an opaque RGB image with uniformly random channels.
func (r *RNG) NoiseImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r.mu.Lock()
	defer r.mu.Unlock()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(r.rand.Intn(256)),
				G: uint8(r.rand.Intn(256)),
				B: uint8(r.rand.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

// Prediction returns a complete set of mandatory fields with random values.
func (r *RNG) Prediction(i int) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	x1 := r.rand.Float64() * 100
	y1 := r.rand.Float64() * 100
	return map[string]any{
		"image_name": fmt.Sprintf("frame_%04d.png", i),
		"pred_class": []string{"car", "person", "bike"}[r.rand.Intn(3)],
		"confidence": r.rand.Float64(),
		"bbox_x1":    x1,
		"bbox_y1":    y1,
		"bbox_x2":    x1 + 1 + r.rand.Float64()*50,
		"bbox_y2":    y1 + 1 + r.rand.Float64()*50,
	}
}

// Uniform returns a grayscale image where every pixel equals v.
func Uniform(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// Checkerboard returns a black and white grayscale board with square cells.
func Checkerboard(w, h, cell int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if ((x/cell)+(y/cell))%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// EncodePNG encodes img as PNG.
func EncodePNG(tb testing.TB, img image.Image) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WritePNG writes img as PNG to dir/name and returns the path.
func WritePNG(tb testing.TB, dir, name string, img image.Image) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, EncodePNG(tb, img), 0o644); err != nil {
		tb.Fatalf("write png: %v", err)
	}
	return path
}
