package imagemetric

import (
	"errors"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lookout/testutil"
)

func TestCompute_NoImage(t *testing.T) {
	res, failures := Default().Evaluate(nil, nil, []ID{Contrast, Blur})

	require.Len(t, res, 2)
	assert.Nil(t, res[Contrast])
	assert.Nil(t, res[Blur])
	assert.Empty(t, failures, "no decode must be attempted")
}

func TestCompute_NoMetrics(t *testing.T) {
	res := Compute(FromPath("does-not-exist.png"), nil, nil)
	assert.Empty(t, res)
}

func TestCompute_DecodeFailureNullsEverything(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.png")

	res, failures := Default().Evaluate(FromPath(missing), nil, []ID{Contrast, Orientation})

	assert.Nil(t, res[Contrast])
	assert.Nil(t, res[Orientation])
	require.Len(t, failures, 2)
	assert.ErrorIs(t, failures[0].Err, ErrDecode)
}

func TestCompute_GarbageBytes(t *testing.T) {
	res := Compute(FromBytes([]byte("not an image")), nil, []ID{Contrast})
	assert.Nil(t, res[Contrast])
}

func TestCompute_Checkerboard(t *testing.T) {
	board := testutil.Checkerboard(4, 4, 1)

	inputs := map[string]*Input{
		"image": FromImage(board),
		"bytes": FromBytes(testutil.EncodePNG(t, board)),
		"path":  FromPath(testutil.WritePNG(t, t.TempDir(), "board.png", board)),
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			res := Compute(in, nil, []ID{Contrast, Blur, Orientation})

			require.NotNil(t, res[Contrast])
			require.NotNil(t, res[Blur])
			require.NotNil(t, res[Orientation])
			assert.InDelta(t, 127.5, *res[Contrast], 1e-9)
			assert.InDelta(t, 1020.0*1020.0, *res[Blur], 1e-6)
			assert.Equal(t, 0.5, *res[Orientation])
		})
	}
}

func TestCompute_UniformHasNoContrastOrEdges(t *testing.T) {
	res := Compute(FromImage(testutil.Uniform(5, 3, 200)), nil, []ID{Contrast, Blur})

	require.NotNil(t, res[Contrast])
	require.NotNil(t, res[Blur])
	assert.Equal(t, 0.0, *res[Contrast])
	assert.Equal(t, 0.0, *res[Blur])
}

func TestCompute_Orientation(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want float64
	}{
		{"portrait", 2, 4, 0.0},
		{"landscape", 4, 2, 1.0},
		{"square", 3, 3, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(FromImage(testutil.Uniform(tt.w, tt.h, 0)), nil, []ID{Orientation})
			require.NotNil(t, res[Orientation])
			assert.Equal(t, tt.want, *res[Orientation])
		})
	}
}

func TestCompute_RGBFrame(t *testing.T) {
	rng := testutil.NewRNG(7)
	img := rng.NoiseImage(6, 4)

	frame, err := FromImage(img).Frame()
	require.NoError(t, err)
	assert.Equal(t, []int{4, 6, 3}, frame.Shape())

	res := Compute(FromImage(img), nil, []ID{Contrast, Blur})
	require.NotNil(t, res[Contrast])
	require.NotNil(t, res[Blur])
	assert.Greater(t, *res[Contrast], 0.0)
}

func TestFrame_Channels(t *testing.T) {
	opaqueNRGBA := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	translucentRGBA := image.NewRGBA(image.Rect(0, 0, 2, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			opaqueNRGBA.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
			translucentRGBA.SetRGBA(x, y, color.RGBA{R: 5, G: 5, B: 5, A: 128})
		}
	}

	tests := []struct {
		name string
		img  image.Image
		want []int
	}{
		{"gray", testutil.Uniform(2, 3, 9), []int{3, 2, 1}},
		{"opaque rgba", testutil.NewRNG(1).NoiseImage(2, 3), []int{3, 2, 3}},
		{"translucent rgba", translucentRGBA, []int{3, 2, 4}},
		{"opaque nrgba keeps alpha", opaqueNRGBA, []int{3, 2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := FromImage(tt.img).Frame()
			require.NoError(t, err)
			assert.Equal(t, tt.want, frame.Shape())
		})
	}

	frame, err := FromImage(opaqueNRGBA).Frame()
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30, 255}, frame.Samples()[:4])
}

func TestCompute_BBoxRatio(t *testing.T) {
	img := FromImage(testutil.Uniform(10, 10, 0))

	res := Compute(img, &BBox{X1: 0, Y1: 0, X2: 5, Y2: 4}, []ID{BBoxRatio})
	require.NotNil(t, res[BBoxRatio])
	assert.InDelta(t, 0.2, *res[BBoxRatio], 1e-12)

	res, failures := Default().Evaluate(img, &BBox{X1: 5, Y1: 0, X2: 5, Y2: 4}, []ID{BBoxRatio})
	assert.Nil(t, res[BBoxRatio])
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrInvalidBBox)

	res = Compute(img, nil, []ID{BBoxRatio})
	assert.Nil(t, res[BBoxRatio])
}

func TestCompute_MetricIndependence(t *testing.T) {
	// A flat array has samples but no height/width.
	in := FromPixels(Pixels{Shape: []int{4}, Data: []float64{1, 2, 3, 4}})

	res, failures := Default().Evaluate(in, nil, []ID{Contrast, Blur, Orientation})

	require.NotNil(t, res[Contrast])
	assert.InDelta(t, math.Sqrt(1.25), *res[Contrast], 1e-12)
	assert.Nil(t, res[Blur])
	assert.Nil(t, res[Orientation])
	require.Len(t, failures, 2)
	for _, f := range failures {
		assert.ErrorIs(t, f, ErrShape)
	}
}

func TestCompute_PanicIsContained(t *testing.T) {
	const boom ID = "boom"

	r, err := NewRegistry(append(Builtins(), Metric{
		ID:       boom,
		Requires: RequiresImage,
		Func: func(f *Frame, _ *BBox) (float64, error) {
			var idx []int
			return float64(idx[3]), nil
		},
	})...)
	require.NoError(t, err)

	res, failures := r.Evaluate(FromImage(testutil.Uniform(2, 2, 1)), nil, []ID{boom, Contrast})

	assert.Nil(t, res[boom])
	require.NotNil(t, res[Contrast])
	require.Len(t, failures, 1)
	assert.Equal(t, boom, failures[0].ID)
}

func TestCompute_NonFiniteAndErrors(t *testing.T) {
	errBad := errors.New("bad")
	r, err := NewRegistry(
		Metric{ID: "nan", Func: func(*Frame, *BBox) (float64, error) { return math.NaN(), nil }},
		Metric{ID: "err", Func: func(*Frame, *BBox) (float64, error) { return 0, errBad }},
	)
	require.NoError(t, err)

	res, failures := r.Evaluate(FromImage(testutil.Uniform(1, 1, 0)), nil, []ID{"nan", "err", "unknown"})

	assert.Nil(t, res["nan"])
	assert.Nil(t, res["err"])
	assert.Nil(t, res["unknown"])
	require.Len(t, failures, 3)
	assert.ErrorIs(t, failures[0], ErrNonFinite)
	assert.ErrorIs(t, failures[1], errBad)
	assert.ErrorIs(t, failures[2], ErrUnknownMetric)
}

func TestRegister_Duplicate(t *testing.T) {
	r, err := NewRegistry(Builtins()...)
	require.NoError(t, err)

	err = r.Register(Metric{ID: Contrast, Func: contrast})
	assert.ErrorIs(t, err, ErrDuplicateMetric)
	assert.Equal(t, []ID{Contrast, Blur, Orientation, BBoxRatio}, r.IDs())
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs([]string{" Contrast", "blur", "", "BBOX_RATIO"})
	require.NoError(t, err)
	assert.Equal(t, []ID{Contrast, Blur, BBoxRatio}, ids)

	_, err = ParseID("brightness")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestPixels_Shape(t *testing.T) {
	tests := []struct {
		name    string
		pixels  Pixels
		want    []int
		wantErr bool
	}{
		{"2d becomes single channel", Pixels{Shape: []int{2, 3}, Data: make([]float64, 6)}, []int{2, 3, 1}, false},
		{"3d", Pixels{Shape: []int{2, 2, 3}, Data: make([]float64, 12)}, []int{2, 2, 3}, false},
		{"size mismatch", Pixels{Shape: []int{2, 2}, Data: make([]float64, 3)}, nil, true},
		{"zero dim", Pixels{Shape: []int{0, 2}}, nil, true},
		{"empty", Pixels{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FromPixels(tt.pixels).Frame()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrShape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Shape())
		})
	}
}

func TestReflect101(t *testing.T) {
	assert.Equal(t, 1, reflect101(-1, 5))
	assert.Equal(t, 3, reflect101(5, 5))
	assert.Equal(t, 0, reflect101(-1, 1))
	assert.Equal(t, 2, reflect101(2, 5))
}

func TestRequirementString(t *testing.T) {
	assert.Equal(t, "image+bbox", (RequiresImage | RequiresBBox).String())
	assert.Equal(t, "none", Requirement(0).String())
}
