// Package testutil provides testing utilities for lookout.
//
// This package is intended for use in tests only. It generates deterministic
// synthetic images and prediction records.
//
//	rng := testutil.NewRNG(seed)
//	img := rng.NoiseImage(64, 48)            // random RGB pixels
//	board := testutil.Checkerboard(8, 8, 1)  // sharp edges, high blur score
//	path := testutil.WritePNG(t, dir, "frame.png", img)
package testutil
