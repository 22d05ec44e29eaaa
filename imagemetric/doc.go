// Package imagemetric computes optional image-quality metrics for a logged
// prediction.
//
// Metrics are looked up by [ID] in a [Registry]. Each [Metric] declares what it
// needs ([RequiresImage], [RequiresBBox]) and a leaf function that turns a
// decoded [Frame] into a float. Computation never fails as a whole: a missing
// image, an undecodable file, an unknown id or a failing formula all resolve to
// a nil entry in the [Result] for the affected id only.
//
//	in := imagemetric.FromPath("frame_0001.png")
//	res := imagemetric.Compute(in, &imagemetric.BBox{X1: 10, Y1: 10, X2: 50, Y2: 80},
//		[]imagemetric.ID{imagemetric.Contrast, imagemetric.Blur})
//	if v := res[imagemetric.Blur]; v != nil {
//		fmt.Println("blur:", *v)
//	}
//
// Supported encodings are PNG, JPEG and GIF from the standard library and BMP,
// TIFF and WebP from golang.org/x/image.
package imagemetric
