// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package vectorize

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Load opens an image file, honoring EXIF orientation.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputImage, path, err)
	}
	return img, nil
}

// Grayscale converts img to 8-bit luminance with its origin at (0, 0).
func Grayscale(img image.Image) *image.Gray {
	src := imaging.Grayscale(img)
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = row[4*x]
		}
	}
	return out
}

// Binarize maps every pixel brighter than threshold·255 to white and the
// rest to black. threshold is clamped to [0, 1].
func Binarize(gray *image.Gray, threshold float64) *image.Gray {
	cut := uint8(math.Max(0, math.Min(1, threshold)) * 255)
	out := image.NewGray(gray.Bounds())
	for i, v := range gray.Pix {
		if v > cut {
			out.Pix[i] = 255
		}
	}
	return out
}

// CropRect interprets bbox against bounds. A box whose last two values fit
// inside the image and exceed the first two is read as [x0, y0, x1, y1];
// otherwise it is read as [x, y, w, h]. The result is clipped to bounds.
// ok is false when bbox is malformed or the clipped area is empty.
func CropRect(bounds image.Rectangle, bbox []int) (r image.Rectangle, ok bool) {
	if len(bbox) != 4 {
		return image.Rectangle{}, false
	}
	x0, y0, a, b := bbox[0], bbox[1], bbox[2], bbox[3]
	w, h := a, b
	if a > 0 && b > 0 && a <= bounds.Dx() && b <= bounds.Dy() && a > x0 && b > y0 {
		w, h = a-x0, b-y0
	}
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	r = image.Rect(x0, y0, x0+w, y0+h).Intersect(bounds)
	return r, !r.Empty()
}

// Crop returns the part of img inside r with its origin at (0, 0).
func Crop(img image.Image, r image.Rectangle) image.Image {
	return imaging.Crop(img, r)
}
