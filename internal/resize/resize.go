// Package resize downsamples rendered images to a maximum width.
package resize

import (
	"fmt"
	"math"

	"github.com/disintegration/imaging"
)

// Result reports what ToMaxWidth did.
type Result struct {
	Resized       bool
	Width, Height int
	NewWidth      int
	NewHeight     int
}

// Dimensions returns the size of a w×h image scaled down to maxWidth with its
// aspect ratio preserved. Images already within maxWidth keep their size.
func Dimensions(w, h, maxWidth int) (int, int) {
	if maxWidth <= 0 || w <= maxWidth {
		return w, h
	}

	nh := int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
	if nh < 1 {
		nh = 1
	}

	return maxWidth, nh
}

// ToMaxWidth overwrites the image at path with a Lanczos-resampled copy when
// it is wider than maxWidth. No backup is kept.
func ToMaxWidth(path string, maxWidth int) (Result, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening image %s: %w", path, err)
	}

	b := img.Bounds()
	res := Result{Width: b.Dx(), Height: b.Dy()}
	res.NewWidth, res.NewHeight = Dimensions(res.Width, res.Height, maxWidth)

	if res.NewWidth == res.Width {
		return res, nil
	}

	dst := imaging.Resize(img, res.NewWidth, res.NewHeight, imaging.Lanczos)
	if err := imaging.Save(dst, path); err != nil {
		return res, fmt.Errorf("saving resized image %s: %w", path, err)
	}

	res.Resized = true

	return res, nil
}
