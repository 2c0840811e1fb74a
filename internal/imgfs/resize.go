package imgfs

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// decodeJPEGSize decodes buf just far enough to learn its pixel dimensions,
// used by insert (spec.md §4.E step 5).
func decodeJPEGSize(buf []byte) (w, h int, err error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return 0, 0, fmt.Errorf("decode jpeg config: %w: %w", ErrImgLib, err)
	}

	return cfg.Width, cfg.Height, nil
}

// resizeJPEG decodes orig, scales it so its longest side equals
// targetLongSide pixels (aspect ratio preserved — the "both" fit mode named
// in spec.md §4.D), and re-encodes as JPEG.
func resizeJPEG(orig []byte, targetLongSide int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(orig))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w: %w", ErrImgLib, err)
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	dstW, dstH := scaledDims(srcW, srcH, targetLongSide)

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpeg.DefaultQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w: %w", ErrImgLib, err)
	}

	return out.Bytes(), nil
}

// scaledDims computes output dimensions so the longer of (w, h) becomes
// exactly longSide, preserving aspect ratio. Always returns at least 1x1.
func scaledDims(w, h, longSide int) (dstW, dstH int) {
	if w <= 0 || h <= 0 || longSide <= 0 {
		return 1, 1
	}

	if w >= h {
		dstW = longSide
		dstH = (h*longSide + w/2) / w
	} else {
		dstH = longSide
		dstW = (w*longSide + h/2) / h
	}

	if dstW < 1 {
		dstW = 1
	}

	if dstH < 1 {
		dstH = 1
	}

	return dstW, dstH
}
