// this file contains a few small image processing utilities
package camera

import (
	"encoding/binary"
	"fmt"
	"image"
)

// frameToGray16 converts a little-endian 16-bit frame, as the drivers deliver
// it, into an image
func frameToGray16(buf []byte, width, height int) *image.Gray16 {
	im := image.NewGray16(image.Rect(0, 0, width, height))
	n := width * height
	for i := 0; i < n; i++ {
		// Gray16 is big endian
		im.Pix[2*i] = buf[2*i+1]
		im.Pix[2*i+1] = buf[2*i]
	}
	return im
}

// toGray8 keeps the most significant byte of each pixel
func toGray8(im *image.Gray16) *image.Gray {
	b := im.Bounds()
	out := image.NewGray(b)
	for i := 0; i < len(out.Pix); i++ {
		out.Pix[i] = im.Pix[2*i]
	}
	return out
}

// Rotate rotates an image clockwise by 0, 90, 180 or 270 degrees
func Rotate(im *image.Gray16, degrees int) (*image.Gray16, error) {
	b := im.Bounds()
	w, h := b.Dx(), b.Dy()
	var out *image.Gray16
	var dst func(x, y int) (int, int)
	switch degrees {
	case 0:
		return im, nil
	case 90:
		out = image.NewGray16(image.Rect(0, 0, h, w))
		dst = func(x, y int) (int, int) { return h - 1 - y, x }
	case 180:
		out = image.NewGray16(image.Rect(0, 0, w, h))
		dst = func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }
	case 270:
		out = image.NewGray16(image.Rect(0, 0, h, w))
		dst = func(x, y int) (int, int) { return y, w - 1 - x }
	default:
		return nil, fmt.Errorf("rotation must be 0, 90, 180 or 270 degrees, got %d", degrees)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := binary.BigEndian.Uint16(im.Pix[im.PixOffset(x+b.Min.X, y+b.Min.Y):])
			dx, dy := dst(x, y)
			binary.BigEndian.PutUint16(out.Pix[out.PixOffset(dx, dy):], px)
		}
	}
	return out, nil
}
