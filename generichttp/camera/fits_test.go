package camera

import (
	"bytes"
	"fmt"
	"image"
	"testing"

	"github.com/astrogo/fitsio"
)

func TestWriteFitsChecks(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFits(&buf, nil, nil); err == nil {
		t.Error("expected an error with no images")
	}
	gray8 := image.NewGray(image.Rect(0, 0, 2, 2))
	if err := WriteFits(&buf, nil, []image.Image{gray8}); err == nil {
		t.Error("expected an error for an 8-bit image")
	}
	mixed := []image.Image{ramp(2, 2), ramp(3, 2)}
	if err := WriteFits(&buf, nil, mixed); err == nil {
		t.Error("expected an error for images of different sizes")
	}
}

func TestWriteFitsCube(t *testing.T) {
	imgs := []*image.Gray16{ramp(4, 2), ramp(4, 2)}
	var buf bytes.Buffer
	cards := []fitsio.Card{{Name: "HDRVER", Value: "TEST-1"}}
	if err := WriteFits(&buf, cards, []image.Image{imgs[0], imgs[1]}); err != nil {
		t.Fatal(err)
	}
	f, err := fitsio.Open(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	hdr := f.HDU(0).Header()
	axes := hdr.Axes()
	if len(axes) != 3 || axes[0] != 4 || axes[1] != 2 || axes[2] != 2 {
		t.Errorf("expected a 4x2x2 cube, got %v", axes)
	}
	if c := hdr.Get("HDRVER"); c == nil || c.Value != "TEST-1" {
		t.Errorf("expected the caller's cards to be kept, got %+v", c)
	}
	c := hdr.Get("DATACRC")
	if c == nil {
		t.Fatal("expected a DATACRC card")
	}
	if fmt.Sprint(c.Value) != fmt.Sprint(pixelCRC(imgs)) {
		t.Errorf("expected DATACRC %d, got %v", pixelCRC(imgs), c.Value)
	}
}

func TestPixelCRCDependsOnData(t *testing.T) {
	a := ramp(4, 4)
	b := ramp(4, 4)
	if pixelCRC([]*image.Gray16{a}) != pixelCRC([]*image.Gray16{b}) {
		t.Fatal("expected equal images to have equal CRCs")
	}
	b.Pix[7]++
	if pixelCRC([]*image.Gray16{a}) == pixelCRC([]*image.Gray16{b}) {
		t.Error("expected a changed pixel to change the CRC")
	}
}
