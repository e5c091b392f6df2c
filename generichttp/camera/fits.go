package camera

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/astrogo/fitsio"
	"github.com/snksoft/crc"
)

var crcTable = crc.NewTable(crc.CRC32)

// pixelCRC is the CRC-32 of the unsigned, big endian pixel data of imgs, in order
func pixelCRC(imgs []*image.Gray16) uint32 {
	sum := crcTable.InitCrc()
	for _, im := range imgs {
		sum = crcTable.UpdateCrc(sum, im.Pix)
	}
	return crcTable.CRC32(sum)
}

// WriteFits streams a fits file to w.  All imgs must be 16-bit grayscale of
// the same size; more than one makes a cube.  A DATACRC card carries the CRC-32
// of the unsigned pixel data so a reader can check the payload.
func WriteFits(w io.Writer, metadata []fitsio.Card, imgs []image.Image) error {
	if len(imgs) == 0 {
		return fmt.Errorf("no images to write")
	}
	grays := make([]*image.Gray16, len(imgs))
	size := imgs[0].Bounds().Size()
	for i, img := range imgs {
		g, ok := img.(*image.Gray16)
		if !ok {
			return fmt.Errorf("image %d is %T, not 16-bit grayscale", i, img)
		}
		if g.Bounds().Size() != size {
			return fmt.Errorf("image %d is %v, the first is %v", i, g.Bounds().Size(), size)
		}
		grays[i] = g
	}

	metadata = append(metadata,
		fitsio.Card{Name: "BZERO", Value: 32768},
		fitsio.Card{Name: "BSCALE", Value: 1.0},
		fitsio.Card{Name: "DATACRC", Value: int(pixelCRC(grays)), Comment: "CRC-32 of the unsigned pixel data"})
	nframes := len(grays)
	b := grays[0].Bounds()
	width, height := b.Dx(), b.Dy()
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	dims := []int{width, height}
	if nframes > 1 {
		dims = append(dims, nframes)
	}
	im := fitsio.NewImage(16, dims)
	defer im.Close()
	err = im.Header().Append(metadata...)
	if err != nil {
		return err
	}

	ints := make([]int16, width*height*nframes)
	offset := 0
	for _, g := range grays {
		l := width * height
		for idx := 0; idx < l; idx++ {
			ints[offset+idx] = int16(int32(binary.BigEndian.Uint16(g.Pix[2*idx:])) - 32768)
		}
		offset += l
	}
	err = im.Write(ints)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
