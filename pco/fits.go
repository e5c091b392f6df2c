package pco

import (
	"fmt"
	"time"

	"github.com/astrogo/fitsio"

	"github.com/nasa-jpl/pcolab/util"
)

// HeaderVersion tags the layout of the cards made by CollectHeaderMetadata
const HeaderVersion = "PCO-1"

// CollectHeaderMetadata satisfies generichttp/camera and makes a stack of FITS cards
func (c *Camera) CollectHeaderMetadata() []fitsio.Card {
	// plow through errors, the header is best-effort; the last one is recorded
	var metaerr string
	note := func(err error) {
		if err != nil {
			metaerr = err.Error()
		}
	}
	texp, err := c.GetExposureTime()
	note(err)
	fps, err := c.GetFrameRate()
	note(err)
	temp, err := c.GetTemperature()
	note(err)
	trig, err := c.GetTriggerSource()
	note(err)
	rate, err := c.GetPixelRate()
	note(err)
	w, h, err := c.FrameSize()
	note(err)
	rates := make([]int, len(c.pixelRates))
	for i, r := range c.pixelRates {
		rates[i] = int(r)
	}

	return []fitsio.Card{
		// header to the header
		{Name: "HDRVER", Value: HeaderVersion, Comment: "header version"},
		{Name: "DRIVER", Value: Name, Comment: "camera driver"},
		{Name: "METAERR", Value: metaerr, Comment: "error encountered gathering metadata"},
		{Name: "DATE", Value: time.Now().UTC().Format("2006-01-02T15:04:05"), Comment: "UTC time the header was made"},
		{Name: "SESSION", Value: c.Session(), Comment: "recording id"},

		// camera
		{Name: "CAMTYPE", Value: fmt.Sprintf("0x%04X", c.typ.CamType), Comment: "PCO camera type"},
		{Name: "CAMSN", Value: int(c.typ.SerialNumber), Comment: "camera serial number"},
		{Name: "CAMVER", Value: c.Version(), Comment: "serial, hardware, firmware"},
		{Name: "BITDEPTH", Value: c.BitDepth(), Comment: "significant bits per pixel"},

		// exposure
		{Name: "EXPTIME", Value: texp.Seconds(), Comment: "exposure time, seconds"},
		{Name: "FPS", Value: fps, Comment: "frame rate, Hz"},
		{Name: "TRIGGER", Value: trig.String(), Comment: "trigger source"},
		{Name: "PIXRATE", Value: rate, Comment: "pixel rate, Hz"},
		{Name: "PIXRATES", Value: util.IntSliceToCSV(rates), Comment: "supported pixel rates, Hz"},
		{Name: "TEMP", Value: temp, Comment: "sensor temperature, C"},

		// geometry
		{Name: "AOIX", Value: c.aoi.X, Comment: "AOI left edge, 0-based"},
		{Name: "AOIY", Value: c.aoi.Y, Comment: "AOI top edge, 0-based"},
		{Name: "AOIW", Value: w, Comment: "frame width"},
		{Name: "AOIH", Value: h, Comment: "frame height"},
		{Name: "AOIB", Value: c.binning.HxV(), Comment: "binning, HxV"},
		{Name: "EXTENDED", Value: c.extended, Comment: "extended sensor format"},
	}
}
