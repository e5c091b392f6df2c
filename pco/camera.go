/*Package pco drives PCO scientific cameras through the SC2 SDK.

A Camera is opened against an sdk.SDK, which is either the native vendor
library or sdk.Mock.  Open fetches a snapshot of the camera's capabilities
which the property table and the acquisition sequence consult; the snapshot is
never refreshed except by Reopen.

Camera does no locking of its own.  Callers that share a Camera between
goroutines must serialize access; generichttp/camera does this per instance.
*/
package pco

import (
	"log"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"

	"github.com/nasa-jpl/pcolab/camera"
	"github.com/nasa-jpl/pcolab/pco/sdk"
	"github.com/nasa-jpl/pcolab/util"
)

// Name is the name reported by the name property
const Name = "pco for windows"

var (
	// GrabTimeout is how long a live Grab waits for the camera to fill a buffer
	GrabTimeout = time.Second

	// ReopenInterval is the first delay between attempts to reopen a rebooted camera
	ReopenInterval = 250 * time.Millisecond
)

// Camera is a PCO camera.  Its zero value is not usable; call Open.
type Camera struct {
	sdk    sdk.SDK
	index  int
	handle sdk.Handle

	opened   bool
	closed   bool
	rebooted bool
	openErr  error

	// capability snapshot
	general    sdk.General
	typ        sdk.CameraType
	sensor     sdk.Sensor
	desc       sdk.Description
	storage    sdk.Storage
	segment    uint16
	pixelRates []uint32

	// staged configuration, applied by StartRecording
	aoi      camera.AOI
	binning  camera.Binning
	trigger  camera.TriggerSource
	extended bool

	// acquisition state
	recording     bool
	armed         bool // recording state set on the camera
	readout       bool
	cursor        uint32
	recorded      uint32
	width, height uint16
	leases        [2]*lease
	session       uuid.UUID
}

// Open opens camera number index and reads its capabilities.  If that fails
// the returned Camera is still non-nil: it reports the same *ConstructionError
// from every operation and must still be closed.
func Open(s sdk.SDK, index int) (*Camera, error) {
	c := &Camera{sdk: s, index: index}
	if err := c.open(); err != nil {
		c.openErr = newConstructionError(err)
		return c, c.openErr
	}
	return c, nil
}

func (c *Camera) open() error {
	h, err := c.sdk.OpenCamera(c.index)
	if err != nil {
		return c.check("OpenCamera", err)
	}
	c.handle = h
	c.opened = true

	if c.general, err = c.sdk.GetGeneral(h); err != nil {
		return c.check("GetGeneral", err)
	}
	if c.typ, err = c.sdk.GetCameraType(h); err != nil {
		return c.check("GetCameraType", err)
	}
	if c.sensor, err = c.sdk.GetSensorStruct(h); err != nil {
		return c.check("GetSensorStruct", err)
	}
	if c.desc, err = c.sdk.GetCameraDescription(h); err != nil {
		return c.check("GetCameraDescription", err)
	}
	if c.storage, err = c.sdk.GetStorageStruct(h); err != nil {
		return c.check("GetStorageStruct", err)
	}
	roi, err := c.sdk.GetROI(h)
	if err != nil {
		return c.check("GetROI", err)
	}
	bh, bv, err := c.sdk.GetBinning(h)
	if err != nil {
		return c.check("GetBinning", err)
	}
	trig, err := c.sdk.GetTriggerMode(h)
	if err != nil {
		return c.check("GetTriggerMode", err)
	}

	// cameras without camRAM have no segments
	c.segment = 1
	if seg, err := c.sdk.GetActiveRAMSegment(h); err == nil {
		c.segment = seg
	}

	c.aoi = camera.AOI{
		X:      int(roi[0]) - 1,
		Y:      int(roi[1]) - 1,
		Width:  int(roi[2]) - int(roi[0]) + 1,
		Height: int(roi[3]) - int(roi[1]) + 1,
	}
	if bh == 0 || bv == 0 {
		bh, bv = 1, 1
	}
	c.binning = camera.Binning{H: int(bh), V: int(bv)}
	c.trigger = camera.TriggerSource(trig)
	c.extended = c.sensor.SensorFormat == sdk.SensorFormatExtended
	c.pixelRates = c.pixelRates[:0]
	for _, r := range c.desc.PixelRateDESC {
		if r != 0 {
			c.pixelRates = append(c.pixelRates, r)
		}
	}

	if c.typ.CamType == sdk.CameraTypePCODimaxStd {
		return c.setupDimaxTransfer()
	}
	return nil
}

// setupDimaxTransfer switches the CameraLink interface of a pco.dimax to the
// 2x12 data format, which it needs to stream full frames.  If the camera
// refuses, the previous parameters are restored.
func (c *Camera) setupDimaxTransfer() error {
	prev, err := c.sdk.GetTransferParameter(c.handle)
	if err != nil {
		return c.check("GetTransferParameter", err)
	}
	next := prev
	next.BaudRate = 115200
	next.DataFormat = sdk.CLDataFormat2x12
	err = c.sdk.SetTransferParameter(c.handle, next)
	if err == nil {
		return nil
	}
	log.Printf("pco: dimax transfer parameters rejected, reverting: %v", c.check("SetTransferParameter", err))
	if err = c.sdk.SetTransferParameter(c.handle, prev); err != nil {
		return c.check("SetTransferParameter", err)
	}
	return nil
}

// usable returns the reason the camera cannot be used, if any
func (c *Camera) usable() error {
	switch {
	case c.openErr != nil:
		return c.openErr
	case c.closed:
		return ErrClosed
	case c.rebooted:
		return ErrRebooted
	}
	return nil
}

// Close stops any acquisition, releases the image buffers and closes the
// camera.  Failures are logged and merged; Close is safe to call again.
func (c *Camera) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	if c.recording || c.armed {
		errs = append(errs, c.cancel())
		c.recording = false
	}
	c.readout = false
	c.releaseLeases()
	if c.opened {
		errs = append(errs, c.check("CloseCamera", c.sdk.CloseCamera(c.handle)))
		c.opened = false
	}
	err := util.MergeErrors(errs)
	if err != nil {
		log.Printf("pco: error closing camera %d: %v", c.index, err)
	}
	return err
}

// Reopen opens a camera which rebooted after a setup change, retrying with
// exponential backoff for up to maxWait.  On success the capability snapshot
// is refreshed and the camera is usable again.
func (c *Camera) Reopen(maxWait time.Duration) error {
	if c.closed {
		return ErrClosed
	}
	op := func() error {
		if c.opened {
			c.sdk.CloseCamera(c.handle)
			c.opened = false
		}
		return c.open()
	}
	bo := &backoff.ExponentialBackOff{
		InitialInterval:     ReopenInterval,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         5 * time.Second,
		MaxElapsedTime:      maxWait,
		Clock:               backoff.SystemClock,
	}
	if err := backoff.Retry(op, bo); err != nil {
		return err
	}
	c.openErr = nil
	c.rebooted = false
	c.recording, c.armed = false, false
	c.readout = false
	return nil
}

// Rebooted is true after a setup change rebooted the camera, until Reopen succeeds
func (c *Camera) Rebooted() bool {
	return c.rebooted
}

// Type returns the camera type code, e.g. sdk.CameraTypePCOEdge
func (c *Camera) Type() uint16 {
	return c.typ.CamType
}

// isEdge is true for the pco.edge family, which has no camera RAM
// and is set up differently for recording
func (c *Camera) isEdge() bool {
	return c.typ.CamType&sdk.FamilyMask == sdk.CameraTypePCOEdge
}

// sensorSize is the unbinned sensor size in the current format
func (c *Camera) sensorSize() (int, int) {
	w, h := int(c.desc.MaxHorzResStdDESC), int(c.desc.MaxVertResStdDESC)
	if c.extended {
		w, h = c.extendedSize()
	}
	return w, h
}

// extendedSize is never smaller than the standard size
func (c *Camera) extendedSize() (int, int) {
	w, h := int(c.desc.MaxHorzResExtDESC), int(c.desc.MaxVertResExtDESC)
	if sw := int(c.desc.MaxHorzResStdDESC); sw > w {
		w = sw
	}
	if sh := int(c.desc.MaxVertResStdDESC); sh > h {
		h = sh
	}
	return w, h
}
