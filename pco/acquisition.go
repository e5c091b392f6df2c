package pco

import (
	"log"

	"github.com/google/uuid"

	"github.com/nasa-jpl/pcolab/camera"
)

// StartRecording applies the staged binning and ROI, arms the camera,
// allocates the image buffers and starts recording.  An ROI which does not
// fit the binned sensor is rejected before the camera is touched.  The first
// failing vendor call aborts the sequence.
func (c *Camera) StartRecording() error {
	if err := c.usable(); err != nil {
		return err
	}
	if c.recording {
		return camera.ErrAlreadyRecording
	}
	if err := c.validateROI(); err != nil {
		return err
	}
	h := c.handle
	log.Printf("pco: start recording %dx%d @ (%d, %d) binning %s trigger %s extended %v",
		c.aoi.Width, c.aoi.Height, c.aoi.X, c.aoi.Y, c.binning.HxV(), c.trigger, c.extended)

	if !c.isEdge() {
		if err := c.sdk.ClearRAMSegment(h); err != nil {
			return c.check("ClearRAMSegment", err)
		}
	}

	if err := c.sdk.SetBinning(h, uint16(c.binning.H), uint16(c.binning.V)); err != nil {
		return c.check("SetBinning", err)
	}
	roi := [4]uint16{
		uint16(c.aoi.X + 1),
		uint16(c.aoi.Y + 1),
		uint16(c.aoi.X + c.aoi.Width),
		uint16(c.aoi.Y + c.aoi.Height),
	}
	if err := c.sdk.SetROI(h, roi); err != nil {
		return c.check("SetROI", err)
	}
	if err := c.sdk.ArmCamera(h); err != nil {
		return c.check("ArmCamera", err)
	}

	health, err := c.sdk.GetCameraHealthStatus(h)
	if err != nil {
		log.Printf("pco: reading health status: %v", c.check("GetCameraHealthStatus", err))
	} else if health.Warnings != 0 || health.Errors != 0 {
		log.Printf("pco: camera health warnings 0x%X errors 0x%X status 0x%X", health.Warnings, health.Errors, health.Status)
	}

	sizes, err := c.sdk.GetSizes(h)
	if err != nil {
		return c.check("GetSizes", err)
	}
	c.width, c.height = sizes.XAct, sizes.YAct

	// the second buffer is reserved, only the first is ever queued
	c.releaseLeases()
	size := uint32(c.width) * uint32(c.height) * 2
	for i := range c.leases {
		l, err := c.allocate(size)
		if err != nil {
			return err
		}
		c.leases[i] = l
	}
	if err := c.sdk.CamLinkSetImageParameters(h, c.width, c.height); err != nil {
		log.Printf("pco: %v", c.check("CamLinkSetImageParameters", err))
	}

	if c.isEdge() {
		if err := c.sdk.SetTransferParametersAuto(h); err != nil {
			return c.check("SetTransferParametersAuto", err)
		}
		if err := c.sdk.ArmCamera(h); err != nil {
			return c.check("ArmCamera", err)
		}
		if err := c.queue(); err != nil {
			return err
		}
		if err := c.sdk.SetRecordingState(h, 1); err != nil {
			return c.check("SetRecordingState", err)
		}
		c.armed = true
	} else {
		if err := c.sdk.SetRecordingState(h, 1); err != nil {
			return c.check("SetRecordingState", err)
		}
		c.armed = true
		if err := c.queue(); err != nil {
			if cerr := c.cancel(); cerr != nil {
				log.Printf("pco: stopping after a failed start: %v", cerr)
			}
			return err
		}
	}
	c.recording = true
	c.session = uuid.New()
	return nil
}

// validateROI checks the staged ROI against the sensor size divided by the binning
func (c *Camera) validateROI() error {
	w, h := c.sensorSize()
	bw, bh := w/c.binning.H, h/c.binning.V
	a := c.aoi
	if a.X < 0 || a.Y < 0 || a.Width < 1 || a.Height < 1 || a.Right() > bw || a.Bottom() > bh {
		return invalid("roi", "ROI of size %dx%d @ (%d, %d) is outside of (binned) sensor size %dx%d",
			a.Width, a.Height, a.X, a.Y, bw, bh)
	}
	return nil
}

// queue hands the first buffer to the SDK for the next frame
func (c *Camera) queue() error {
	l := c.leases[0]
	err := c.sdk.AddBufferEx(c.handle, 0, 0, l.number, c.width, c.height, c.desc.DynResDESC)
	return c.check("AddBufferEx", err)
}

// cancel aborts pending transfers and stops recording
func (c *Camera) cancel() error {
	if err := c.sdk.CancelImages(c.handle); err != nil {
		return c.check("CancelImages", err)
	}
	if err := c.sdk.SetRecordingState(c.handle, 0); err != nil {
		return c.check("SetRecordingState", err)
	}
	c.armed = false
	return nil
}

// StopRecording cancels pending transfers and stops recording.
// The buffers stay allocated so that camera RAM can still be read out.
func (c *Camera) StopRecording() error {
	if err := c.usable(); err != nil {
		return err
	}
	if !c.recording {
		return camera.ErrNotRecording
	}
	if err := c.cancel(); err != nil {
		return err
	}
	c.recording = false
	return nil
}

// IsRecording is true between StartRecording and StopRecording
func (c *Camera) IsRecording() bool {
	return c.recording
}

// IsReadout is true between StartReadout and StopReadout
func (c *Camera) IsReadout() bool {
	return c.readout
}

// StartReadout begins reading frames recorded in the active RAM segment,
// starting from the first.  Grab then delivers them in order.
func (c *Camera) StartReadout() error {
	if err := c.usable(); err != nil {
		return err
	}
	if c.leases[0] == nil {
		return ErrNoBuffer
	}
	valid, _, err := c.sdk.GetNumberOfImagesInSegment(c.handle, c.segment)
	if err != nil {
		return c.check("GetNumberOfImagesInSegment", err)
	}
	c.recorded = valid
	c.cursor = 1
	c.readout = true
	return nil
}

// StopReadout ends a readout.  The camera is not touched.
func (c *Camera) StopReadout() error {
	if err := c.usable(); err != nil {
		return err
	}
	c.readout = false
	return nil
}

// frameBytes is the size of one armed frame
func (c *Camera) frameBytes() int {
	return int(c.width) * int(c.height) * 2
}

// target checks that a frame can be delivered into buf
func (c *Camera) target(buf []byte) error {
	if err := c.usable(); err != nil {
		return err
	}
	if c.leases[0] == nil {
		return ErrNoBuffer
	}
	if n := c.frameBytes(); len(buf) < n {
		return invalid("buffer", "%d bytes is smaller than the %dx%d frame (%d bytes)", len(buf), c.width, c.height, n)
	}
	return nil
}

// Grab fills buf with the next frame.
//
// During a readout the frame at the cursor is fetched from camera RAM and the
// cursor advances; once every recorded frame has been delivered Grab returns
// camera.ErrEndOfStream.
//
// Otherwise Grab waits up to GrabTimeout for the queued buffer to fill.  On
// timeout it logs a warning and returns false with no error; the buffer is
// not queued again.  If the buffer cannot be queued again Grab returns true
// with the error; buf holds a valid frame but no further frame will arrive.
func (c *Camera) Grab(buf []byte) (bool, error) {
	if err := c.target(buf); err != nil {
		return false, err
	}
	l := c.leases[0]
	n := c.frameBytes()
	if c.readout {
		if c.cursor > c.recorded {
			return false, camera.ErrEndOfStream
		}
		err := c.sdk.GetImageEx(c.handle, c.segment, c.cursor, c.cursor, l.number, c.width, c.height, c.desc.DynResDESC)
		if err != nil {
			return false, c.check("GetImageEx", err)
		}
		copy(buf, l.data[:n])
		c.cursor++
		return true, nil
	}
	if !c.recording {
		return false, camera.ErrNotRecording
	}
	ok, err := c.sdk.WaitBuffer(l.event, GrabTimeout)
	if err != nil {
		return false, c.check("WaitForSingleObject", err)
	}
	if !ok {
		log.Printf("pco: no frame within %v", GrabTimeout)
		return false, nil
	}
	copy(buf, l.data[:n])
	if err := c.queue(); err != nil {
		return true, err
	}
	return true, nil
}

// Readout fills buf with the frame at index (1-based) in the active RAM segment
func (c *Camera) Readout(buf []byte, index uint32) error {
	if err := c.target(buf); err != nil {
		return err
	}
	l := c.leases[0]
	err := c.sdk.GetImageEx(c.handle, c.segment, index, index, l.number, c.width, c.height, c.desc.DynResDESC)
	if err != nil {
		return c.check("GetImageEx", err)
	}
	copy(buf, l.data[:c.frameBytes()])
	return nil
}

// Trigger fires a software trigger unless the camera is busy
func (c *Camera) Trigger() error {
	if err := c.usable(); err != nil {
		return err
	}
	busy, err := c.sdk.GetCameraBusyStatus(c.handle)
	if err != nil {
		return c.check("GetCameraBusyStatus", err)
	}
	if busy != 0 {
		return ErrBusy
	}
	if _, err := c.sdk.ForceTrigger(c.handle); err != nil {
		return c.check("ForceTrigger", err)
	}
	return nil
}

// FrameSize is the size of the frames Grab delivers.  Before the first
// StartRecording it is the size of the staged ROI.
func (c *Camera) FrameSize() (int, int, error) {
	if err := c.usable(); err != nil {
		return 0, 0, err
	}
	if c.width != 0 {
		return int(c.width), int(c.height), nil
	}
	return c.aoi.Width, c.aoi.Height, nil
}
