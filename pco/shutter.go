package pco

import (
	"log"

	"github.com/nasa-jpl/pcolab/pco/sdk"
)

// timeouts used while the camera applies a setup change, in ms
const (
	setupCommandTimeout = 2000
	setupImageTimeout   = 3000
	setupChannelTimeout = 250
)

// GetGlobalShutter reports if a pco.edge is in global shutter mode.
// Other models are always rolling shutter.
func (c *Camera) GetGlobalShutter() (bool, error) {
	if err := c.usable(); err != nil {
		return false, err
	}
	if !c.isEdge() {
		return false, nil
	}
	_, setup, err := c.sdk.GetCameraSetup(c.handle)
	if err != nil {
		return false, c.check("GetCameraSetup", err)
	}
	return len(setup) > 0 && setup[0] == sdk.EdgeSetupGlobalShutter, nil
}

// SetGlobalShutter switches a pco.edge between global and rolling shutter.
// The camera reboots to apply the change and is closed; the Camera returns
// ErrRebooted until Reopen succeeds.
func (c *Camera) SetGlobalShutter(global bool) error {
	if err := c.idle("global-shutter"); err != nil {
		return err
	}
	if !c.isEdge() {
		return ErrUnsupported
	}
	h := c.handle
	typ, setup, err := c.sdk.GetCameraSetup(h)
	if err != nil {
		return c.check("GetCameraSetup", err)
	}
	if len(setup) == 0 {
		setup = make([]uint32, 1)
	}
	setup[0] = sdk.EdgeSetupRollingShutter
	if global {
		setup[0] = sdk.EdgeSetupGlobalShutter
	}
	if err := c.sdk.SetTimeouts(h, setupCommandTimeout, setupImageTimeout, setupChannelTimeout); err != nil {
		return c.check("SetTimeouts", err)
	}
	if err := c.sdk.SetCameraSetup(h, typ, setup); err != nil {
		return c.check("SetCameraSetup", err)
	}
	c.releaseLeases()
	if err := c.sdk.RebootCamera(h); err != nil {
		return c.check("RebootCamera", err)
	}
	c.rebooted = true
	c.width, c.height = 0, 0
	if err := c.sdk.CloseCamera(h); err != nil {
		log.Printf("pco: closing camera after reboot: %v", c.check("CloseCamera", err))
	}
	c.opened = false
	log.Printf("pco: camera %d rebooting to apply the shutter mode", c.index)
	return nil
}
