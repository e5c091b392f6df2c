// Package usbprobe lists PCO cameras attached to the host over USB.
//
// It reads only the device descriptors and strings; the camera itself is
// opened through the SDK.
package usbprobe

import (
	"fmt"
	"log"

	"github.com/google/gousb"
)

// VendorPCO is the USB vendor id of PCO AG
const VendorPCO = gousb.ID(0x1CB2)

// Device describes one attached camera
type Device struct {
	Bus          int    `json:"bus"`
	Address      int    `json:"address"`
	Vendor       uint16 `json:"vendor"`
	Product      uint16 `json:"product"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber"`
}

func (d Device) String() string {
	return fmt.Sprintf("bus %03d device %03d: %04x:%04x %s %s (s/n %s)",
		d.Bus, d.Address, d.Vendor, d.Product, d.Manufacturer, d.Model, d.SerialNumber)
}

// isPCO is the filter handed to gousb
func isPCO(desc *gousb.DeviceDesc) bool {
	return desc.Vendor == VendorPCO
}

// describe copies the descriptor into a Device
func describe(desc *gousb.DeviceDesc) Device {
	return Device{
		Bus:     desc.Bus,
		Address: desc.Address,
		Vendor:  uint16(desc.Vendor),
		Product: uint16(desc.Product),
	}
}

// Probe lists the PCO devices on the USB bus.  Devices whose strings cannot
// be read are still listed, with the strings left empty.
func Probe() ([]Device, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(isPCO)
	// OpenDevices may return some devices and an error for the rest
	defer func() {
		for _, d := range devs {
			d.Close()
		}
	}()
	if err != nil && len(devs) == 0 {
		return nil, err
	}
	if err != nil {
		log.Printf("usbprobe: not every PCO device could be opened: %v", err)
	}

	out := make([]Device, 0, len(devs))
	for _, d := range devs {
		dev := describe(d.Desc)
		if s, err := d.Manufacturer(); err == nil {
			dev.Manufacturer = s
		}
		if s, err := d.Product(); err == nil {
			dev.Model = s
		}
		if s, err := d.SerialNumber(); err == nil {
			dev.SerialNumber = s
		}
		out = append(out, dev)
	}
	return out, nil
}
