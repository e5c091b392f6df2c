package usbprobe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/gousb"
)

func TestFilter(t *testing.T) {
	descs := []*gousb.DeviceDesc{
		{Bus: 1, Address: 4, Vendor: 0x1CB2, Product: 0x0001},
		{Bus: 1, Address: 5, Vendor: 0x046D, Product: 0xC52B},
		{Bus: 2, Address: 2, Vendor: 0x1CB2, Product: 0x0003},
	}
	var got []Device
	for _, d := range descs {
		if isPCO(d) {
			got = append(got, describe(d))
		}
	}
	expected := []Device{
		{Bus: 1, Address: 4, Vendor: 0x1CB2, Product: 0x0001},
		{Bus: 2, Address: 2, Vendor: 0x1CB2, Product: 0x0003},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("devices (-want +got):\n%s", diff)
	}
}

func TestDeviceString(t *testing.T) {
	d := Device{Bus: 1, Address: 4, Vendor: 0x1CB2, Product: 0x0001, Manufacturer: "PCO", Model: "pco.pixelfly usb", SerialNumber: "4711"}
	expected := "bus 001 device 004: 1cb2:0001 PCO pco.pixelfly usb (s/n 4711)"
	if s := d.String(); s != expected {
		t.Errorf("expected %q, got %q", expected, s)
	}
}
