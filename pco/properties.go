package pco

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nasa-jpl/pcolab/camera"
	"github.com/nasa-jpl/pcolab/pco/sdk"
	"github.com/nasa-jpl/pcolab/util"
)

type (
	getter func(c *Camera) (interface{}, error)
	setter func(c *Camera, v interface{}) error
)

type property struct {
	spec camera.PropertySpec
	get  getter
	set  setter
}

// enum maps SDK mode words (the index) to names
type enum []string

func (e enum) name(code uint16) (string, error) {
	if int(code) >= len(e) {
		return "", fmt.Errorf("camera reported unknown mode %d", code)
	}
	return e[code], nil
}

func (e enum) code(field string, v interface{}) (uint16, error) {
	s, err := asString(v)
	if err != nil {
		return 0, err
	}
	for i, n := range e {
		if n == s {
			return uint16(i), nil
		}
	}
	return 0, invalid(field, "%q is not one of %v", s, []string(e))
}

var (
	recordModes    = enum{"sequence", "ring-buffer"}
	storageModes   = enum{"recorder", "fifo-buffer"}
	acquireModes   = enum{"auto", "external"}
	timestampModes = enum{"none", "binary", "binary+ascii", "ascii"}
	triggerModes   = enum{camera.TriggerAuto.String(), camera.TriggerSoftware.String(), camera.TriggerExternal.String()}
)

func ro(name, blurb string, kind camera.Kind, unit string, get getter) property {
	return property{
		spec: camera.PropertySpec{Name: name, Blurb: blurb, Kind: kind, Unit: unit},
		get:  get,
	}
}

func rw(name, blurb string, kind camera.Kind, unit string, get getter, set setter) property {
	return property{
		spec: camera.PropertySpec{Name: name, Blurb: blurb, Kind: kind, Unit: unit, Writable: true},
		get:  get,
		set:  set,
	}
}

// live marks a property as writable while recording
func live(p property) property {
	p.spec.WritableDuringAcquisition = true
	return p
}

func enumerated(p property, e enum) property {
	p.spec.Enum = e
	return p
}

// mode builds an enumerated property over a pair of SDK mode accessors
func mode(name, blurb string, e enum, op string,
	get func(sdk.SDK, sdk.Handle) (uint16, error),
	set func(sdk.SDK, sdk.Handle, uint16) error) property {
	return enumerated(rw(name, blurb, camera.KindEnum, "",
		func(c *Camera) (interface{}, error) {
			v, err := get(c.sdk, c.handle)
			if err != nil {
				return nil, c.check("Get"+op, err)
			}
			return e.name(v)
		},
		func(c *Camera, v interface{}) error {
			code, err := e.code(name, v)
			if err != nil {
				return err
			}
			return c.check("Set"+op, set(c.sdk, c.handle, code))
		}), e)
}

// flag builds a bool property over a pair of SDK on/off accessors, available
// only when supported reports true.  Unsupported flags read as off.
func flag(name, blurb, op string, supported func(c *Camera) bool,
	get func(sdk.SDK, sdk.Handle) (uint16, error),
	set func(sdk.SDK, sdk.Handle, uint16) error) property {
	return rw(name, blurb, camera.KindBool, "",
		func(c *Camera) (interface{}, error) {
			if !supported(c) {
				return false, nil
			}
			v, err := get(c.sdk, c.handle)
			if err != nil {
				return nil, c.check("Get"+op, err)
			}
			return v != 0, nil
		},
		func(c *Camera, v interface{}) error {
			b, err := asBool(v)
			if err != nil {
				return err
			}
			if !supported(c) {
				return ErrUnsupported
			}
			return c.check("Set"+op, set(c.sdk, c.handle, boolU16(b)))
		})
}

func roiField(name, blurb string, field func(a *camera.AOI) *int, least int) property {
	return rw(name, blurb, camera.KindInt, "px",
		func(c *Camera) (interface{}, error) {
			return *field(&c.aoi), nil
		},
		func(c *Camera, v interface{}) error {
			i, err := asInt(v)
			if err != nil {
				return err
			}
			if i < least {
				return invalid(name, "%d is less than %d", i, least)
			}
			*field(&c.aoi) = i
			return nil
		})
}

var properties = map[string]property{
	"name": ro("name", "name of the camera driver", camera.KindString, "",
		func(c *Camera) (interface{}, error) { return Name, nil }),
	"version": ro("version", "serial number, hardware and firmware versions", camera.KindString, "",
		func(c *Camera) (interface{}, error) { return c.Version(), nil }),
	"session": ro("session", "id of the current recording", camera.KindString, "",
		func(c *Camera) (interface{}, error) { return c.Session(), nil }),

	"sensor-width": ro("sensor-width", "width of the sensor in the standard format", camera.KindInt, "px",
		func(c *Camera) (interface{}, error) { return int(c.desc.MaxHorzResStdDESC), nil }),
	"sensor-height": ro("sensor-height", "height of the sensor in the standard format", camera.KindInt, "px",
		func(c *Camera) (interface{}, error) { return int(c.desc.MaxVertResStdDESC), nil }),
	"sensor-width-extended": ro("sensor-width-extended", "width of the sensor in the extended format", camera.KindInt, "px",
		func(c *Camera) (interface{}, error) { w, _ := c.extendedSize(); return w, nil }),
	"sensor-height-extended": ro("sensor-height-extended", "height of the sensor in the extended format", camera.KindInt, "px",
		func(c *Camera) (interface{}, error) { _, h := c.extendedSize(); return h, nil }),
	"sensor-pixel-width": ro("sensor-pixel-width", "width of a pixel", camera.KindFloat, "m",
		func(c *Camera) (interface{}, error) { return c.PixelPitch() }),
	"sensor-pixel-height": ro("sensor-pixel-height", "height of a pixel", camera.KindFloat, "m",
		func(c *Camera) (interface{}, error) { return c.PixelPitch() }),
	"sensor-bitdepth": ro("sensor-bitdepth", "bits per pixel", camera.KindInt, "",
		func(c *Camera) (interface{}, error) { return c.BitDepth(), nil }),
	"sensor-temperature": ro("sensor-temperature", "temperature of the sensor", camera.KindFloat, "C",
		func(c *Camera) (interface{}, error) { return c.GetTemperature() }),
	"sensor-extended": rw("sensor-extended", "use the extended sensor format", camera.KindBool, "",
		func(c *Camera) (interface{}, error) { return c.GetSensorExtended() },
		func(c *Camera, v interface{}) error {
			b, err := asBool(v)
			if err != nil {
				return err
			}
			return c.SetSensorExtended(b)
		}),
	"sensor-horizontal-binning": rw("sensor-horizontal-binning", "horizontal binning factor", camera.KindInt, "px",
		func(c *Camera) (interface{}, error) { return c.binning.H, nil },
		func(c *Camera, v interface{}) error {
			i, err := asInt(v)
			if err != nil {
				return err
			}
			return c.SetBinning(camera.Binning{H: i, V: c.binning.V})
		}),
	"sensor-vertical-binning": rw("sensor-vertical-binning", "vertical binning factor", camera.KindInt, "px",
		func(c *Camera) (interface{}, error) { return c.binning.V, nil },
		func(c *Camera, v interface{}) error {
			i, err := asInt(v)
			if err != nil {
				return err
			}
			return c.SetBinning(camera.Binning{H: c.binning.H, V: i})
		}),
	"sensor-pixelrates": ro("sensor-pixelrates", "pixel rates the camera supports", camera.KindIntList, "Hz",
		func(c *Camera) (interface{}, error) {
			out := make([]int, len(c.pixelRates))
			for i, r := range c.pixelRates {
				out[i] = int(r)
			}
			return out, nil
		}),
	"sensor-pixelrate": rw("sensor-pixelrate", "pixel rate, one of sensor-pixelrates", camera.KindInt, "Hz",
		func(c *Camera) (interface{}, error) { return c.GetPixelRate() },
		func(c *Camera, v interface{}) error {
			i, err := asInt(v)
			if err != nil {
				return err
			}
			return c.SetPixelRate(i)
		}),
	"sensor-adcs": rw("sensor-adcs", "number of ADCs used for readout", camera.KindInt, "",
		func(c *Camera) (interface{}, error) {
			n, err := c.sdk.GetADCOperation(c.handle)
			return int(n), c.check("GetADCOperation", err)
		},
		func(c *Camera, v interface{}) error {
			i, err := asInt(v)
			if err != nil {
				return err
			}
			if i < 1 || i > int(c.desc.NumADCsDESC) {
				return invalid("sensor-adcs", "%d is not between 1 and %d", i, c.desc.NumADCsDESC)
			}
			return c.check("SetADCOperation", c.sdk.SetADCOperation(c.handle, uint16(i)))
		}),
	"sensor-max-adcs": ro("sensor-max-adcs", "number of ADCs the camera has", camera.KindInt, "",
		func(c *Camera) (interface{}, error) { return int(c.desc.NumADCsDESC), nil }),

	"exposure-time": live(rw("exposure-time", "exposure time", camera.KindFloat, "s",
		func(c *Camera) (interface{}, error) {
			d, err := c.GetExposureTime()
			return d.Seconds(), err
		},
		func(c *Camera, v interface{}) error {
			f, err := asFloat(v)
			if err != nil {
				return err
			}
			ns := math.Round(f * 1e9)
			if ns < 1 || ns > math.MaxUint32 {
				return invalid("exposure-time", "%gs is out of range", f)
			}
			return c.setExposureNs(uint32(ns))
		})),
	"frames-per-second": live(rw("frames-per-second", "frame rate", camera.KindFloat, "Hz",
		func(c *Camera) (interface{}, error) { return c.GetFrameRate() },
		func(c *Camera, v interface{}) error {
			f, err := asFloat(v)
			if err != nil {
				return err
			}
			return c.SetFrameRate(f)
		})),
	"trigger-source": enumerated(rw("trigger-source", "what starts an exposure", camera.KindEnum, "",
		func(c *Camera) (interface{}, error) {
			t, err := c.GetTriggerSource()
			return t.String(), err
		},
		func(c *Camera, v interface{}) error {
			s, err := asString(v)
			if err != nil {
				return err
			}
			t, err := camera.ParseTriggerSource(s)
			if err != nil {
				return invalid("trigger-source", "%v", err)
			}
			return c.SetTriggerSource(t)
		}), triggerModes),

	"roi-x":      roiField("roi-x", "left edge of the region of interest", func(a *camera.AOI) *int { return &a.X }, 0),
	"roi-y":      roiField("roi-y", "top edge of the region of interest", func(a *camera.AOI) *int { return &a.Y }, 0),
	"roi-width":  roiField("roi-width", "width of the region of interest", func(a *camera.AOI) *int { return &a.Width }, 1),
	"roi-height": roiField("roi-height", "height of the region of interest", func(a *camera.AOI) *int { return &a.Height }, 1),
	"roi-width-multiplier": ro("roi-width-multiplier", "granularity of the region of interest width", camera.KindInt, "px",
		func(c *Camera) (interface{}, error) { return int(c.desc.RoiHorStepsDESC), nil }),
	"roi-height-multiplier": ro("roi-height-multiplier", "granularity of the region of interest height", camera.KindInt, "px",
		func(c *Camera) (interface{}, error) { return int(c.desc.RoiVertStepsDESC), nil }),

	"has-streaming": ro("has-streaming", "frames can be grabbed while recording", camera.KindBool, "",
		func(c *Camera) (interface{}, error) { return true, nil }),
	"has-camram-recording": ro("has-camram-recording", "the camera records into its own RAM", camera.KindBool, "",
		func(c *Camera) (interface{}, error) { return c.HasCamRAM(), nil }),
	"recorded-frames": ro("recorded-frames", "frames held in the active RAM segment", camera.KindInt, "",
		func(c *Camera) (interface{}, error) {
			if c.isEdge() {
				return 0, nil
			}
			n, _, err := c.sdk.GetNumberOfImagesInSegment(c.handle, c.segment)
			return int(n), c.check("GetNumberOfImagesInSegment", err)
		}),
	"is-recording": ro("is-recording", "the camera is recording", camera.KindBool, "",
		func(c *Camera) (interface{}, error) {
			s, err := c.sdk.GetRecordingState(c.handle)
			return s != 0, c.check("GetRecordingState", err)
		}),
	"is-readout": ro("is-readout", "a readout from camera RAM is in progress", camera.KindBool, "",
		func(c *Camera) (interface{}, error) { return c.readout, nil }),

	"has-double-image-mode": ro("has-double-image-mode", "the camera supports double image mode", camera.KindBool, "",
		func(c *Camera) (interface{}, error) { return c.desc.DoubleImageDESC == 1, nil }),
	"double-image-mode": flag("double-image-mode", "take two images in short succession", "DoubleImageMode",
		func(c *Camera) bool { return c.desc.DoubleImageDESC == 1 },
		sdk.SDK.GetDoubleImageMode, sdk.SDK.SetDoubleImageMode),
	"noise-filter": flag("noise-filter", "in-camera noise filter", "NoiseFilterMode",
		func(c *Camera) bool { return c.desc.GeneralCapsDESC1&sdk.GeneralCaps1NoiseFilter != 0 },
		sdk.SDK.GetNoiseFilterMode, sdk.SDK.SetNoiseFilterMode),
	"offset-mode": flag("offset-mode", "automatic offset regulation", "OffsetMode",
		func(c *Camera) bool {
			switch c.typ.CamType {
			case sdk.CameraTypePCO1300, sdk.CameraTypePCO1400, sdk.CameraTypePCOUSBPixelfly:
				return true
			}
			return false
		},
		sdk.SDK.GetOffsetMode, sdk.SDK.SetOffsetMode),

	"record-mode": mode("record-mode", "how camera RAM is filled", recordModes, "RecorderSubmode",
		sdk.SDK.GetRecorderSubmode, sdk.SDK.SetRecorderSubmode),
	"storage-mode": mode("storage-mode", "whether camera RAM is a recorder or a FIFO", storageModes, "StorageMode",
		sdk.SDK.GetStorageMode, sdk.SDK.SetStorageMode),
	"acquire-mode": mode("acquire-mode", "whether acquisition is gated by the acquire input", acquireModes, "AcquireMode",
		sdk.SDK.GetAcquireMode, sdk.SDK.SetAcquireMode),
	"timestamp-mode": mode("timestamp-mode", "timestamp written into the image", timestampModes, "TimestampMode",
		sdk.SDK.GetTimestampMode, sdk.SDK.SetTimestampMode),

	"cooling-point": rw("cooling-point", "sensor temperature setpoint", camera.KindInt, "C",
		func(c *Camera) (interface{}, error) { return c.GetCoolingSetpoint() },
		func(c *Camera, v interface{}) error {
			i, err := asInt(v)
			if err != nil {
				return err
			}
			return c.SetCoolingSetpoint(i)
		}),
	"cooling-point-min": ro("cooling-point-min", "lowest temperature setpoint", camera.KindInt, "C",
		func(c *Camera) (interface{}, error) { return int(c.desc.MinCoolSetDESC), nil }),
	"cooling-point-max": ro("cooling-point-max", "highest temperature setpoint", camera.KindInt, "C",
		func(c *Camera) (interface{}, error) { return int(c.desc.MaxCoolSetDESC), nil }),
	"cooling-point-default": ro("cooling-point-default", "factory temperature setpoint", camera.KindInt, "C",
		func(c *Camera) (interface{}, error) { return int(c.desc.DefaultCoolSetDESC), nil }),

	"global-shutter": rw("global-shutter", "global instead of rolling shutter; changing it reboots the camera", camera.KindBool, "",
		func(c *Camera) (interface{}, error) { return c.GetGlobalShutter() },
		func(c *Camera, v interface{}) error {
			b, err := asBool(v)
			if err != nil {
				return err
			}
			return c.SetGlobalShutter(b)
		}),
}

// Properties lists the camera's properties by name
func (c *Camera) Properties() []camera.PropertySpec {
	out := make([]camera.PropertySpec, 0, len(properties))
	for _, p := range properties {
		out = append(out, p.spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetProperty reads a property
func (c *Camera) GetProperty(name string) (interface{}, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	p, ok := properties[name]
	if !ok {
		return nil, errors.Wrap(camera.ErrUnknownProperty, name)
	}
	v, err := p.get(c)
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s", name)
	}
	return v, nil
}

// SetProperty writes a property.  While recording only properties marked
// WritableDuringAcquisition may be written; others keep their value.
func (c *Camera) SetProperty(name string, v interface{}) error {
	if err := c.usable(); err != nil {
		return err
	}
	p, ok := properties[name]
	if !ok {
		return errors.Wrap(camera.ErrUnknownProperty, name)
	}
	if !p.spec.Writable {
		return errors.Wrap(ErrReadOnly, name)
	}
	if c.recording && !p.spec.WritableDuringAcquisition {
		return errors.Wrap(ErrNotWritableDuringAcquisition, name)
	}
	if err := p.set(c, v); err != nil {
		log.Printf("pco: setting %s to %v: %v", name, v, err)
		return errors.Wrapf(err, "setting %s", name)
	}
	return nil
}

// idle returns the reason the named setting cannot be changed now, if any.
// Only the properties marked WritableDuringAcquisition skip this.
func (c *Camera) idle(name string) error {
	if err := c.usable(); err != nil {
		return err
	}
	if c.recording {
		return errors.Wrap(ErrNotWritableDuringAcquisition, name)
	}
	return nil
}

// Configure sets many properties at once, in name order.  Every setting is
// attempted; the failures are merged.
func (c *Camera) Configure(settings map[string]interface{}) error {
	names := make([]string, 0, len(settings))
	for k := range settings {
		names = append(names, k)
	}
	sort.Strings(names)
	var errs []error
	for _, k := range names {
		errs = append(errs, c.SetProperty(k, settings[k]))
	}
	return util.MergeErrors(errs)
}

// Version is "serial, hw major.minor, fw major.minor"
func (c *Camera) Version() string {
	t := c.typ
	return fmt.Sprintf("%d, %d.%d, %d.%d", t.SerialNumber,
		t.HardwareVersion>>16, t.HardwareVersion&0xFFFF,
		t.FirmwareVersion>>16, t.FirmwareVersion&0xFFFF)
}

// Session is the id of the most recent recording, empty before the first
func (c *Camera) Session() string {
	if c.session == (uuid.UUID{}) {
		return ""
	}
	return c.session.String()
}

// PixelPitch is the size of a pixel in meters for the models where it is known
func (c *Camera) PixelPitch() (float64, error) {
	switch {
	case c.isEdge():
		return 6.5e-6, nil
	case c.typ.CamType == sdk.CameraTypePCODimaxStd:
		return 11e-6, nil
	case c.typ.CamType == sdk.CameraTypePCO4000:
		return 9e-6, nil
	}
	return 0, errors.Wrapf(ErrUnsupported, "pixel size of camera type 0x%X", c.typ.CamType)
}

// BitDepth is the number of significant bits per pixel
func (c *Camera) BitDepth() int {
	switch {
	case c.typ.CamType == sdk.CameraTypePCO4000:
		return 14
	case c.isEdge(), c.typ.CamType == sdk.CameraTypePCODimaxStd:
		return 16
	}
	return int(c.desc.DynResDESC)
}

// HasCamRAM is true if the camera reports a RAM size
func (c *Camera) HasCamRAM() bool {
	_, _, err := c.sdk.GetCameraRAMSize(c.handle)
	return err == nil
}

// GetExposureTime gets the exposure time
func (c *Camera) GetExposureTime() (time.Duration, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	fr, err := c.sdk.GetFrameRate(c.handle)
	if err != nil {
		return 0, c.check("GetFrameRate", err)
	}
	return time.Duration(fr.Nanoseconds) * time.Nanosecond, nil
}

// SetExposureTime sets the exposure time, keeping the frame rate where the camera allows
func (c *Camera) SetExposureTime(d time.Duration) error {
	if err := c.usable(); err != nil {
		return err
	}
	if d < time.Nanosecond || d.Nanoseconds() > math.MaxUint32 {
		return invalid("exposure-time", "%v is out of range", d)
	}
	return c.setExposureNs(uint32(d.Nanoseconds()))
}

func (c *Camera) setExposureNs(ns uint32) error {
	fr, err := c.sdk.GetFrameRate(c.handle)
	if err != nil {
		return c.check("GetFrameRate", err)
	}
	fr.Nanoseconds = ns
	_, err = c.sdk.SetFrameRate(c.handle, sdk.FrameRateModeExposurePrio, fr)
	return c.check("SetFrameRate", err)
}

// GetFrameRate gets the frame rate in Hz
func (c *Camera) GetFrameRate() (float64, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	fr, err := c.sdk.GetFrameRate(c.handle)
	if err != nil {
		return 0, c.check("GetFrameRate", err)
	}
	return float64(fr.MilliHertz) / 1000, nil
}

// SetFrameRate sets the frame rate in Hz, keeping the exposure time where the camera allows
func (c *Camera) SetFrameRate(hz float64) error {
	if err := c.usable(); err != nil {
		return err
	}
	mhz := math.Round(hz * 1000)
	if mhz < 1 || mhz > math.MaxUint32 {
		return invalid("frames-per-second", "%gHz is out of range", hz)
	}
	fr, err := c.sdk.GetFrameRate(c.handle)
	if err != nil {
		return c.check("GetFrameRate", err)
	}
	fr.MilliHertz = uint32(mhz)
	_, err = c.sdk.SetFrameRate(c.handle, sdk.FrameRateModeFrameRatePrio, fr)
	return c.check("SetFrameRate", err)
}

// GetTemperature gets the sensor temperature in whole degrees Celsius.
// The camera reports tenths of a degree; the remainder is truncated.
func (c *Camera) GetTemperature() (float64, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	ccd, _, _, err := c.sdk.GetTemperature(c.handle)
	if err != nil {
		return 0, c.check("GetTemperature", err)
	}
	return float64(int(ccd) / 10), nil
}

// coolable models accept a cooling setpoint
func (c *Camera) coolable() bool {
	switch c.typ.CamType {
	case sdk.CameraTypePCO1300, sdk.CameraTypePCO1600, sdk.CameraTypePCO2000, sdk.CameraTypePCO4000:
		return true
	}
	return false
}

// GetCoolingSetpoint gets the sensor temperature setpoint in degrees Celsius
func (c *Camera) GetCoolingSetpoint() (int, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	if !c.coolable() {
		return 0, ErrUnsupported
	}
	t, err := c.sdk.GetCoolingSetpointTemperature(c.handle)
	return int(t), c.check("GetCoolingSetpointTemperature", err)
}

// SetCoolingSetpoint sets the sensor temperature setpoint within the camera's range
func (c *Camera) SetCoolingSetpoint(t int) error {
	if err := c.idle("cooling-point"); err != nil {
		return err
	}
	if !c.coolable() {
		return ErrUnsupported
	}
	lo, hi := int(c.desc.MinCoolSetDESC), int(c.desc.MaxCoolSetDESC)
	if t < lo || t > hi {
		return invalid("cooling-point", "%d is not between %d and %d", t, lo, hi)
	}
	return c.check("SetCoolingSetpointTemperature", c.sdk.SetCoolingSetpointTemperature(c.handle, int16(t)))
}

// GetTemperatureSetpoint is GetCoolingSetpoint for thermal controllers
func (c *Camera) GetTemperatureSetpoint() (float64, error) {
	t, err := c.GetCoolingSetpoint()
	return float64(t), err
}

// SetTemperatureSetpoint is SetCoolingSetpoint for thermal controllers.
// The camera takes whole degrees.
func (c *Camera) SetTemperatureSetpoint(t float64) error {
	if t != math.Trunc(t) {
		return invalid("cooling-point", "%v is not a whole number of degrees", t)
	}
	return c.SetCoolingSetpoint(int(t))
}

// GetPixelRate gets the pixel rate in Hz
func (c *Camera) GetPixelRate() (int, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	r, err := c.sdk.GetPixelRate(c.handle)
	return int(r), c.check("GetPixelRate", err)
}

// SetPixelRate sets the pixel rate, which must be one the camera lists
func (c *Camera) SetPixelRate(hz int) error {
	if err := c.idle("sensor-pixelrate"); err != nil {
		return err
	}
	for _, r := range c.pixelRates {
		if int(r) == hz {
			return c.check("SetPixelRate", c.sdk.SetPixelRate(c.handle, r))
		}
	}
	return invalid("sensor-pixelrate", "%d is not one of %v", hz, c.pixelRates)
}

// GetSensorExtended reports if the extended sensor format is in use
func (c *Camera) GetSensorExtended() (bool, error) {
	if err := c.usable(); err != nil {
		return false, err
	}
	f, err := c.sdk.GetSensorFormat(c.handle)
	if err != nil {
		return false, c.check("GetSensorFormat", err)
	}
	return f == sdk.SensorFormatExtended, nil
}

// SetSensorExtended selects the extended or standard sensor format
func (c *Camera) SetSensorExtended(b bool) error {
	if err := c.idle("sensor-extended"); err != nil {
		return err
	}
	f := uint16(sdk.SensorFormatStandard)
	if b {
		f = sdk.SensorFormatExtended
	}
	if err := c.sdk.SetSensorFormat(c.handle, f); err != nil {
		return c.check("SetSensorFormat", err)
	}
	c.extended = b
	return nil
}

// GetTriggerSource gets the trigger source
func (c *Camera) GetTriggerSource() (camera.TriggerSource, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	m, err := c.sdk.GetTriggerMode(c.handle)
	if err != nil {
		return 0, c.check("GetTriggerMode", err)
	}
	return camera.TriggerSource(m), nil
}

// SetTriggerSource sets the trigger source
func (c *Camera) SetTriggerSource(t camera.TriggerSource) error {
	if err := c.idle("trigger-source"); err != nil {
		return err
	}
	if t < camera.TriggerAuto || t > camera.TriggerExternal {
		return invalid("trigger-source", "unknown source %v", t)
	}
	if err := c.sdk.SetTriggerMode(c.handle, uint16(t)); err != nil {
		return c.check("SetTriggerMode", err)
	}
	c.trigger = t
	return nil
}

// GetAOI returns the staged region of interest
func (c *Camera) GetAOI() (camera.AOI, error) {
	if err := c.usable(); err != nil {
		return camera.AOI{}, err
	}
	return c.aoi, nil
}

// SetAOI stages a region of interest.  It is checked against the sensor by StartRecording.
func (c *Camera) SetAOI(a camera.AOI) error {
	if err := c.idle("roi"); err != nil {
		return err
	}
	if a.X < 0 || a.Y < 0 || a.Width < 1 || a.Height < 1 {
		return invalid("roi", "%+v has a negative offset or empty size", a)
	}
	c.aoi = a
	return nil
}

// GetBinning returns the staged binning
func (c *Camera) GetBinning() (camera.Binning, error) {
	if err := c.usable(); err != nil {
		return camera.Binning{}, err
	}
	return c.binning, nil
}

// SetBinning stages a binning, which must not exceed the camera's maximum
func (c *Camera) SetBinning(b camera.Binning) error {
	if err := c.idle("binning"); err != nil {
		return err
	}
	if b.H < 1 || b.H > int(c.desc.MaxBinHorzDESC) {
		return invalid("sensor-horizontal-binning", "%d is not between 1 and %d", b.H, c.desc.MaxBinHorzDESC)
	}
	if b.V < 1 || b.V > int(c.desc.MaxBinVertDESC) {
		return invalid("sensor-vertical-binning", "%d is not between 1 and %d", b.V, c.desc.MaxBinVertDESC)
	}
	c.binning = b
	return nil
}
