/*Package sdk exposes the subset of the PCO SC2 camera SDK used to drive a camera.

The SDK is described by an interface so that the adapter in package pco may be
driven either by the native Windows library (sc2cam_windows.go) or by the
in-memory Mock.  All calls are synchronous; a non-zero vendor status means the
call was not applied and is returned as a Status error.
*/
package sdk

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedPlatform is returned by Native on platforms without the vendor library
var ErrUnsupportedPlatform = errors.New("the PCO SC2 SDK is only available on windows with cgo enabled")

// Status is a vendor status code.  Zero is success; anything else is an error.
type Status uint32

// bits of a status code
const (
	// ErrorBit is set on all error codes
	ErrorBit = 0x80000000

	// WarningBit is set on codes which are warnings
	WarningBit = 0x40000000

	// LayerSDKDLL marks errors generated inside the SDK DLL
	LayerSDKDLL = 0x00003000
)

// status codes the mock SDK can produce.  The native SDK produces many more.
const (
	StatusWrongValue         Status = ErrorBit | LayerSDKDLL | 0x01
	StatusInvalidHandle      Status = ErrorBit | LayerSDKDLL | 0x02
	StatusNoMemory           Status = ErrorBit | LayerSDKDLL | 0x03
	StatusTimeout            Status = ErrorBit | LayerSDKDLL | 0x05
	StatusBufferSize         Status = ErrorBit | LayerSDKDLL | 0x06
	StatusNotInit            Status = ErrorBit | LayerSDKDLL | 0x07
	StatusNoCamera           Status = ErrorBit | LayerSDKDLL | 0x0A
	StatusBufferNotAllocated Status = ErrorBit | LayerSDKDLL | 0x20
	StatusNotAvailable       Status = ErrorBit | LayerSDKDLL | 0x25
)

func (s Status) Error() string {
	return fmt.Sprintf("PCO status 0x%X", uint32(s))
}

// Error converts a status code to an error, nil on success
func Error(code uint32) error {
	if code == 0 {
		return nil
	}
	return Status(code)
}

// Handle is an opaque camera handle
type Handle uintptr

// Event is an opaque buffer event handle which is signaled when a queued buffer fills
type Event uintptr

// Buffer is an SDK-allocated image buffer.  Data aliases memory owned by the SDK
// and is only valid until FreeBuffer is called with Number.
type Buffer struct {
	Number int16
	Data   []byte
	Event  Event
}

// camera types, from sc2_defs.h
const (
	CameraTypePCO1200HS      = 0x0100
	CameraTypePCO1300        = 0x0200
	CameraTypePCO1600        = 0x0220
	CameraTypePCO2000        = 0x0240
	CameraTypePCO4000        = 0x0260
	CameraTypePCOUSBPixelfly = 0x0800
	CameraTypePCO1400        = 0x0830
	CameraTypePCODimaxStd    = 0x1000
	CameraTypePCOEdge        = 0x1300
	CameraTypePCOEdge42      = 0x1302
	CameraTypePCOEdgeGL      = 0x1310

	// FamilyMask isolates the family of a camera type
	FamilyMask = 0xFF00
)

// frame rate modes
const (
	FrameRateModeAuto             = 0x0000
	FrameRateModeFrameRatePrio    = 0x0001
	FrameRateModeExposurePrio     = 0x0002
	FrameRateModeStrictFrameRates = 0x0003
)

// trigger modes
const (
	TriggerAuto     = 0x0000
	TriggerSoftware = 0x0001
	TriggerExternal = 0x0002
)

// sensor formats
const (
	SensorFormatStandard = 0x0000
	SensorFormatExtended = 0x0001
)

// recorder submodes
const (
	RecorderSubmodeSequence   = 0x0000
	RecorderSubmodeRingBuffer = 0x0001
)

// storage modes
const (
	StorageModeRecorder   = 0x0000
	StorageModeFIFOBuffer = 0x0001
)

// acquire modes
const (
	AcquireModeAuto     = 0x0000
	AcquireModeExternal = 0x0001
)

// timestamp modes
const (
	TimestampOff            = 0x0000
	TimestampBinary         = 0x0001
	TimestampBinaryAndASCII = 0x0002
	TimestampASCII          = 0x0003
)

// camera setup flags for the edge family, first setup word
const (
	EdgeSetupRollingShutter = 0x00000001
	EdgeSetupGlobalShutter  = 0x00000002
)

// CameraLink data formats
const (
	CLDataFormat1x16 = 0x01
	CLDataFormat2x12 = 0x02
	CLDataFormat3x8  = 0x03
	CLDataFormat4x16 = 0x04
	CLDataFormat5x16 = 0x05
)

// General holds the general camera information
type General struct {
	Type       CameraType
	ErrStatus  uint32
	WarnStatus uint32
}

// CameraType holds the camera type structure
type CameraType struct {
	CamType         uint16
	CamSubType      uint16
	SerialNumber    uint32
	HardwareVersion uint32
	FirmwareVersion uint32
	InterfaceType   uint16
}

// Sensor holds the sensor structure
type Sensor struct {
	SensorFormat uint16
	ADCOperation uint16
	PixelRate    uint32
	ROI          [4]uint16
	Binning      [2]uint16
	CoolSet      int16
	OffsetMode   uint16
	NoiseFilter  uint16
	DoubleImage  uint16
}

// Description holds the camera description: the static capabilities of the model
type Description struct {
	SensorTypeDESC     uint16
	MaxHorzResStdDESC  uint16
	MaxVertResStdDESC  uint16
	MaxHorzResExtDESC  uint16
	MaxVertResExtDESC  uint16
	DynResDESC         uint16
	MaxBinHorzDESC     uint16
	MaxBinVertDESC     uint16
	RoiHorStepsDESC    uint16
	RoiVertStepsDESC   uint16
	NumADCsDESC        uint16
	PixelRateDESC      [4]uint32
	DoubleImageDESC    uint16
	MinCoolSetDESC     int16
	MaxCoolSetDESC     int16
	DefaultCoolSetDESC int16
	GeneralCapsDESC1   uint32
	MinExposeDESC      uint32 // ns
	MaxExposeDESC      uint32 // ms
}

// GeneralCaps1NoiseFilter marks support for the noise filter in GeneralCapsDESC1
const GeneralCaps1NoiseFilter = 0x00000001

// Storage holds the camera RAM description
type Storage struct {
	RAMSize          uint32
	PageSize         uint16
	ActiveRAMSegment uint16
	RAMSegSize       [4]uint32
}

// FrameRate is the triple reported and accepted by Get/SetFrameRate
type FrameRate struct {
	// Status describes how the camera adjusted the request
	Status uint16

	// MilliHertz is the frame rate in mHz
	MilliHertz uint32

	// Nanoseconds is the exposure time in ns
	Nanoseconds uint32
}

// TransferParam is the CameraLink transfer configuration
type TransferParam struct {
	BaudRate       uint32
	ClockFrequency uint32
	CCLines        uint32
	DataFormat     uint32
	Transmit       uint32
}

// HealthStatus is the camera health triple
type HealthStatus struct {
	Warnings uint32
	Errors   uint32
	Status   uint32
}

// Sizes are the actual and maximum image sizes reported after arming
type Sizes struct {
	XAct, YAct, XMax, YMax uint16
}

// SDK is the vendor call set.  Method names mirror the SC2 exports without the PCO_ prefix.
type SDK interface {
	OpenCamera(index int) (Handle, error)
	CloseCamera(h Handle) error

	GetGeneral(h Handle) (General, error)
	GetCameraType(h Handle) (CameraType, error)
	GetSensorStruct(h Handle) (Sensor, error)
	GetCameraDescription(h Handle) (Description, error)
	GetStorageStruct(h Handle) (Storage, error)

	GetROI(h Handle) ([4]uint16, error)
	SetROI(h Handle, roi [4]uint16) error
	GetBinning(h Handle) (horz, vert uint16, err error)
	SetBinning(h Handle, horz, vert uint16) error

	GetActiveRAMSegment(h Handle) (uint16, error)
	ClearRAMSegment(h Handle) error
	GetCameraRAMSize(h Handle) (ramSize uint32, pageSize uint16, err error)
	GetNumberOfImagesInSegment(h Handle, segment uint16) (valid, max uint32, err error)

	GetFrameRate(h Handle) (FrameRate, error)
	SetFrameRate(h Handle, mode uint16, fr FrameRate) (FrameRate, error)
	GetPixelRate(h Handle) (uint32, error)
	SetPixelRate(h Handle, rate uint32) error

	GetTriggerMode(h Handle) (uint16, error)
	SetTriggerMode(h Handle, mode uint16) error
	GetRecorderSubmode(h Handle) (uint16, error)
	SetRecorderSubmode(h Handle, mode uint16) error
	GetStorageMode(h Handle) (uint16, error)
	SetStorageMode(h Handle, mode uint16) error
	GetAcquireMode(h Handle) (uint16, error)
	SetAcquireMode(h Handle, mode uint16) error
	GetTimestampMode(h Handle) (uint16, error)
	SetTimestampMode(h Handle, mode uint16) error
	GetSensorFormat(h Handle) (uint16, error)
	SetSensorFormat(h Handle, format uint16) error
	GetADCOperation(h Handle) (uint16, error)
	SetADCOperation(h Handle, n uint16) error
	GetNoiseFilterMode(h Handle) (uint16, error)
	SetNoiseFilterMode(h Handle, mode uint16) error
	GetDoubleImageMode(h Handle) (uint16, error)
	SetDoubleImageMode(h Handle, mode uint16) error
	GetOffsetMode(h Handle) (uint16, error)
	SetOffsetMode(h Handle, mode uint16) error
	GetCoolingSetpointTemperature(h Handle) (int16, error)
	SetCoolingSetpointTemperature(h Handle, t int16) error
	GetTemperature(h Handle) (ccd, cam, power int16, err error)

	GetCameraSetup(h Handle) (typ uint16, setup []uint32, err error)
	SetCameraSetup(h Handle, typ uint16, setup []uint32) error
	SetTimeouts(h Handle, command, image, channel uint32) error
	RebootCamera(h Handle) error
	GetTransferParameter(h Handle) (TransferParam, error)
	SetTransferParameter(h Handle, p TransferParam) error
	SetTransferParametersAuto(h Handle) error
	CamLinkSetImageParameters(h Handle, width, height uint16) error

	ArmCamera(h Handle) error
	GetCameraHealthStatus(h Handle) (HealthStatus, error)
	GetSizes(h Handle) (Sizes, error)
	GetRecordingState(h Handle) (uint16, error)
	SetRecordingState(h Handle, state uint16) error
	GetCameraBusyStatus(h Handle) (uint16, error)
	ForceTrigger(h Handle) (uint16, error)

	AllocateBuffer(h Handle, number int16, size uint32) (Buffer, error)
	FreeBuffer(h Handle, number int16) error
	AddBufferEx(h Handle, first, last uint32, number int16, width, height, bitDepth uint16) error
	GetImageEx(h Handle, segment uint16, first, last uint32, number int16, width, height, bitDepth uint16) error
	CancelImages(h Handle) error

	// WaitBuffer blocks until the event is signaled or the timeout expires.
	// It returns false without error on timeout.
	WaitBuffer(ev Event, timeout time.Duration) (bool, error)

	// ErrorText returns the vendor's human readable text for a status code
	ErrorText(code uint32) string
}
