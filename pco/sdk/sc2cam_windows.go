// +build windows,cgo

package sdk

/*
#cgo CFLAGS: -I"C:/Program Files (x86)/PCO Digital Camera Toolbox/pco.sdk/include"
#cgo LDFLAGS: -L"C:/Program Files (x86)/PCO Digital Camera Toolbox/pco.sdk/lib64" -lSC2_Cam
#include <stdlib.h>
#include <windows.h>
#include <sc2_SDKStructures.h>
#include <SC2_CamExport.h>
#include <sc2_defs.h>
#define PCO_ERRT_H_CREATE_OBJECT
#include <PCO_errt.h>

static void pco_get_error_text(DWORD code, char *buf, DWORD len) {
	PCO_GetErrorText(code, buf, len);
}
*/
import "C"

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const errTextLen = 256

// sc2 binds the SDK interface to SC2_Cam.dll
type sc2 struct{}

// Native returns the SDK backed by the vendor library
func Native() (SDK, error) {
	return sc2{}, nil
}

func hnd(h Handle) C.HANDLE {
	return C.HANDLE(unsafe.Pointer(h))
}

func stat(code C.int) error {
	return Error(uint32(code))
}

func (sc2) OpenCamera(index int) (Handle, error) {
	var h C.HANDLE
	err := stat(C.PCO_OpenCamera(&h, C.WORD(index)))
	return Handle(unsafe.Pointer(h)), err
}

func (sc2) CloseCamera(h Handle) error {
	return stat(C.PCO_CloseCamera(hnd(h)))
}

func cameraType(ct C.PCO_CameraType) CameraType {
	return CameraType{
		CamType:         uint16(ct.wCamType),
		CamSubType:      uint16(ct.wCamSubType),
		SerialNumber:    uint32(ct.dwSerialNumber),
		HardwareVersion: uint32(ct.dwHWVersion),
		FirmwareVersion: uint32(ct.dwFWVersion),
		InterfaceType:   uint16(ct.wInterfaceType),
	}
}

func (sc2) GetGeneral(h Handle) (General, error) {
	var g C.PCO_General
	g.wSize = C.WORD(unsafe.Sizeof(g))
	g.strCamType.wSize = C.WORD(unsafe.Sizeof(g.strCamType))
	err := stat(C.PCO_GetGeneral(hnd(h), &g))
	return General{
		Type:       cameraType(g.strCamType),
		ErrStatus:  uint32(g.dwCamHealthErrors),
		WarnStatus: uint32(g.dwCamHealthWarnings),
	}, err
}

func (sc2) GetCameraType(h Handle) (CameraType, error) {
	var ct C.PCO_CameraType
	ct.wSize = C.WORD(unsafe.Sizeof(ct))
	err := stat(C.PCO_GetCameraType(hnd(h), &ct))
	return cameraType(ct), err
}

func (sc2) GetSensorStruct(h Handle) (Sensor, error) {
	var s C.PCO_Sensor
	s.wSize = C.WORD(unsafe.Sizeof(s))
	s.strDescription.wSize = C.WORD(unsafe.Sizeof(s.strDescription))
	s.strDescription2.wSize = C.WORD(unsafe.Sizeof(s.strDescription2))
	err := stat(C.PCO_GetSensorStruct(hnd(h), &s))
	return Sensor{
		SensorFormat: uint16(s.wSensorformat),
		ADCOperation: uint16(s.wADCOperation),
		PixelRate:    uint32(s.dwPixelRate),
		ROI:          [4]uint16{uint16(s.wRoiX0), uint16(s.wRoiY0), uint16(s.wRoiX1), uint16(s.wRoiY1)},
		Binning:      [2]uint16{uint16(s.wBinHorz), uint16(s.wBinVert)},
		CoolSet:      int16(s.sCoolSet),
		OffsetMode:   uint16(s.wOffsetRegulation),
		NoiseFilter:  uint16(s.wNoiseFilterMode),
		DoubleImage:  uint16(s.wDoubleImage),
	}, err
}

func (sc2) GetCameraDescription(h Handle) (Description, error) {
	var d C.PCO_Description
	d.wSize = C.WORD(unsafe.Sizeof(d))
	err := stat(C.PCO_GetCameraDescription(hnd(h), &d))
	var rates [4]uint32
	for i := range rates {
		rates[i] = uint32(d.dwPixelRateDESC[i])
	}
	return Description{
		SensorTypeDESC:     uint16(d.wSensorTypeDESC),
		MaxHorzResStdDESC:  uint16(d.wMaxHorzResStdDESC),
		MaxVertResStdDESC:  uint16(d.wMaxVertResStdDESC),
		MaxHorzResExtDESC:  uint16(d.wMaxHorzResExtDESC),
		MaxVertResExtDESC:  uint16(d.wMaxVertResExtDESC),
		DynResDESC:         uint16(d.wDynResDESC),
		MaxBinHorzDESC:     uint16(d.wMaxBinHorzDESC),
		MaxBinVertDESC:     uint16(d.wMaxBinVertDESC),
		RoiHorStepsDESC:    uint16(d.wRoiHorStepsDESC),
		RoiVertStepsDESC:   uint16(d.wRoiVertStepsDESC),
		NumADCsDESC:        uint16(d.wNumADCsDESC),
		PixelRateDESC:      rates,
		DoubleImageDESC:    uint16(d.wDoubleImageDESC),
		MinCoolSetDESC:     int16(d.sMinCoolSetDESC),
		MaxCoolSetDESC:     int16(d.sMaxCoolSetDESC),
		DefaultCoolSetDESC: int16(d.sDefaultCoolSetDESC),
		GeneralCapsDESC1:   uint32(d.dwGeneralCapsDESC1),
		MinExposeDESC:      uint32(d.dwMinExposureDESC),
		MaxExposeDESC:      uint32(d.dwMaxExposureDESC),
	}, err
}

func (sc2) GetStorageStruct(h Handle) (Storage, error) {
	var s C.PCO_Storage
	s.wSize = C.WORD(unsafe.Sizeof(s))
	err := stat(C.PCO_GetStorageStruct(hnd(h), &s))
	var segs [4]uint32
	for i := range segs {
		segs[i] = uint32(s.dwRamSegSize[i])
	}
	return Storage{
		RAMSize:          uint32(s.dwRamSize),
		PageSize:         uint16(s.wPageSize),
		ActiveRAMSegment: uint16(s.wActSeg),
		RAMSegSize:       segs,
	}, err
}

func (sc2) GetROI(h Handle) ([4]uint16, error) {
	var x0, y0, x1, y1 C.WORD
	err := stat(C.PCO_GetROI(hnd(h), &x0, &y0, &x1, &y1))
	return [4]uint16{uint16(x0), uint16(y0), uint16(x1), uint16(y1)}, err
}

func (sc2) SetROI(h Handle, roi [4]uint16) error {
	return stat(C.PCO_SetROI(hnd(h), C.WORD(roi[0]), C.WORD(roi[1]), C.WORD(roi[2]), C.WORD(roi[3])))
}

func (sc2) GetBinning(h Handle) (uint16, uint16, error) {
	var bh, bv C.WORD
	err := stat(C.PCO_GetBinning(hnd(h), &bh, &bv))
	return uint16(bh), uint16(bv), err
}

func (sc2) SetBinning(h Handle, horz, vert uint16) error {
	return stat(C.PCO_SetBinning(hnd(h), C.WORD(horz), C.WORD(vert)))
}

func (sc2) GetActiveRAMSegment(h Handle) (uint16, error) {
	var seg C.WORD
	err := stat(C.PCO_GetActiveRamSegment(hnd(h), &seg))
	return uint16(seg), err
}

func (sc2) ClearRAMSegment(h Handle) error {
	return stat(C.PCO_ClearRamSegment(hnd(h)))
}

func (sc2) GetCameraRAMSize(h Handle) (uint32, uint16, error) {
	var size C.DWORD
	var page C.WORD
	err := stat(C.PCO_GetCameraRamSize(hnd(h), &size, &page))
	return uint32(size), uint16(page), err
}

func (sc2) GetNumberOfImagesInSegment(h Handle, segment uint16) (uint32, uint32, error) {
	var valid, max C.DWORD
	err := stat(C.PCO_GetNumberOfImagesInSegment(hnd(h), C.WORD(segment), &valid, &max))
	return uint32(valid), uint32(max), err
}

func (sc2) GetFrameRate(h Handle) (FrameRate, error) {
	var status C.WORD
	var rate, exp C.DWORD
	err := stat(C.PCO_GetFrameRate(hnd(h), &status, &rate, &exp))
	return FrameRate{Status: uint16(status), MilliHertz: uint32(rate), Nanoseconds: uint32(exp)}, err
}

func (sc2) SetFrameRate(h Handle, mode uint16, fr FrameRate) (FrameRate, error) {
	status := C.WORD(0)
	rate := C.DWORD(fr.MilliHertz)
	exp := C.DWORD(fr.Nanoseconds)
	err := stat(C.PCO_SetFrameRate(hnd(h), &status, C.WORD(mode), &rate, &exp))
	return FrameRate{Status: uint16(status), MilliHertz: uint32(rate), Nanoseconds: uint32(exp)}, err
}

func (sc2) GetPixelRate(h Handle) (uint32, error) {
	var rate C.DWORD
	err := stat(C.PCO_GetPixelRate(hnd(h), &rate))
	return uint32(rate), err
}

func (sc2) SetPixelRate(h Handle, rate uint32) error {
	return stat(C.PCO_SetPixelRate(hnd(h), C.DWORD(rate)))
}

func (sc2) GetTriggerMode(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetTriggerMode(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetTriggerMode(h Handle, mode uint16) error {
	return stat(C.PCO_SetTriggerMode(hnd(h), C.WORD(mode)))
}

func (sc2) GetRecorderSubmode(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetRecorderSubmode(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetRecorderSubmode(h Handle, mode uint16) error {
	return stat(C.PCO_SetRecorderSubmode(hnd(h), C.WORD(mode)))
}

func (sc2) GetStorageMode(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetStorageMode(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetStorageMode(h Handle, mode uint16) error {
	return stat(C.PCO_SetStorageMode(hnd(h), C.WORD(mode)))
}

func (sc2) GetAcquireMode(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetAcquireMode(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetAcquireMode(h Handle, mode uint16) error {
	return stat(C.PCO_SetAcquireMode(hnd(h), C.WORD(mode)))
}

func (sc2) GetTimestampMode(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetTimestampMode(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetTimestampMode(h Handle, mode uint16) error {
	return stat(C.PCO_SetTimestampMode(hnd(h), C.WORD(mode)))
}

func (sc2) GetSensorFormat(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetSensorFormat(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetSensorFormat(h Handle, format uint16) error {
	return stat(C.PCO_SetSensorFormat(hnd(h), C.WORD(format)))
}

func (sc2) GetADCOperation(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetADCOperation(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetADCOperation(h Handle, n uint16) error {
	return stat(C.PCO_SetADCOperation(hnd(h), C.WORD(n)))
}

func (sc2) GetNoiseFilterMode(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetNoiseFilterMode(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetNoiseFilterMode(h Handle, mode uint16) error {
	return stat(C.PCO_SetNoiseFilterMode(hnd(h), C.WORD(mode)))
}

func (sc2) GetDoubleImageMode(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetDoubleImageMode(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetDoubleImageMode(h Handle, mode uint16) error {
	return stat(C.PCO_SetDoubleImageMode(hnd(h), C.WORD(mode)))
}

func (sc2) GetOffsetMode(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetOffsetMode(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetOffsetMode(h Handle, mode uint16) error {
	return stat(C.PCO_SetOffsetMode(hnd(h), C.WORD(mode)))
}

func (sc2) GetCoolingSetpointTemperature(h Handle) (int16, error) {
	var t C.SHORT
	err := stat(C.PCO_GetCoolingSetpointTemperature(hnd(h), &t))
	return int16(t), err
}

func (sc2) SetCoolingSetpointTemperature(h Handle, t int16) error {
	return stat(C.PCO_SetCoolingSetpointTemperature(hnd(h), C.SHORT(t)))
}

func (sc2) GetTemperature(h Handle) (int16, int16, int16, error) {
	var ccd, cam, pow C.SHORT
	err := stat(C.PCO_GetTemperature(hnd(h), &ccd, &cam, &pow))
	return int16(ccd), int16(cam), int16(pow), err
}

func (sc2) GetCameraSetup(h Handle) (uint16, []uint32, error) {
	var typ C.WORD
	var setup [4]C.DWORD
	n := C.WORD(len(setup))
	err := stat(C.PCO_GetCameraSetup(hnd(h), &typ, &setup[0], &n))
	out := make([]uint32, int(n))
	for i := range out {
		out[i] = uint32(setup[i])
	}
	return uint16(typ), out, err
}

func (sc2) SetCameraSetup(h Handle, typ uint16, setup []uint32) error {
	var buf [4]C.DWORD
	for i := 0; i < len(setup) && i < len(buf); i++ {
		buf[i] = C.DWORD(setup[i])
	}
	return stat(C.PCO_SetCameraSetup(hnd(h), C.WORD(typ), &buf[0], C.WORD(len(setup))))
}

func (sc2) SetTimeouts(h Handle, command, image, channel uint32) error {
	buf := [3]C.uint{C.uint(command), C.uint(image), C.uint(channel)}
	return stat(C.PCO_SetTimeouts(hnd(h), unsafe.Pointer(&buf[0]), C.uint(unsafe.Sizeof(buf))))
}

func (sc2) RebootCamera(h Handle) error {
	return stat(C.PCO_RebootCamera(hnd(h)))
}

func (sc2) GetTransferParameter(h Handle) (TransferParam, error) {
	var p C.PCO_SC2_CL_TRANSFER_PARAM
	err := stat(C.PCO_GetTransferParameter(hnd(h), unsafe.Pointer(&p), C.int(unsafe.Sizeof(p))))
	return TransferParam{
		BaudRate:       uint32(p.baudrate),
		ClockFrequency: uint32(p.ClockFrequency),
		CCLines:        uint32(p.CCline),
		DataFormat:     uint32(p.DataFormat),
		Transmit:       uint32(p.Transmit),
	}, err
}

func (sc2) SetTransferParameter(h Handle, tp TransferParam) error {
	var p C.PCO_SC2_CL_TRANSFER_PARAM
	p.baudrate = C.DWORD(tp.BaudRate)
	p.ClockFrequency = C.DWORD(tp.ClockFrequency)
	p.CCline = C.DWORD(tp.CCLines)
	p.DataFormat = C.DWORD(tp.DataFormat)
	p.Transmit = C.DWORD(tp.Transmit)
	return stat(C.PCO_SetTransferParameter(hnd(h), unsafe.Pointer(&p), C.int(unsafe.Sizeof(p))))
}

func (sc2) SetTransferParametersAuto(h Handle) error {
	return stat(C.PCO_SetTransferParametersAuto(hnd(h), nil, 0))
}

func (sc2) CamLinkSetImageParameters(h Handle, width, height uint16) error {
	return stat(C.PCO_CamLinkSetImageParameters(hnd(h), C.WORD(width), C.WORD(height)))
}

func (sc2) ArmCamera(h Handle) error {
	return stat(C.PCO_ArmCamera(hnd(h)))
}

func (sc2) GetCameraHealthStatus(h Handle) (HealthStatus, error) {
	var warn, errs, status C.DWORD
	err := stat(C.PCO_GetCameraHealthStatus(hnd(h), &warn, &errs, &status))
	return HealthStatus{Warnings: uint32(warn), Errors: uint32(errs), Status: uint32(status)}, err
}

func (sc2) GetSizes(h Handle) (Sizes, error) {
	var xa, ya, xm, ym C.WORD
	err := stat(C.PCO_GetSizes(hnd(h), &xa, &ya, &xm, &ym))
	return Sizes{XAct: uint16(xa), YAct: uint16(ya), XMax: uint16(xm), YMax: uint16(ym)}, err
}

func (sc2) GetRecordingState(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetRecordingState(hnd(h), &v))
	return uint16(v), err
}

func (sc2) SetRecordingState(h Handle, state uint16) error {
	return stat(C.PCO_SetRecordingState(hnd(h), C.WORD(state)))
}

func (sc2) GetCameraBusyStatus(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_GetCameraBusyStatus(hnd(h), &v))
	return uint16(v), err
}

func (sc2) ForceTrigger(h Handle) (uint16, error) {
	var v C.WORD
	err := stat(C.PCO_ForceTrigger(hnd(h), &v))
	return uint16(v), err
}

func (sc2) AllocateBuffer(h Handle, number int16, size uint32) (Buffer, error) {
	n := C.SHORT(number)
	var ptr *C.WORD
	var ev C.HANDLE
	err := stat(C.PCO_AllocateBuffer(hnd(h), &n, C.DWORD(size), &ptr, &ev))
	if err != nil {
		return Buffer{}, err
	}
	data := (*[1 << 30]byte)(unsafe.Pointer(ptr))[:size:size]
	return Buffer{Number: int16(n), Data: data, Event: Event(unsafe.Pointer(ev))}, nil
}

func (sc2) FreeBuffer(h Handle, number int16) error {
	return stat(C.PCO_FreeBuffer(hnd(h), C.SHORT(number)))
}

func (sc2) AddBufferEx(h Handle, first, last uint32, number int16, width, height, bitDepth uint16) error {
	return stat(C.PCO_AddBufferEx(hnd(h), C.DWORD(first), C.DWORD(last), C.SHORT(number),
		C.WORD(width), C.WORD(height), C.WORD(bitDepth)))
}

func (sc2) GetImageEx(h Handle, segment uint16, first, last uint32, number int16, width, height, bitDepth uint16) error {
	return stat(C.PCO_GetImageEx(hnd(h), C.WORD(segment), C.DWORD(first), C.DWORD(last), C.SHORT(number),
		C.WORD(width), C.WORD(height), C.WORD(bitDepth)))
}

func (sc2) CancelImages(h Handle) error {
	return stat(C.PCO_CancelImages(hnd(h)))
}

func (sc2) WaitBuffer(ev Event, timeout time.Duration) (bool, error) {
	ret, err := windows.WaitForSingleObject(windows.Handle(ev), uint32(timeout/time.Millisecond))
	switch ret {
	case windows.WAIT_OBJECT_0:
		return true, nil
	case uint32(windows.WAIT_TIMEOUT):
		return false, nil
	default:
		return false, err
	}
}

func (sc2) ErrorText(code uint32) string {
	buf := (*C.char)(C.malloc(errTextLen))
	defer C.free(unsafe.Pointer(buf))
	C.pco_get_error_text(C.DWORD(code), buf, errTextLen)
	return C.GoString(buf)
}
