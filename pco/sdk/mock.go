package sdk

import (
	"encoding/binary"
	"sync"
	"time"
)

var mockErrorText = map[Status]string{
	StatusWrongValue:         "Function-call with wrong parameter",
	StatusInvalidHandle:      "Handle is invalid",
	StatusNoMemory:           "No memory available",
	StatusTimeout:            "Timeout in function",
	StatusBufferSize:         "Buffer size is too small",
	StatusNotInit:            "Not initialized",
	StatusNoCamera:           "No camera connected",
	StatusBufferNotAllocated: "Buffer not allocated",
	StatusNotAvailable:       "Function not available",
}

type mockBuffer struct {
	data   []byte
	queued bool
}

// Mock is an in-memory camera behind the SDK interface.  It records every call
// in order and can be told to fail specific calls, report busy, or never
// signal a queued buffer.
type Mock struct {
	sync.Mutex

	typ   CameraType
	desc  Description
	store Storage

	open       bool
	openFails  int
	reboots    int
	calls      []string
	fail       map[string]Status
	busy       bool
	starve     bool
	recording  bool
	recorded   uint32
	frameCount uint16

	roi        [4]uint16
	binH, binV uint16
	sizes      Sizes
	frameRate  FrameRate
	pixelRate  uint32
	trigger    uint16
	submode    uint16
	storage    uint16
	acquire    uint16
	timestamp  uint16
	format     uint16
	adcs       uint16
	noise      uint16
	double     uint16
	offset     uint16
	coolSet    int16
	ccdTemp    int16
	setupType  uint16
	setup      []uint32
	transfer   TransferParam
	buffers    map[int16]*mockBuffer
}

// NewMock returns a mock camera of the given type with a plausible description for it
func NewMock(camType uint16) *Mock {
	m := &Mock{
		typ:       CameraType{CamType: camType, SerialNumber: 4711, HardwareVersion: 0x00020003, FirmwareVersion: 0x00010007, InterfaceType: 2},
		fail:      make(map[string]Status),
		buffers:   make(map[int16]*mockBuffer),
		binH:      1,
		binV:      1,
		frameRate: FrameRate{MilliHertz: 10000, Nanoseconds: 10000000},
		ccdTemp:   -153,
		setup:     []uint32{EdgeSetupRollingShutter, 0, 0, 0},
		transfer:  TransferParam{BaudRate: 9600, DataFormat: CLDataFormat1x16},
	}
	d := Description{
		MaxHorzResStdDESC: 2048,
		MaxVertResStdDESC: 2048,
		DynResDESC:        16,
		MaxBinHorzDESC:    4,
		MaxBinVertDESC:    4,
		RoiHorStepsDESC:   1,
		RoiVertStepsDESC:  1,
		NumADCsDESC:       2,
		PixelRateDESC:     [4]uint32{10000000, 40000000, 0, 0},
		MinCoolSetDESC:    -30,
		MaxCoolSetDESC:    20,
		GeneralCapsDESC1:  GeneralCaps1NoiseFilter,
		MinExposeDESC:     1000,
		MaxExposeDESC:     10000,
	}
	st := Storage{RAMSize: 1 << 20, PageSize: 4096, ActiveRAMSegment: 1}
	switch {
	case camType&FamilyMask == CameraTypePCOEdge:
		d.MaxHorzResStdDESC, d.MaxVertResStdDESC = 2560, 2160
		d.PixelRateDESC = [4]uint32{95333333, 272250000, 0, 0}
		d.MinCoolSetDESC, d.MaxCoolSetDESC, d.DefaultCoolSetDESC = 5, 5, 5
		st = Storage{ActiveRAMSegment: 1}
	case camType == CameraTypePCODimaxStd:
		d.MaxHorzResStdDESC, d.MaxVertResStdDESC = 2016, 2016
		d.DynResDESC = 12
		d.DoubleImageDESC = 1
	case camType == CameraTypePCO4000:
		d.MaxHorzResStdDESC, d.MaxVertResStdDESC = 4008, 2672
		d.MaxHorzResExtDESC, d.MaxVertResExtDESC = 4032, 2688
		d.DynResDESC = 14
		d.DefaultCoolSetDESC = -10
	}
	m.desc = d
	m.store = st
	m.coolSet = d.DefaultCoolSetDESC
	m.pixelRate = d.PixelRateDESC[0]
	m.roi = [4]uint16{1, 1, d.MaxHorzResStdDESC, d.MaxVertResStdDESC}
	return m
}

// FailOn makes every subsequent call to the named method return s.  s == 0 clears it.
func (m *Mock) FailOn(method string, s Status) {
	m.Lock()
	defer m.Unlock()
	if s == 0 {
		delete(m.fail, method)
		return
	}
	m.fail[method] = s
}

// SetBusy sets the busy status reported by GetCameraBusyStatus
func (m *Mock) SetBusy(b bool) {
	m.Lock()
	defer m.Unlock()
	m.busy = b
}

// SetStarve keeps queued buffers from ever being signaled when true
func (m *Mock) SetStarve(b bool) {
	m.Lock()
	defer m.Unlock()
	m.starve = b
}

// SetRecorded sets the number of images held in the active RAM segment
func (m *Mock) SetRecorded(n uint32) {
	m.Lock()
	defer m.Unlock()
	m.recorded = n
}

// SetCCDTemperature sets the sensor temperature in tenths of a degree
func (m *Mock) SetCCDTemperature(t int16) {
	m.Lock()
	defer m.Unlock()
	m.ccdTemp = t
}

// FailOpens makes the next n OpenCamera calls fail with StatusNoCamera
func (m *Mock) FailOpens(n int) {
	m.Lock()
	defer m.Unlock()
	m.openFails = n
}

// Calls returns a copy of the names of the methods called so far, in order
func (m *Mock) Calls() []string {
	m.Lock()
	defer m.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Count returns how many times the named method was called
func (m *Mock) Count(method string) int {
	m.Lock()
	defer m.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

// ResetCalls forgets the call log
func (m *Mock) ResetCalls() {
	m.Lock()
	defer m.Unlock()
	m.calls = nil
}

// Reboots returns the number of times the camera was rebooted
func (m *Mock) Reboots() int {
	m.Lock()
	defer m.Unlock()
	return m.reboots
}

// Buffers returns the number of allocated buffers
func (m *Mock) Buffers() int {
	m.Lock()
	defer m.Unlock()
	return len(m.buffers)
}

// call logs the call and returns the injected failure, or StatusInvalidHandle if the camera is not open.
// the caller must hold the lock.
func (m *Mock) call(name string) error {
	m.calls = append(m.calls, name)
	if s, ok := m.fail[name]; ok {
		return s
	}
	if !m.open {
		return StatusInvalidHandle
	}
	return nil
}

func (m *Mock) maxRes() (uint16, uint16) {
	w, h := m.desc.MaxHorzResStdDESC, m.desc.MaxVertResStdDESC
	if m.format == SensorFormatExtended {
		if m.desc.MaxHorzResExtDESC > w {
			w = m.desc.MaxHorzResExtDESC
		}
		if m.desc.MaxVertResExtDESC > h {
			h = m.desc.MaxVertResExtDESC
		}
	}
	return w, h
}

func (m *Mock) OpenCamera(index int) (Handle, error) {
	m.Lock()
	defer m.Unlock()
	m.calls = append(m.calls, "OpenCamera")
	if s, ok := m.fail["OpenCamera"]; ok {
		return 0, s
	}
	if m.openFails > 0 {
		m.openFails--
		return 0, StatusNoCamera
	}
	m.open = true
	return Handle(index + 1), nil
}

func (m *Mock) CloseCamera(h Handle) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("CloseCamera"); err != nil {
		return err
	}
	m.open = false
	m.recording = false
	return nil
}

func (m *Mock) GetGeneral(h Handle) (General, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetGeneral"); err != nil {
		return General{}, err
	}
	return General{Type: m.typ}, nil
}

func (m *Mock) GetCameraType(h Handle) (CameraType, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetCameraType"); err != nil {
		return CameraType{}, err
	}
	return m.typ, nil
}

func (m *Mock) GetSensorStruct(h Handle) (Sensor, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetSensorStruct"); err != nil {
		return Sensor{}, err
	}
	return Sensor{
		SensorFormat: m.format,
		ADCOperation: m.adcs,
		PixelRate:    m.pixelRate,
		ROI:          m.roi,
		Binning:      [2]uint16{m.binH, m.binV},
		CoolSet:      m.coolSet,
		OffsetMode:   m.offset,
		NoiseFilter:  m.noise,
		DoubleImage:  m.double,
	}, nil
}

func (m *Mock) GetCameraDescription(h Handle) (Description, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetCameraDescription"); err != nil {
		return Description{}, err
	}
	return m.desc, nil
}

func (m *Mock) GetStorageStruct(h Handle) (Storage, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetStorageStruct"); err != nil {
		return Storage{}, err
	}
	return m.store, nil
}

func (m *Mock) GetROI(h Handle) ([4]uint16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetROI"); err != nil {
		return [4]uint16{}, err
	}
	return m.roi, nil
}

func (m *Mock) SetROI(h Handle, roi [4]uint16) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("SetROI"); err != nil {
		return err
	}
	w, hh := m.maxRes()
	if roi[0] < 1 || roi[1] < 1 || roi[2] < roi[0] || roi[3] < roi[1] ||
		roi[2] > w/m.binH || roi[3] > hh/m.binV {
		return StatusWrongValue
	}
	m.roi = roi
	return nil
}

func (m *Mock) GetBinning(h Handle) (uint16, uint16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetBinning"); err != nil {
		return 0, 0, err
	}
	return m.binH, m.binV, nil
}

func (m *Mock) SetBinning(h Handle, horz, vert uint16) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("SetBinning"); err != nil {
		return err
	}
	if horz == 0 || vert == 0 || horz > m.desc.MaxBinHorzDESC || vert > m.desc.MaxBinVertDESC {
		return StatusWrongValue
	}
	m.binH, m.binV = horz, vert
	return nil
}

func (m *Mock) GetActiveRAMSegment(h Handle) (uint16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetActiveRAMSegment"); err != nil {
		return 0, err
	}
	if m.store.RAMSize == 0 {
		return 0, StatusNotAvailable
	}
	return m.store.ActiveRAMSegment, nil
}

func (m *Mock) ClearRAMSegment(h Handle) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("ClearRAMSegment"); err != nil {
		return err
	}
	if m.store.RAMSize == 0 {
		return StatusNotAvailable
	}
	m.recorded = 0
	return nil
}

func (m *Mock) GetCameraRAMSize(h Handle) (uint32, uint16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetCameraRAMSize"); err != nil {
		return 0, 0, err
	}
	if m.store.RAMSize == 0 {
		return 0, 0, StatusNotAvailable
	}
	return m.store.RAMSize, m.store.PageSize, nil
}

func (m *Mock) GetNumberOfImagesInSegment(h Handle, segment uint16) (uint32, uint32, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetNumberOfImagesInSegment"); err != nil {
		return 0, 0, err
	}
	if m.store.RAMSize == 0 {
		return 0, 0, StatusNotAvailable
	}
	capacity := uint32(0)
	if m.sizes.XAct != 0 {
		capacity = m.store.RAMSize * uint32(m.store.PageSize) / (uint32(m.sizes.XAct) * uint32(m.sizes.YAct) * 2)
	}
	return m.recorded, capacity, nil
}

func (m *Mock) GetFrameRate(h Handle) (FrameRate, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetFrameRate"); err != nil {
		return FrameRate{}, err
	}
	return m.frameRate, nil
}

func (m *Mock) SetFrameRate(h Handle, mode uint16, fr FrameRate) (FrameRate, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("SetFrameRate"); err != nil {
		return FrameRate{}, err
	}
	switch mode {
	case FrameRateModeExposurePrio:
		if fr.Nanoseconds == 0 {
			return FrameRate{}, StatusWrongValue
		}
		m.frameRate.Nanoseconds = fr.Nanoseconds
	case FrameRateModeFrameRatePrio:
		if fr.MilliHertz == 0 {
			return FrameRate{}, StatusWrongValue
		}
		m.frameRate.MilliHertz = fr.MilliHertz
	default:
		m.frameRate.MilliHertz = fr.MilliHertz
		m.frameRate.Nanoseconds = fr.Nanoseconds
	}
	return m.frameRate, nil
}

func (m *Mock) GetPixelRate(h Handle) (uint32, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetPixelRate"); err != nil {
		return 0, err
	}
	return m.pixelRate, nil
}

func (m *Mock) SetPixelRate(h Handle, rate uint32) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("SetPixelRate"); err != nil {
		return err
	}
	m.pixelRate = rate
	return nil
}

// getU16 and setU16 implement the many trivial uint16 mode accessors
func (m *Mock) getU16(name string, p *uint16) (uint16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call(name); err != nil {
		return 0, err
	}
	return *p, nil
}

func (m *Mock) setU16(name string, p *uint16, v uint16) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call(name); err != nil {
		return err
	}
	*p = v
	return nil
}

func (m *Mock) GetTriggerMode(h Handle) (uint16, error) {
	return m.getU16("GetTriggerMode", &m.trigger)
}

func (m *Mock) SetTriggerMode(h Handle, mode uint16) error {
	return m.setU16("SetTriggerMode", &m.trigger, mode)
}

func (m *Mock) GetRecorderSubmode(h Handle) (uint16, error) {
	return m.getU16("GetRecorderSubmode", &m.submode)
}

func (m *Mock) SetRecorderSubmode(h Handle, mode uint16) error {
	return m.setU16("SetRecorderSubmode", &m.submode, mode)
}

func (m *Mock) GetStorageMode(h Handle) (uint16, error) {
	return m.getU16("GetStorageMode", &m.storage)
}

func (m *Mock) SetStorageMode(h Handle, mode uint16) error {
	return m.setU16("SetStorageMode", &m.storage, mode)
}

func (m *Mock) GetAcquireMode(h Handle) (uint16, error) {
	return m.getU16("GetAcquireMode", &m.acquire)
}

func (m *Mock) SetAcquireMode(h Handle, mode uint16) error {
	return m.setU16("SetAcquireMode", &m.acquire, mode)
}

func (m *Mock) GetTimestampMode(h Handle) (uint16, error) {
	return m.getU16("GetTimestampMode", &m.timestamp)
}

func (m *Mock) SetTimestampMode(h Handle, mode uint16) error {
	return m.setU16("SetTimestampMode", &m.timestamp, mode)
}

func (m *Mock) GetSensorFormat(h Handle) (uint16, error) {
	return m.getU16("GetSensorFormat", &m.format)
}

func (m *Mock) SetSensorFormat(h Handle, format uint16) error {
	return m.setU16("SetSensorFormat", &m.format, format)
}

func (m *Mock) GetADCOperation(h Handle) (uint16, error) {
	return m.getU16("GetADCOperation", &m.adcs)
}

func (m *Mock) SetADCOperation(h Handle, n uint16) error {
	return m.setU16("SetADCOperation", &m.adcs, n)
}

func (m *Mock) GetNoiseFilterMode(h Handle) (uint16, error) {
	return m.getU16("GetNoiseFilterMode", &m.noise)
}

func (m *Mock) SetNoiseFilterMode(h Handle, mode uint16) error {
	return m.setU16("SetNoiseFilterMode", &m.noise, mode)
}

func (m *Mock) GetDoubleImageMode(h Handle) (uint16, error) {
	return m.getU16("GetDoubleImageMode", &m.double)
}

func (m *Mock) SetDoubleImageMode(h Handle, mode uint16) error {
	return m.setU16("SetDoubleImageMode", &m.double, mode)
}

func (m *Mock) GetOffsetMode(h Handle) (uint16, error) {
	return m.getU16("GetOffsetMode", &m.offset)
}

func (m *Mock) SetOffsetMode(h Handle, mode uint16) error {
	return m.setU16("SetOffsetMode", &m.offset, mode)
}

func (m *Mock) GetCoolingSetpointTemperature(h Handle) (int16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetCoolingSetpointTemperature"); err != nil {
		return 0, err
	}
	return m.coolSet, nil
}

func (m *Mock) SetCoolingSetpointTemperature(h Handle, t int16) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("SetCoolingSetpointTemperature"); err != nil {
		return err
	}
	m.coolSet = t
	return nil
}

func (m *Mock) GetTemperature(h Handle) (int16, int16, int16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetTemperature"); err != nil {
		return 0, 0, 0, err
	}
	return m.ccdTemp, 31, 35, nil
}

func (m *Mock) GetCameraSetup(h Handle) (uint16, []uint32, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetCameraSetup"); err != nil {
		return 0, nil, err
	}
	out := make([]uint32, len(m.setup))
	copy(out, m.setup)
	return m.setupType, out, nil
}

func (m *Mock) SetCameraSetup(h Handle, typ uint16, setup []uint32) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("SetCameraSetup"); err != nil {
		return err
	}
	m.setupType = typ
	m.setup = append(m.setup[:0], setup...)
	return nil
}

func (m *Mock) SetTimeouts(h Handle, command, image, channel uint32) error {
	m.Lock()
	defer m.Unlock()
	return m.call("SetTimeouts")
}

func (m *Mock) RebootCamera(h Handle) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("RebootCamera"); err != nil {
		return err
	}
	m.reboots++
	m.recording = false
	return nil
}

func (m *Mock) GetTransferParameter(h Handle) (TransferParam, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetTransferParameter"); err != nil {
		return TransferParam{}, err
	}
	return m.transfer, nil
}

func (m *Mock) SetTransferParameter(h Handle, p TransferParam) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("SetTransferParameter"); err != nil {
		return err
	}
	m.transfer = p
	return nil
}

func (m *Mock) SetTransferParametersAuto(h Handle) error {
	m.Lock()
	defer m.Unlock()
	return m.call("SetTransferParametersAuto")
}

func (m *Mock) CamLinkSetImageParameters(h Handle, width, height uint16) error {
	m.Lock()
	defer m.Unlock()
	return m.call("CamLinkSetImageParameters")
}

func (m *Mock) ArmCamera(h Handle) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("ArmCamera"); err != nil {
		return err
	}
	w, hh := m.maxRes()
	m.sizes = Sizes{
		XAct: m.roi[2] - m.roi[0] + 1,
		YAct: m.roi[3] - m.roi[1] + 1,
		XMax: w / m.binH,
		YMax: hh / m.binV,
	}
	return nil
}

func (m *Mock) GetCameraHealthStatus(h Handle) (HealthStatus, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetCameraHealthStatus"); err != nil {
		return HealthStatus{}, err
	}
	return HealthStatus{}, nil
}

func (m *Mock) GetSizes(h Handle) (Sizes, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetSizes"); err != nil {
		return Sizes{}, err
	}
	return m.sizes, nil
}

func (m *Mock) GetRecordingState(h Handle) (uint16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetRecordingState"); err != nil {
		return 0, err
	}
	if m.recording {
		return 1, nil
	}
	return 0, nil
}

func (m *Mock) SetRecordingState(h Handle, state uint16) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("SetRecordingState"); err != nil {
		return err
	}
	m.recording = state != 0
	if !m.recording {
		for _, b := range m.buffers {
			b.queued = false
		}
	}
	return nil
}

func (m *Mock) GetCameraBusyStatus(h Handle) (uint16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetCameraBusyStatus"); err != nil {
		return 0, err
	}
	if m.busy {
		return 1, nil
	}
	return 0, nil
}

func (m *Mock) ForceTrigger(h Handle) (uint16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("ForceTrigger"); err != nil {
		return 0, err
	}
	if !m.recording {
		return 0, nil
	}
	m.recorded++
	return 1, nil
}

func (m *Mock) AllocateBuffer(h Handle, number int16, size uint32) (Buffer, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.call("AllocateBuffer"); err != nil {
		return Buffer{}, err
	}
	if number < 0 {
		for number = 0; number < 16; number++ {
			if _, used := m.buffers[number]; !used {
				break
			}
		}
		if number == 16 {
			return Buffer{}, StatusNoMemory
		}
	}
	b := &mockBuffer{data: make([]byte, size)}
	m.buffers[number] = b
	return Buffer{Number: number, Data: b.data, Event: Event(number + 1)}, nil
}

func (m *Mock) FreeBuffer(h Handle, number int16) error {
	m.Lock()
	defer m.Unlock()
	m.calls = append(m.calls, "FreeBuffer")
	if s, ok := m.fail["FreeBuffer"]; ok {
		return s
	}
	if _, ok := m.buffers[number]; !ok {
		return StatusBufferNotAllocated
	}
	delete(m.buffers, number)
	return nil
}

func (m *Mock) AddBufferEx(h Handle, first, last uint32, number int16, width, height, bitDepth uint16) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("AddBufferEx"); err != nil {
		return err
	}
	b, ok := m.buffers[number]
	if !ok {
		return StatusBufferNotAllocated
	}
	if int(width)*int(height)*2 > len(b.data) {
		return StatusBufferSize
	}
	b.queued = true
	return nil
}

// fill writes the 16-bit value v to every pixel of the first width*height pixels of data
func fill(data []byte, width, height uint16, v uint16) {
	n := int(width) * int(height)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(data[2*i:], v)
	}
}

func (m *Mock) GetImageEx(h Handle, segment uint16, first, last uint32, number int16, width, height, bitDepth uint16) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("GetImageEx"); err != nil {
		return err
	}
	b, ok := m.buffers[number]
	if !ok {
		return StatusBufferNotAllocated
	}
	if first == 0 || first > m.recorded || last < first {
		return StatusWrongValue
	}
	if int(width)*int(height)*2 > len(b.data) {
		return StatusBufferSize
	}
	fill(b.data, width, height, uint16(first))
	return nil
}

func (m *Mock) CancelImages(h Handle) error {
	m.Lock()
	defer m.Unlock()
	if err := m.call("CancelImages"); err != nil {
		return err
	}
	for _, b := range m.buffers {
		b.queued = false
	}
	return nil
}

// WaitBuffer returns immediately.  A queued buffer is filled with the next frame
// counter value and signaled while recording, unless the mock is starved.
func (m *Mock) WaitBuffer(ev Event, timeout time.Duration) (bool, error) {
	m.Lock()
	defer m.Unlock()
	m.calls = append(m.calls, "WaitBuffer")
	b, ok := m.buffers[int16(ev)-1]
	if !ok {
		return false, StatusBufferNotAllocated
	}
	if !m.recording || !b.queued || m.starve {
		return false, nil
	}
	m.frameCount++
	m.recorded++
	fill(b.data, m.sizes.XAct, m.sizes.YAct, m.frameCount)
	b.queued = false
	return true, nil
}

func (m *Mock) ErrorText(code uint32) string {
	if txt, ok := mockErrorText[Status(code)]; ok {
		return txt
	}
	return "Unknown error"
}
