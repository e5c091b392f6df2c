package pco

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/nasa-jpl/pcolab/camera"
	"github.com/nasa-jpl/pcolab/pco/sdk"
)

func frameFor(t *testing.T, c *Camera) []byte {
	t.Helper()
	w, h, err := c.FrameSize()
	if err != nil {
		t.Fatal(err)
	}
	return make([]byte, w*h*2)
}

func TestROIAtSensorEdge(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCO1300)
	defer c.Close()
	if err := c.SetAOI(camera.AOI{X: 0, Y: 0, Width: 2048, Height: 2048}); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatalf("expected a full-sensor ROI to be accepted, got %v", err)
	}
	if err := c.StopRecording(); err != nil {
		t.Fatal(err)
	}

	setROI, arm := m.Count("SetROI"), m.Count("ArmCamera")
	if err := c.SetAOI(camera.AOI{X: 1, Y: 0, Width: 2048, Height: 2048}); err != nil {
		t.Fatal(err)
	}
	err := c.StartRecording()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected an ROI one pixel past the sensor to be rejected, got %v", err)
	}
	if m.Count("SetROI") != setROI || m.Count("ArmCamera") != arm {
		t.Error("expected a rejected ROI to make no SetROI or ArmCamera calls")
	}
	if c.IsRecording() {
		t.Error("expected the camera not to be recording after a rejected ROI")
	}
}

func TestROIIsCheckedAgainstBinnedSensor(t *testing.T) {
	c, _ := openMock(t, sdk.CameraTypePCO1300)
	defer c.Close()
	if err := c.SetBinning(camera.Binning{H: 2, V: 2}); err != nil {
		t.Fatal(err)
	}
	if err := c.SetAOI(camera.AOI{Width: 1025, Height: 1024}); err != nil {
		t.Fatal(err)
	}
	var ve *ValidationError
	if err := c.StartRecording(); !errors.As(err, &ve) {
		t.Errorf("expected 1025 px to exceed a 2x binned 2048 px sensor, got %v", err)
	}
	if err := c.SetAOI(camera.AOI{Width: 1024, Height: 1024}); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); err != nil {
		t.Errorf("expected 1024x1024 to fit a 2x binned sensor, got %v", err)
	}
}

func TestROIIsOneBasedInclusive(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCO1300)
	defer c.Close()
	if err := c.SetAOI(camera.AOI{X: 10, Y: 20, Width: 100, Height: 50}); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	roi, err := m.GetROI(c.handle)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([4]uint16{11, 21, 110, 70}, roi); diff != "" {
		t.Errorf("ROI sent to the camera (-want +got):\n%s", diff)
	}
	w, h, _ := c.FrameSize()
	if w != 100 || h != 50 {
		t.Errorf("expected 100x50 frames, got %dx%d", w, h)
	}
}

func TestStartRecordingSequence(t *testing.T) {
	tests := []struct {
		name     string
		typ      uint16
		expected []string
	}{
		{
			name: "camRAM",
			typ:  sdk.CameraTypePCO1300,
			expected: []string{
				"ClearRAMSegment",
				"SetBinning", "SetROI", "ArmCamera",
				"GetCameraHealthStatus", "GetSizes",
				"AllocateBuffer", "AllocateBuffer",
				"CamLinkSetImageParameters",
				"SetRecordingState", "AddBufferEx",
			},
		},
		{
			name: "edge",
			typ:  sdk.CameraTypePCOEdge,
			expected: []string{
				"SetBinning", "SetROI", "ArmCamera",
				"GetCameraHealthStatus", "GetSizes",
				"AllocateBuffer", "AllocateBuffer",
				"CamLinkSetImageParameters",
				"SetTransferParametersAuto", "ArmCamera",
				"AddBufferEx", "SetRecordingState",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := openMock(t, tt.typ)
			defer c.Close()
			m.ResetCalls()
			if err := c.StartRecording(); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.expected, m.Calls()); diff != "" {
				t.Errorf("vendor calls (-want +got):\n%s", diff)
			}
			if c.Session() == "" {
				t.Error("expected a session id after starting to record")
			}
		})
	}
}

func TestStartRecordingStopsAtFirstFailure(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCO1300)
	defer c.Close()
	m.FailOn("ArmCamera", sdk.StatusWrongValue)
	m.ResetCalls()
	err := c.StartRecording()
	var se *SDKError
	if !errors.As(err, &se) || se.Op != "ArmCamera" {
		t.Fatalf("expected an ArmCamera SDKError, got %v", err)
	}
	if se.Text != "Function-call with wrong parameter" {
		t.Errorf("expected the vendor text in the error, got %q", se.Text)
	}
	if diff := cmp.Diff([]string{"ClearRAMSegment", "SetBinning", "SetROI", "ArmCamera"}, m.Calls()); diff != "" {
		t.Errorf("vendor calls (-want +got):\n%s", diff)
	}
	if c.IsRecording() {
		t.Error("expected a failed start to leave the camera idle")
	}
}

func TestStartRecordingTwice(t *testing.T) {
	c, _ := openMock(t, sdk.CameraTypePCOEdge)
	defer c.Close()
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); err != camera.ErrAlreadyRecording {
		t.Errorf("expected ErrAlreadyRecording, got %v", err)
	}
}

func TestRestartRecordingReplacesBuffers(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCOEdge)
	defer c.Close()
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	first := c.Session()
	if err := c.StopRecording(); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if m.Buffers() != 2 {
		t.Errorf("expected the old buffers to be freed on restart, %d allocated", m.Buffers())
	}
	if c.Session() == first {
		t.Error("expected a new session id for each recording")
	}
}

func TestStopRecordingOrder(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCOEdge)
	defer c.Close()
	if err := c.StopRecording(); err != camera.ErrNotRecording {
		t.Errorf("expected ErrNotRecording from an idle camera, got %v", err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	m.ResetCalls()
	if err := c.StopRecording(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"CancelImages", "SetRecordingState"}, m.Calls()); diff != "" {
		t.Errorf("vendor calls (-want +got):\n%s", diff)
	}
	if c.IsRecording() {
		t.Error("expected the camera to be idle")
	}
}

func TestLiveGrab(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCOEdge)
	defer c.Close()
	if err := c.SetAOI(camera.AOI{Width: 64, Height: 32}); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	buf := frameFor(t, c)
	for i := uint16(1); i <= 3; i++ {
		ok, err := c.Grab(buf)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("expected frame %d to arrive", i)
		}
		if px := binary.LittleEndian.Uint16(buf[len(buf)-2:]); px != i {
			t.Errorf("expected frame %d to be filled with %d, got %d", i, i, px)
		}
	}
	if n := m.Count("AddBufferEx"); n != 4 {
		t.Errorf("expected the buffer to be queued at start and after each frame, queued %d times", n)
	}
}

func TestLiveGrabTimeout(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCOEdge)
	defer c.Close()
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	m.SetStarve(true)
	ok, err := c.Grab(frameFor(t, c))
	if err != nil {
		t.Fatalf("expected a timeout to be reported without error, got %v", err)
	}
	if ok {
		t.Error("expected no frame from a starved camera")
	}
	if n := m.Count("AddBufferEx"); n != 1 {
		t.Errorf("expected no re-queue after a timeout, queued %d times", n)
	}
}

func TestGrabPreconditions(t *testing.T) {
	c, _ := openMock(t, sdk.CameraTypePCOEdge)
	defer c.Close()
	if _, err := c.Grab(make([]byte, 16)); err != ErrNoBuffer {
		t.Errorf("expected ErrNoBuffer before recording, got %v", err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	var ve *ValidationError
	if _, err := c.Grab(make([]byte, 16)); !errors.As(err, &ve) {
		t.Errorf("expected a ValidationError for a short buffer, got %v", err)
	}
	if err := c.StopRecording(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Grab(frameFor(t, c)); err != camera.ErrNotRecording {
		t.Errorf("expected ErrNotRecording from a live grab on an idle camera, got %v", err)
	}
}

func TestReadoutEndOfStream(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCO1300)
	defer c.Close()
	if err := c.SetAOI(camera.AOI{Width: 16, Height: 16}); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if err := c.StopRecording(); err != nil {
		t.Fatal(err)
	}
	m.SetRecorded(3)
	if err := c.StartReadout(); err != nil {
		t.Fatal(err)
	}
	buf := frameFor(t, c)
	for i := uint16(1); i <= 3; i++ {
		ok, err := c.Grab(buf)
		if err != nil || !ok {
			t.Fatalf("expected frame %d, got %v %v", i, ok, err)
		}
		if px := binary.LittleEndian.Uint16(buf); px != i {
			t.Errorf("expected frame %d from camera RAM, got %d", i, px)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := c.Grab(buf); err != camera.ErrEndOfStream {
			t.Errorf("expected ErrEndOfStream after the last frame, got %v", err)
		}
	}
	if n := m.Count("GetImageEx"); n != 3 {
		t.Errorf("expected one transfer per recorded frame, got %d", n)
	}
	if err := c.StopReadout(); err != nil {
		t.Fatal(err)
	}
	if c.IsReadout() {
		t.Error("expected the readout to be stopped")
	}
}

func TestReadoutByIndex(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCO1300)
	defer c.Close()
	if err := c.SetAOI(camera.AOI{Width: 8, Height: 8}); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	m.SetRecorded(5)
	buf := frameFor(t, c)
	if err := c.Readout(buf, 4); err != nil {
		t.Fatal(err)
	}
	if px := binary.LittleEndian.Uint16(buf); px != 4 {
		t.Errorf("expected frame 4, got %d", px)
	}
	var se *SDKError
	if err := c.Readout(buf, 6); !errors.As(err, &se) {
		t.Errorf("expected an SDKError reading past the recorded frames, got %v", err)
	}
}

func TestReadoutWithoutCamRAM(t *testing.T) {
	c, _ := openMock(t, sdk.CameraTypePCOEdge)
	defer c.Close()
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	var se *SDKError
	if err := c.StartReadout(); !errors.As(err, &se) || se.Code != uint32(sdk.StatusNotAvailable) {
		t.Errorf("expected a not-available SDKError from a pco.edge, got %v", err)
	}
	v, err := c.GetProperty("has-camram-recording")
	if err != nil {
		t.Fatal(err)
	}
	if v != false {
		t.Error("expected a pco.edge to have no camera RAM")
	}
}

func TestTrigger(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCO1300)
	defer c.Close()
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	m.SetBusy(true)
	if err := c.Trigger(); err != ErrBusy {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if n := m.Count("ForceTrigger"); n != 0 {
		t.Errorf("expected no trigger while busy, got %d", n)
	}
	m.SetBusy(false)
	if err := c.Trigger(); err != nil {
		t.Fatal(err)
	}
	if n := m.Count("ForceTrigger"); n != 1 {
		t.Errorf("expected one trigger, got %d", n)
	}
}

func TestFailedQueueStopsRecording(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCO1300)
	defer c.Close()
	m.FailOn("AddBufferEx", sdk.StatusWrongValue)
	err := c.StartRecording()
	var se *SDKError
	if !errors.As(err, &se) || se.Op != "AddBufferEx" {
		t.Fatalf("expected an AddBufferEx SDKError, got %v", err)
	}
	calls := m.Calls()
	if diff := cmp.Diff([]string{"CancelImages", "SetRecordingState"}, calls[len(calls)-2:]); diff != "" {
		t.Errorf("calls after the failed queue (-want +got):\n%s", diff)
	}
	if s, _ := m.GetRecordingState(c.handle); s != 0 {
		t.Error("expected the camera to stop recording after a failed start")
	}
	if c.IsRecording() {
		t.Error("expected a failed start to leave the camera idle")
	}
	if err := c.StopRecording(); err != camera.ErrNotRecording {
		t.Errorf("expected ErrNotRecording, got %v", err)
	}
}

func TestCloseStopsAFailedStart(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCO1300)
	m.FailOn("AddBufferEx", sdk.StatusWrongValue)
	m.FailOn("CancelImages", sdk.StatusTimeout)
	if err := c.StartRecording(); err == nil {
		t.Fatal("expected StartRecording to fail")
	}
	if s, _ := m.GetRecordingState(c.handle); s != 1 {
		t.Fatal("expected the camera to still be recording when the cancel failed")
	}
	m.FailOn("CancelImages", 0)
	m.ResetCalls()
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	calls := m.Calls()
	if len(calls) < 2 {
		t.Fatalf("expected Close to stop the camera, got %v", calls)
	}
	if diff := cmp.Diff([]string{"CancelImages", "SetRecordingState"}, calls[:2]); diff != "" {
		t.Errorf("first calls of Close (-want +got):\n%s", diff)
	}
}

func TestLiveGrabRequeueFailure(t *testing.T) {
	c, m := openMock(t, sdk.CameraTypePCOEdge)
	defer c.Close()
	if err := c.SetAOI(camera.AOI{Width: 64, Height: 32}); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	m.FailOn("AddBufferEx", sdk.StatusWrongValue)
	buf := frameFor(t, c)
	ok, err := c.Grab(buf)
	var se *SDKError
	if !errors.As(err, &se) || se.Op != "AddBufferEx" {
		t.Fatalf("expected an AddBufferEx SDKError, got %v", err)
	}
	if !ok {
		t.Error("expected the frame to be reported as delivered")
	}
	if px := binary.LittleEndian.Uint16(buf[len(buf)-2:]); px != 1 {
		t.Errorf("expected the first frame in buf, got pixel %d", px)
	}
}
