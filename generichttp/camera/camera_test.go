package camera_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/ioutil"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/go-chi/chi"
	"github.com/google/go-cmp/cmp"

	cam "github.com/nasa-jpl/pcolab/camera"
	"github.com/nasa-jpl/pcolab/generichttp/camera"
	"github.com/nasa-jpl/pcolab/imgrec"
	"github.com/nasa-jpl/pcolab/pco"
	"github.com/nasa-jpl/pcolab/pco/sdk"
)

type rig struct {
	t   *testing.T
	mux *chi.Mux
	cam *pco.Camera
	sdk *sdk.Mock
	rec *imgrec.Recorder
}

func newRig(t *testing.T, camType uint16) *rig {
	t.Helper()
	m := sdk.NewMock(camType)
	c, err := pco.Open(m, 0)
	if err != nil {
		t.Fatalf("opening mock camera: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	rec := &imgrec.Recorder{}
	h := camera.NewHTTPCamera(c, rec)
	h.MaxFPS = 500
	h.RebootWait = time.Second
	imgrec.NewHTTPWrapper(rec).Inject(h)
	mux := chi.NewRouter()
	h.RT().Bind(mux)
	return &rig{t: t, mux: mux, cam: c, sdk: m, rec: rec}
}

func (r *rig) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.mux.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

// must performs a request and fails the test on an unexpected status
func (r *rig) must(code int, method, path, body string) *httptest.ResponseRecorder {
	r.t.Helper()
	w := r.do(method, path, body)
	if w.Code != code {
		r.t.Fatalf("%s %s: expected %d, got %d %s", method, path, code, w.Code, w.Body.String())
	}
	return w
}

func value(t *testing.T, w *httptest.ResponseRecorder) interface{} {
	t.Helper()
	v := struct {
		Value interface{} `json:"value"`
	}{}
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v.Value
}

func openFits(t *testing.T, b []byte) fitsio.Image {
	t.Helper()
	f, err := fitsio.Open(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		t.Fatal("expected the primary HDU to be an image")
	}
	return img
}

func TestPropertyRoutes(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCO1300)
	w := r.must(http.StatusOK, http.MethodGet, "/property/sensor-width", "")
	if v := value(t, w); v != 2048. {
		t.Errorf("expected sensor-width 2048, got %v", v)
	}

	r.must(http.StatusOK, http.MethodPost, "/property/exposure-time", `{"value":0.01}`)
	w = r.must(http.StatusOK, http.MethodGet, "/property/exposure-time", "")
	if v := value(t, w).(float64); math.Abs(v-0.01) > 1e-9 {
		t.Errorf("expected exposure-time 0.01, got %v", v)
	}

	for _, tc := range []struct {
		name, method, path, body string
		code                     int
	}{
		{"unknown get", http.MethodGet, "/property/nope", "", http.StatusNotFound},
		{"unknown set", http.MethodPost, "/property/nope", `{"value":1}`, http.StatusNotFound},
		{"read-only", http.MethodPost, "/property/sensor-width", `{"value":1}`, http.StatusBadRequest},
		{"wrong type", http.MethodPost, "/property/exposure-time", `{"value":"fast"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/property/exposure-time", `{"value":`, http.StatusBadRequest},
	} {
		if w := r.do(tc.method, tc.path, tc.body); w.Code != tc.code {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.code, w.Code)
		}
	}
}

func TestListProperties(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	w := r.must(http.StatusOK, http.MethodGet, "/property", "")
	var specs []struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(w.Body).Decode(&specs); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, s := range specs {
		if s.Name == "exposure-time" {
			found = true
			if s.Kind != "float" {
				t.Errorf("expected exposure-time to be a float, got %s", s.Kind)
			}
		}
	}
	if !found {
		t.Error("expected exposure-time in the property list")
	}
}

func TestWriteDuringRecordingConflicts(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)
	if w := r.do(http.MethodPost, "/property/sensor-horizontal-binning", `{"value":2}`); w.Code != http.StatusConflict {
		t.Errorf("expected 409 changing binning while recording, got %d", w.Code)
	}
}

func TestRecordingToggle(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)
	w := r.must(http.StatusOK, http.MethodGet, "/recording", "")
	if !strings.Contains(w.Body.String(), "true") {
		t.Errorf("expected recording to read true, got %s", w.Body.String())
	}
	if w := r.do(http.MethodPost, "/recording", `{"bool":true}`); w.Code != http.StatusConflict {
		t.Errorf("expected 409 starting twice, got %d", w.Code)
	}
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":false}`)
	if w := r.do(http.MethodPost, "/recording", `{"bool":false}`); w.Code != http.StatusConflict {
		t.Errorf("expected 409 stopping an idle camera, got %d", w.Code)
	}
}

func TestTriggerBusy(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCO1300)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)
	r.sdk.SetBusy(true)
	if w := r.do(http.MethodPost, "/trigger", ""); w.Code != http.StatusConflict {
		t.Errorf("expected 409 triggering a busy camera, got %d", w.Code)
	}
	r.sdk.SetBusy(false)
	r.must(http.StatusOK, http.MethodPost, "/trigger", "")
}

func TestImageFormats(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	r.must(http.StatusOK, http.MethodPost, "/aoi", `{"x":0,"y":0,"width":64,"height":32}`)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)

	w := r.must(http.StatusOK, http.MethodGet, "/image?fmt=png", "")
	im, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if sz := im.Bounds().Size(); sz != image.Pt(64, 32) {
		t.Errorf("expected a 64x32 png, got %v", sz)
	}
	g, ok := im.(*image.Gray16)
	if !ok {
		t.Fatalf("expected a 16-bit png, got %T", im)
	}
	if px := g.Gray16At(3, 3).Y; px != 1 {
		t.Errorf("expected the first frame to hold 1, got %d", px)
	}

	w = r.must(http.StatusOK, http.MethodGet, "/image", "")
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected jpeg by default, got %s", ct)
	}
	if _, err := jpeg.Decode(w.Body); err != nil {
		t.Errorf("expected a decodable jpeg: %v", err)
	}

	w = r.must(http.StatusOK, http.MethodGet, "/image?fmt=png&rot=90", "")
	im, err = png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if sz := im.Bounds().Size(); sz != image.Pt(32, 64) {
		t.Errorf("expected a rotated 32x64 png, got %v", sz)
	}

	if w := r.do(http.MethodGet, "/image?rot=45", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a 45 degree rotation, got %d", w.Code)
	}
	if w := r.do(http.MethodGet, "/image?fmt=tiff", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown format, got %d", w.Code)
	}
}

func TestFitsImageIsRecorded(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	dir, err := ioutil.TempDir("", "pcohttp")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	r.must(http.StatusOK, http.MethodPost, "/recorder/root", `{"str":"`+strings.Replace(dir, `\`, `\\`, -1)+`"}`)
	r.must(http.StatusOK, http.MethodPost, "/recorder/enabled", `{"bool":true}`)
	r.must(http.StatusOK, http.MethodPost, "/aoi", `{"x":0,"y":0,"width":16,"height":8}`)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)

	w := r.must(http.StatusOK, http.MethodGet, "/image?fmt=fits", "")
	body := w.Body.Bytes()
	img := openFits(t, body)
	if diff := cmp.Diff([]int{16, 8}, img.Header().Axes()); diff != "" {
		t.Errorf("axes (-want +got):\n%s", diff)
	}
	for _, name := range []string{"DATACRC", "HDRVER", "EXPTIME", "SESSION"} {
		if img.Header().Get(name) == nil {
			t.Errorf("expected a %s card", name)
		}
	}

	last := r.rec.Last()
	if last == "" {
		t.Fatal("expected the recorder to have written the image")
	}
	onDisk, err := ioutil.ReadFile(last)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(onDisk, body) {
		t.Error("expected the recorded file to match the response")
	}
}

func TestImageTimeout(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)
	r.sdk.SetStarve(true)
	r.must(http.StatusNoContent, http.MethodGet, "/image", "")
}

func TestReadoutEndOfStream(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCO1300)
	r.must(http.StatusOK, http.MethodPost, "/aoi", `{"x":0,"y":0,"width":16,"height":16}`)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":false}`)
	r.sdk.SetRecorded(2)

	r.must(http.StatusOK, http.MethodGet, "/image/2?fmt=png", "")
	if w := r.do(http.MethodGet, "/image/0", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for index 0, got %d", w.Code)
	}

	r.must(http.StatusOK, http.MethodPost, "/readout", `{"bool":true}`)
	w := r.must(http.StatusOK, http.MethodGet, "/readout", "")
	if !strings.Contains(w.Body.String(), "true") {
		t.Errorf("expected readout to read true, got %s", w.Body.String())
	}
	r.must(http.StatusOK, http.MethodGet, "/image?fmt=png", "")
	r.must(http.StatusOK, http.MethodGet, "/image?fmt=png", "")
	r.must(http.StatusGone, http.MethodGet, "/image", "")
	r.must(http.StatusOK, http.MethodPost, "/readout", `{"bool":false}`)
}

func TestReadoutUnsupported(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)
	if w := r.do(http.MethodPost, "/readout", `{"bool":true}`); w.Code != http.StatusInternalServerError {
		t.Errorf("expected the SDK failure as a 500, got %d", w.Code)
	}
}

func TestBurst(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	r.must(http.StatusOK, http.MethodPost, "/aoi", `{"x":0,"y":0,"width":8,"height":8}`)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)

	w := r.must(http.StatusOK, http.MethodPost, "/burst", `{"frames":3,"fps":1000}`)
	img := openFits(t, w.Body.Bytes())
	if diff := cmp.Diff([]int{8, 8, 3}, img.Header().Axes()); diff != "" {
		t.Errorf("axes (-want +got):\n%s", diff)
	}
	if c := img.Header().Get("HDRVER"); c == nil || c.Value != pco.HeaderVersion+"+burst" {
		t.Errorf("expected the header version to mark a burst, got %+v", c)
	}
	if c := img.Header().Get("BFPS"); c == nil || fmt.Sprint(c.Value) != "500" {
		t.Errorf("expected the burst rate capped at 500, got %+v", c)
	}

	for _, body := range []string{`{"frames":0,"fps":10}`, `{"frames":2,"fps":0}`, `{"frames":`} {
		if w := r.do(http.MethodPost, "/burst", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestBurstTimeout(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)
	r.sdk.SetStarve(true)
	r.must(http.StatusGatewayTimeout, http.MethodPost, "/burst", `{"frames":2,"fps":100}`)
}

func TestTypedRoutes(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCO1300)

	r.must(http.StatusOK, http.MethodPost, "/binning", `{"h":2,"v":2}`)
	w := r.must(http.StatusOK, http.MethodGet, "/binning", "")
	bin := cam.Binning{}
	if err := json.NewDecoder(w.Body).Decode(&bin); err != nil {
		t.Fatal(err)
	}
	if bin != (cam.Binning{H: 2, V: 2}) {
		t.Errorf("expected 2x2 binning, got %s", bin.HxV())
	}
	if w := r.do(http.MethodPost, "/binning", `{"h":9,"v":9}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for binning beyond the camera's limit, got %d", w.Code)
	}

	r.must(http.StatusOK, http.MethodPost, "/aoi", `{"x":10,"y":20,"width":100,"height":50}`)
	w = r.must(http.StatusOK, http.MethodGet, "/aoi", "")
	aoi := cam.AOI{}
	if err := json.NewDecoder(w.Body).Decode(&aoi); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cam.AOI{X: 10, Y: 20, Width: 100, Height: 50}, aoi); diff != "" {
		t.Errorf("aoi (-want +got):\n%s", diff)
	}

	r.must(http.StatusOK, http.MethodPost, "/exposure-time?exposureTime=5ms", "")
	w = r.must(http.StatusOK, http.MethodGet, "/exposure-time", "")
	f := struct {
		F64 float64 `json:"f64"`
	}{}
	if err := json.NewDecoder(w.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if math.Abs(f.F64-0.005) > 1e-9 {
		t.Errorf("expected 5ms, got %vs", f.F64)
	}
	r.must(http.StatusOK, http.MethodPost, "/exposure-time?exposureTime=0.25", "")
	r.must(http.StatusOK, http.MethodPost, "/exposure-time", `{"f64":0.002}`)
	if w := r.do(http.MethodPost, "/exposure-time?exposureTime=fast", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unparseable duration, got %d", w.Code)
	}

	r.must(http.StatusOK, http.MethodGet, "/temperature", "")
	r.must(http.StatusOK, http.MethodPost, "/temperature-setpoint", `{"f64":-20}`)
	if w := r.do(http.MethodPost, "/temperature-setpoint", `{"f64":-40}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a setpoint below the camera's range, got %d", w.Code)
	}
	w = r.must(http.StatusOK, http.MethodGet, "/property/cooling-point", "")
	if v := value(t, w); v != -20. {
		t.Errorf("expected the setpoint route to set cooling-point, got %v", v)
	}
}

func TestSetpointLockedWhileRecording(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCO1300)
	r.must(http.StatusOK, http.MethodPost, "/recording", `{"bool":true}`)
	n := r.sdk.Count("SetCoolingSetpointTemperature")
	if w := r.do(http.MethodPost, "/temperature-setpoint", `{"f64":-10}`); w.Code != http.StatusConflict {
		t.Errorf("expected 409 changing the setpoint while recording, got %d", w.Code)
	}
	if r.sdk.Count("SetCoolingSetpointTemperature") != n {
		t.Error("expected the camera setpoint to be left alone while recording")
	}
}

func TestSetpointUnsupported(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCOEdge)
	if w := r.do(http.MethodGet, "/temperature-setpoint", ""); w.Code != http.StatusNotImplemented {
		t.Errorf("expected 501 reading the setpoint of a pco.edge, got %d", w.Code)
	}
}

func TestGlobalShutterReopens(t *testing.T) {
	prev := pco.ReopenInterval
	pco.ReopenInterval = time.Millisecond
	defer func() { pco.ReopenInterval = prev }()

	r := newRig(t, sdk.CameraTypePCOEdge)
	r.sdk.FailOpens(1)
	r.must(http.StatusOK, http.MethodPost, "/property/global-shutter", `{"value":true}`)
	if n := r.sdk.Reboots(); n != 1 {
		t.Errorf("expected one reboot, got %d", n)
	}
	w := r.must(http.StatusOK, http.MethodGet, "/property/global-shutter", "")
	if v := value(t, w); v != true {
		t.Errorf("expected global shutter after the reopen, got %v", v)
	}
}

func TestGlobalShutterUnsupported(t *testing.T) {
	r := newRig(t, sdk.CameraTypePCO1300)
	if w := r.do(http.MethodPost, "/property/global-shutter", `{"value":true}`); w.Code != http.StatusNotImplemented {
		t.Errorf("expected 501 on a camera without global shutter, got %d", w.Code)
	}
}
