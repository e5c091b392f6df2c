// Package camera provides a generic HTTP interface to a scientific camera
package camera

import (
	"encoding/json"
	"fmt"
	"go/types"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	cam "github.com/nasa-jpl/pcolab/camera"
	"github.com/nasa-jpl/pcolab/generichttp"
	"github.com/nasa-jpl/pcolab/generichttp/thermal"
	"github.com/nasa-jpl/pcolab/imgrec"
	"github.com/nasa-jpl/pcolab/util"
)

// ExposureTimer is a camera with an exposure time
type ExposureTimer interface {
	// SetExposureTime sets the exposure time
	SetExposureTime(time.Duration) error

	// GetExposureTime gets the exposure time
	GetExposureTime() (time.Duration, error)
}

// AOIManipulator describes an interface to a camera which has a configurable area of interest
type AOIManipulator interface {
	// SetAOI allows the AOI to be set
	SetAOI(cam.AOI) error

	// GetAOI retrieves the current AOI
	GetAOI() (cam.AOI, error)
}

// Binner is a camera which can add pixels together on the sensor
type Binner interface {
	// SetBinning sets the binning option of the camera
	SetBinning(cam.Binning) error

	// GetBinning returns the binning option of the camera
	GetBinning() (cam.Binning, error)
}

// Thermometer is a camera which reports its sensor temperature
type Thermometer interface {
	// GetTemperature gets the current focal plane temperature in Celsius
	GetTemperature() (float64, error)
}

// MetadataMaker can produce an array of FITS cards
type MetadataMaker interface {
	// CollectHeaderMetadata produces an array of FITS cards
	CollectHeaderMetadata() []fitsio.Card
}

// Rebooter is a camera which may reboot itself when a property changes and
// must then be reopened
type Rebooter interface {
	Rebooted() bool
	Reopen(maxWait time.Duration) error
}

// HTTPCamera wraps a camera in an HTTP interface.  Requests are served one at
// a time; the camera is never used from two goroutines at once.
type HTTPCamera struct {
	mu sync.Mutex

	// Camera is the wrapped camera
	Camera cam.Driver

	// Recorder, if not nil and enabled, receives a copy of each FITS image served
	Recorder *imgrec.Recorder

	// MaxFPS caps the rate of a burst; zero is no cap
	MaxFPS float64

	// RebootWait is how long to wait for a camera to come back after a reboot
	RebootWait time.Duration

	// RouteTable maps method-paths to handlers
	RouteTable generichttp.RouteTable
}

// NewHTTPCamera returns a new HTTP wrapper around a camera.  Routes for
// exposure time, AOI, binning, temperature and the temperature setpoint are
// added when the camera implements the matching interface.
func NewHTTPCamera(c cam.Driver, rec *imgrec.Recorder) *HTTPCamera {
	h := &HTTPCamera{Camera: c, Recorder: rec, RebootWait: 30 * time.Second}
	rt := generichttp.RouteTable{
		{Method: http.MethodGet, Path: "/property"}:         h.locked(h.ListProperties),
		{Method: http.MethodGet, Path: "/property/{name}"}:  h.locked(h.GetProperty),
		{Method: http.MethodPost, Path: "/property/{name}"}: h.locked(h.SetProperty),

		{Method: http.MethodGet, Path: "/recording"}:  h.locked(generichttp.GetBool(boolGetter(c.IsRecording))),
		{Method: http.MethodPost, Path: "/recording"}: h.locked(h.SetRecording),
		{Method: http.MethodGet, Path: "/readout"}:    h.locked(generichttp.GetBool(boolGetter(c.IsReadout))),
		{Method: http.MethodPost, Path: "/readout"}:   h.locked(h.SetReadout),
		{Method: http.MethodPost, Path: "/trigger"}:   h.locked(h.Trigger),

		{Method: http.MethodGet, Path: "/image"}:         h.locked(h.GetImage),
		{Method: http.MethodGet, Path: "/image/{index}"}: h.locked(h.GetIndexedImage),
		{Method: http.MethodPost, Path: "/burst"}:        h.locked(h.Burst),
	}
	if e, ok := c.(ExposureTimer); ok {
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/exposure-time"}] = h.locked(GetExposureTime(e))
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/exposure-time"}] = h.locked(SetExposureTime(e))
	}
	if a, ok := c.(AOIManipulator); ok {
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/aoi"}] = h.locked(GetAOI(a))
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/aoi"}] = h.locked(SetAOI(a))
	}
	if b, ok := c.(Binner); ok {
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/binning"}] = h.locked(GetBinning(b))
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/binning"}] = h.locked(SetBinning(b))
	}
	if t, ok := c.(Thermometer); ok {
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/temperature"}] = h.locked(generichttp.GetFloat(t.GetTemperature))
	}
	if tc, ok := c.(thermal.Controller); ok {
		sub := generichttp.RouteTable{}
		thermal.HTTPController(tc, sub)
		for mp, fcn := range sub {
			rt[mp] = h.locked(fcn)
		}
	}
	h.RouteTable = rt
	return h
}

// RT satisfies generichttp.HTTPer
func (h *HTTPCamera) RT() generichttp.RouteTable {
	return h.RouteTable
}

// locked serializes access to the camera
func (h *HTTPCamera) locked(fcn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		fcn(w, r)
	}
}

func boolGetter(fcn func() bool) func() (bool, error) {
	return func() (bool, error) { return fcn(), nil }
}

type valueT struct {
	Value interface{} `json:"value"`
}

// ListProperties sends the camera's property descriptors as JSON
func (h *HTTPCamera) ListProperties(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(h.Camera.Properties())
	if err != nil {
		fstr := fmt.Sprintf("error encoding properties to json %q", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
	}
}

// GetProperty sends {"value": v} for the property in the path
func (h *HTTPCamera) GetProperty(w http.ResponseWriter, r *http.Request) {
	v, err := h.Camera.GetProperty(chi.URLParam(r, "name"))
	if err != nil {
		generichttp.Error(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(valueT{v})
	if err != nil {
		fstr := fmt.Sprintf("error encoding property to json %q", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
	}
}

// SetProperty sets the property in the path from a body of {"value": v}.
// If the change reboots the camera, it is reopened before responding.
func (h *HTTPCamera) SetProperty(w http.ResponseWriter, r *http.Request) {
	v := valueT{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	err := dec.Decode(&v)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Camera.SetProperty(chi.URLParam(r, "name"), v.Value)
	if err != nil {
		generichttp.Error(w, err)
		return
	}
	if rb, ok := h.Camera.(Rebooter); ok && rb.Rebooted() {
		log.Printf("camera rebooted, waiting up to %v for it to return", h.RebootWait)
		if err := rb.Reopen(h.RebootWait); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HTTPCamera) toggle(w http.ResponseWriter, r *http.Request, on, off func() error) {
	b := generichttp.BoolT{}
	err := json.NewDecoder(r.Body).Decode(&b)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if b.Bool {
		err = on()
	} else {
		err = off()
	}
	if err != nil {
		generichttp.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SetRecording starts or stops recording from a body of {"bool": b}
func (h *HTTPCamera) SetRecording(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Camera.StartRecording, h.Camera.StopRecording)
}

// SetReadout starts or stops a readout from a body of {"bool": b}
func (h *HTTPCamera) SetReadout(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Camera.StartReadout, h.Camera.StopReadout)
}

// Trigger fires a software trigger, 409 if the camera is busy
func (h *HTTPCamera) Trigger(w http.ResponseWriter, r *http.Request) {
	if err := h.Camera.Trigger(); err != nil {
		generichttp.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HTTPCamera) frameBuffer() ([]byte, int, int, error) {
	width, height, err := h.Camera.FrameSize()
	if err != nil {
		return nil, 0, 0, err
	}
	return make([]byte, width*height*2), width, height, nil
}

// GetImage grabs the next frame and sends it.  The response is 204 if no frame
// arrived in time and 410 when a readout has run out of frames.
//
// the image format may be specified in the fmt query parameter as jpg, png or
// fits; default to jpg.  It may be rotated clockwise by rot degrees.
func (h *HTTPCamera) GetImage(w http.ResponseWriter, r *http.Request) {
	buf, width, height, err := h.frameBuffer()
	if err != nil {
		generichttp.Error(w, err)
		return
	}
	ok, err := h.Camera.Grab(buf)
	if err != nil {
		generichttp.Error(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.sendFrame(w, r, frameToGray16(buf, width, height))
}

// GetIndexedImage reads the frame at the 1-based index in the path out of camera memory and sends it
func (h *HTTPCamera) GetIndexedImage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 32)
	if err != nil || index == 0 {
		http.Error(w, "index must be a positive integer", http.StatusBadRequest)
		return
	}
	buf, width, height, err := h.frameBuffer()
	if err != nil {
		generichttp.Error(w, err)
		return
	}
	if err := h.Camera.Readout(buf, uint32(index)); err != nil {
		generichttp.Error(w, err)
		return
	}
	h.sendFrame(w, r, frameToGray16(buf, width, height))
}

func (h *HTTPCamera) sendFrame(w http.ResponseWriter, r *http.Request, im *image.Gray16) {
	q := r.URL.Query()
	if rot := q.Get("rot"); rot != "" {
		deg, err := strconv.Atoi(rot)
		if err == nil {
			im, err = Rotate(im, deg)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	format := q.Get("fmt")
	if format == "" {
		format = "jpg"
	}
	switch format {
	case "jpg":
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		jpeg.Encode(w, toGray8(im), nil)
	case "png":
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		png.Encode(w, im)
	case "fits":
		// when the recorder is enabled the file is teed to disk
		var w2 io.Writer = w
		if rec := h.Recorder; rec != nil && rec.Active() {
			w2 = io.MultiWriter(w, rec)
			defer rec.Incr()
		}
		hdr := w.Header()
		hdr.Set("Content-Type", "image/fits")
		hdr.Set("Content-Disposition", "attachment; filename=image.fits")
		err := WriteFits(w2, h.cards(), []image.Image{im})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, fmt.Sprintf("format %q is not one of jpg, png, fits", format), http.StatusBadRequest)
	}
}

func (h *HTTPCamera) cards() []fitsio.Card {
	if carder, ok := h.Camera.(MetadataMaker); ok {
		return carder.CollectHeaderMetadata()
	}
	return []fitsio.Card{}
}

// Burst grabs a number of frames at up to a frame rate and returns them as a
// FITS cube.  The body is {"frames": N, "fps": F}; F is capped at MaxFPS.
func (h *HTTPCamera) Burst(w http.ResponseWriter, r *http.Request) {
	t := struct {
		FPS    float64 `json:"fps"`
		Frames int     `json:"frames"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&t)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if t.Frames < 1 || t.FPS <= 0 {
		http.Error(w, "frames and fps must be positive", http.StatusBadRequest)
		return
	}
	fps := t.FPS
	if h.MaxFPS > 0 && fps > h.MaxFPS {
		fps = h.MaxFPS
	}
	buf, width, height, err := h.frameBuffer()
	if err != nil {
		generichttp.Error(w, err)
		return
	}
	limiter := rate.NewLimiter(rate.Limit(fps), 1)
	imgs := make([]image.Image, 0, t.Frames)
	for len(imgs) < t.Frames {
		if err := limiter.Wait(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusRequestTimeout)
			return
		}
		ok, err := h.Camera.Grab(buf)
		if err != nil {
			generichttp.Error(w, errors.Wrapf(err, "burst frame %d", len(imgs)))
			return
		}
		if !ok {
			http.Error(w, fmt.Sprintf("burst frame %d did not arrive", len(imgs)), http.StatusGatewayTimeout)
			return
		}
		imgs = append(imgs, frameToGray16(buf, width, height))
	}

	cards := h.cards()
	if len(cards) > 0 {
		if s, ok := cards[0].Value.(string); ok {
			cards[0].Value = s + "+burst"
		}
	}
	cards = append(cards, fitsio.Card{Name: "BFPS", Value: fps, Comment: "burst frame rate"})
	hdr := w.Header()
	hdr.Set("Content-Type", "image/fits")
	hdr.Set("Content-Disposition", "attachment; filename=burst.fits")
	err = WriteFits(w, cards, imgs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetExposureTime sets the exposure time on a POST request.
// it can be provided either as a query parameter exposureTime, formatted in a
// way that is parseable by golang/time.ParseDuration, or a json payload with
// key f64, holding the exposure time in seconds.
// if the query parameter has no unit, seconds are assumed.
func SetExposureTime(e ExposureTimer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		texp := r.URL.Query().Get("exposureTime")
		var d time.Duration
		var err error
		if texp == "" {
			f := generichttp.FloatT{}
			err = json.NewDecoder(r.Body).Decode(&f)
			d = time.Duration(f.F64*1e9) * time.Nanosecond
		} else {
			if util.AllElementsNumbers(texp) {
				texp = texp + "s"
			}
			d, err = time.ParseDuration(texp)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = e.SetExposureTime(d)
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetExposureTime gets the exposure time in seconds on a GET request
func GetExposureTime(e ExposureTimer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := e.GetExposureTime()
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		hp := generichttp.HumanPayload{T: types.Float64, Float: d.Seconds()}
		hp.EncodeAndRespond(w, r)
	}
}

// SetAOI sets the AOI from a JSON body of {"x", "y", "width", "height"}
func SetAOI(a AOIManipulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aoi := cam.AOI{}
		err := json.NewDecoder(r.Body).Decode(&aoi)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = a.SetAOI(aoi)
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetAOI sends the AOI as JSON
func GetAOI(a AOIManipulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aoi, err := a.GetAOI()
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(aoi)
		if err != nil {
			fstr := fmt.Sprintf("error encoding AOI to json %q", err)
			log.Println(fstr)
			http.Error(w, fstr, http.StatusInternalServerError)
		}
	}
}

// SetBinning sets the binning from a JSON body of {"h", "v"}
func SetBinning(b Binner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bin := cam.Binning{}
		err := json.NewDecoder(r.Body).Decode(&bin)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = b.SetBinning(bin)
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetBinning sends the binning as JSON
func GetBinning(b Binner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bin, err := b.GetBinning()
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(bin)
		if err != nil {
			fstr := fmt.Sprintf("error encoding binning to json %q", err)
			log.Println(fstr)
			http.Error(w, fstr, http.StatusInternalServerError)
		}
	}
}
