package camera_test

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"

	cam "github.com/nasa-jpl/pcolab/camera"
	"github.com/nasa-jpl/pcolab/generichttp"
	"github.com/nasa-jpl/pcolab/generichttp/camera"
)

func TestStatusCode(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code int
	}{
		{cam.ErrEndOfStream, http.StatusGone},
		{cam.ErrUnknownProperty, http.StatusNotFound},
		{errors.Wrap(cam.ErrBusy, "trigger"), http.StatusConflict},
		{cam.ErrNotWritableDuringAcquisition, http.StatusConflict},
		{cam.ErrReadOnly, http.StatusBadRequest},
		{errors.Wrapf(cam.ErrInvalid, "roi-x %d", 9000), http.StatusBadRequest},
		{cam.ErrUnsupported, http.StatusNotImplemented},
		{errors.New("boom"), 0},
	} {
		if code := camera.StatusCode(tc.err); code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
	}
	if code := generichttp.StatusCode(cam.ErrUnsupported); code != http.StatusNotImplemented {
		t.Errorf("expected the camera statuses to be registered with generichttp, got %d", code)
	}
	if code := generichttp.StatusCode(errors.New("boom")); code != http.StatusInternalServerError {
		t.Errorf("expected 500 for an unknown error, got %d", code)
	}
}
