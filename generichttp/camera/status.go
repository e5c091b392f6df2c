package camera

import (
	"net/http"

	"github.com/pkg/errors"

	cam "github.com/nasa-jpl/pcolab/camera"
	"github.com/nasa-jpl/pcolab/generichttp"
)

func init() {
	generichttp.RegisterStatus(StatusCode)
}

// StatusCode maps a camera error to an HTTP status, zero if err is not one
func StatusCode(err error) int {
	switch {
	case errors.Is(err, cam.ErrEndOfStream):
		return http.StatusGone
	case errors.Is(err, cam.ErrUnknownProperty):
		return http.StatusNotFound
	case errors.Is(err, cam.ErrBusy),
		errors.Is(err, cam.ErrAlreadyRecording),
		errors.Is(err, cam.ErrNotRecording),
		errors.Is(err, cam.ErrNotWritableDuringAcquisition):
		return http.StatusConflict
	case errors.Is(err, cam.ErrInvalid),
		errors.Is(err, cam.ErrWrongType),
		errors.Is(err, cam.ErrReadOnly):
		return http.StatusBadRequest
	case errors.Is(err, cam.ErrUnsupported):
		return http.StatusNotImplemented
	}
	return 0
}
