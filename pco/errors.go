package pco

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/nasa-jpl/pcolab/camera"
	"github.com/nasa-jpl/pcolab/pco/sdk"
)

var (
	// ErrBusy is returned by Trigger when the camera reports it is busy
	ErrBusy = camera.ErrBusy

	// ErrNotWritableDuringAcquisition is returned when setting a property that may not change while recording
	ErrNotWritableDuringAcquisition = camera.ErrNotWritableDuringAcquisition

	// ErrReadOnly is returned when setting a read-only property
	ErrReadOnly = camera.ErrReadOnly

	// ErrWrongType is returned when a property value has the wrong type
	ErrWrongType = camera.ErrWrongType

	// ErrUnsupported is returned when the camera model lacks the requested feature
	ErrUnsupported = camera.ErrUnsupported

	// ErrNoBuffer is generated before a frame is fetched into a buffer that was never allocated
	ErrNoBuffer = errors.New("no image buffers allocated, start recording first")

	// ErrRebooted is returned after a change that reboots the camera, until Reopen succeeds
	ErrRebooted = errors.New("camera rebooted and must be reopened")

	// ErrClosed is returned by any operation on a closed camera
	ErrClosed = errors.New("camera is closed")
)

// SDKError is a failed vendor call
type SDKError struct {
	// Op is the vendor function which failed
	Op string

	// Code is the vendor status code
	Code uint32

	// Text is the vendor's description of Code
	Text string
}

func (e *SDKError) Error() string {
	return fmt.Sprintf("%s: PCO SDK error code 0x%X: %s", e.Op, e.Code, e.Text)
}

// Unwrap exposes the raw status
func (e *SDKError) Unwrap() error {
	return sdk.Status(e.Code)
}

// ConstructionError is the failure of Open.  It is latched; every later
// operation on the camera except Close returns it.
type ConstructionError struct {
	Code uint32
	Text string
	Err  error
}

func (e *ConstructionError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("initialization of the PCO SDK failed: %v", e.Err)
	}
	return fmt.Sprintf("initialization of the PCO SDK failed with error code 0x%X: %s", e.Code, e.Text)
}

// Unwrap returns the error which made the camera fail to open
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

func newConstructionError(err error) *ConstructionError {
	ce := &ConstructionError{Err: err}
	var se *SDKError
	if errors.As(err, &se) {
		ce.Code = se.Code
		ce.Text = se.Text
	}
	return ce
}

// ValidationError is a rejected argument.  It is raised before any vendor call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

// Unwrap makes every ValidationError match camera.ErrInvalid
func (e *ValidationError) Unwrap() error {
	return camera.ErrInvalid
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// check converts a vendor failure into an *SDKError carrying the vendor's text
func (c *Camera) check(op string, err error) error {
	if err == nil {
		return nil
	}
	var st sdk.Status
	if errors.As(err, &st) {
		return &SDKError{Op: op, Code: uint32(st), Text: c.sdk.ErrorText(uint32(st))}
	}
	return errors.Wrap(err, op)
}
