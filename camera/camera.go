/*Package camera describes a standard set of interfaces for control of cameras

Recorder holds the acquisition lifecycle a host drives a camera through, while
Configurable exposes the camera's named properties.  A Driver is both, and can
be closed.

*/
package camera

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEndOfStream is returned by Grab when a readout has delivered every recorded frame
	ErrEndOfStream = errors.New("end of camera RAM readout")

	// ErrUnknownProperty is returned when a property name is not in the camera's table
	ErrUnknownProperty = errors.New("unknown property")

	// ErrAlreadyRecording is returned by StartRecording on a recording camera
	ErrAlreadyRecording = errors.New("camera already recording")

	// ErrNotRecording is returned by StopRecording on an idle camera
	ErrNotRecording = errors.New("camera not recording")

	// ErrBusy is returned by Trigger when the camera cannot accept a trigger
	ErrBusy = errors.New("software trigger was prevented because camera is busy")

	// ErrReadOnly is returned when setting a read-only property
	ErrReadOnly = errors.New("property is read-only")

	// ErrNotWritableDuringAcquisition is returned when setting a property that may not change while recording
	ErrNotWritableDuringAcquisition = errors.New("property is not writable during acquisition")

	// ErrWrongType is returned when a property value has the wrong type
	ErrWrongType = errors.New("wrong value type")

	// ErrUnsupported is returned when the camera model lacks the requested feature
	ErrUnsupported = errors.New("not supported by this camera model")

	// ErrInvalid is the root of argument validation failures
	ErrInvalid = errors.New("invalid argument")
)

// AOI describes an area of interest on the camera
type AOI struct {
	// X is the left pixel index.  0-based
	X int `json:"x"`

	// Y is the top pixel index.  0-based
	Y int `json:"y"`

	// Width is the width in pixels
	Width int `json:"width"`

	// Height is the height in pixels
	Height int `json:"height"`
}

// Right is the first column past the AOI
func (a AOI) Right() int {
	return a.X + a.Width
}

// Bottom is the first row past the AOI
func (a AOI) Bottom() int {
	return a.Y + a.Height
}

// Binning encapsulates information about pixel addition on camera
type Binning struct {
	// H is the horizontal binning factor
	H int `json:"h"`

	// V is the vertical binning factor
	V int `json:"v"`
}

// HxV returns the binning as e.g. 2x2
func (b Binning) HxV() string {
	return fmt.Sprintf("%dx%d", b.H, b.V)
}

// TriggerSource is where exposures are started from
type TriggerSource int

const (
	// TriggerAuto free-runs
	TriggerAuto TriggerSource = iota

	// TriggerSoftware waits for Trigger
	TriggerSoftware

	// TriggerExternal waits for a hardware signal
	TriggerExternal
)

var triggerNames = []string{"auto", "software", "external"}

func (t TriggerSource) String() string {
	if t < 0 || int(t) >= len(triggerNames) {
		return fmt.Sprintf("TriggerSource(%d)", int(t))
	}
	return triggerNames[t]
}

// ParseTriggerSource converts a name produced by String back to a TriggerSource
func ParseTriggerSource(s string) (TriggerSource, error) {
	s = strings.ToLower(s)
	for i, n := range triggerNames {
		if n == s {
			return TriggerSource(i), nil
		}
	}
	return 0, fmt.Errorf("trigger source %q is not one of %v", s, triggerNames)
}

// Kind is the value type of a property
type Kind int

const (
	// KindBool properties hold a bool
	KindBool Kind = iota

	// KindInt properties hold an int
	KindInt

	// KindFloat properties hold a float64
	KindFloat

	// KindString properties hold a string
	KindString

	// KindEnum properties hold one of the strings in PropertySpec.Enum
	KindEnum

	// KindIntList properties hold a []int and are read-only
	KindIntList
)

var kindNames = []string{"bool", "int", "float", "string", "enum", "int-list"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PropertySpec describes a named property
type PropertySpec struct {
	Name  string   `json:"name"`
	Blurb string   `json:"blurb"`
	Kind  Kind     `json:"kind"`
	Unit  string   `json:"unit,omitempty"`
	Enum  []string `json:"enum,omitempty"`

	// Writable properties accept SetProperty
	Writable bool `json:"writable"`

	// WritableDuringAcquisition properties accept SetProperty while recording
	WritableDuringAcquisition bool `json:"writableDuringAcquisition"`
}

// Recorder describes the acquisition lifecycle of a camera
type Recorder interface {
	// StartRecording configures the sensor and begins acquisition
	StartRecording() error

	// StopRecording ends acquisition
	StopRecording() error

	// IsRecording is true between StartRecording and StopRecording
	IsRecording() bool

	// StartReadout begins reading frames back from camera memory
	StartReadout() error

	// StopReadout ends a readout
	StopReadout() error

	// IsReadout is true between StartReadout and StopReadout
	IsReadout() bool

	// Trigger fires a software trigger
	Trigger() error

	// Grab fills buf with the next frame.  It returns false with no error if
	// no frame arrived in time, and ErrEndOfStream when a readout is exhausted.
	Grab(buf []byte) (bool, error)

	// Readout fills buf with the frame at a 1-based index in camera memory
	Readout(buf []byte, index uint32) error

	// FrameSize is the width and height of the frames Grab and Readout deliver
	FrameSize() (int, int, error)
}

// Configurable describes a camera with named properties
type Configurable interface {
	// Properties lists the properties the camera exposes
	Properties() []PropertySpec

	// GetProperty reads a property
	GetProperty(name string) (interface{}, error)

	// SetProperty writes a property
	SetProperty(name string, value interface{}) error
}

// Driver is a camera a host can record with, configure, and close
type Driver interface {
	Recorder
	Configurable

	// Close releases the camera.  It is safe to call more than once.
	Close() error
}
