// +build !windows !cgo

package sdk

// Native returns ErrUnsupportedPlatform; the vendor library only exists for windows
func Native() (SDK, error) {
	return nil, ErrUnsupportedPlatform
}
