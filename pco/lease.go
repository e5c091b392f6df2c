package pco

import (
	"log"

	"github.com/nasa-jpl/pcolab/pco/sdk"
)

// lease is an image buffer owned by the SDK.  data aliases SDK memory and is
// dropped on release; releasing twice only logs a warning.
type lease struct {
	sdk      sdk.SDK
	handle   sdk.Handle
	number   int16
	event    sdk.Event
	data     []byte
	released bool
}

// allocate asks the SDK for a new buffer of size bytes
func (c *Camera) allocate(size uint32) (*lease, error) {
	b, err := c.sdk.AllocateBuffer(c.handle, -1, size)
	if err != nil {
		return nil, c.check("AllocateBuffer", err)
	}
	return &lease{sdk: c.sdk, handle: c.handle, number: b.Number, event: b.Event, data: b.Data}, nil
}

func (l *lease) release() {
	if l.released {
		log.Printf("pco: buffer %d released twice", l.number)
		return
	}
	l.released = true
	l.data = nil
	if err := l.sdk.FreeBuffer(l.handle, l.number); err != nil {
		log.Printf("pco: freeing buffer %d: %v", l.number, err)
	}
}

func (c *Camera) releaseLeases() {
	for i, l := range c.leases {
		if l != nil {
			l.release()
			c.leases[i] = nil
		}
	}
}
