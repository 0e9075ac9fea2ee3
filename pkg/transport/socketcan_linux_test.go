//go:build linux

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestKernelFilters(t *testing.T) {
	got := kernelFilters(ExactFilters([]uint32{0x14080600}))

	want := []unix.CanFilter{{
		Id:   0x14080600 | unix.CAN_EFF_FLAG,
		Mask: 0x1FFFFFFF | unix.CAN_EFF_FLAG | unix.CAN_RTR_FLAG,
	}}
	assert.Equal(t, want, got)
}

func TestOpenSocketCANUnknownInterface(t *testing.T) {
	_, err := OpenSocketCAN("nocan42", nil)
	assert.Error(t, err)
}
