package image1bit

import (
	"errors"
	"fmt"
)

// Orientation selects the tile geometry used by the panel.
type Orientation uint8

const (
	// Landscape packs 2 columns × 4 rows of pixels into each byte. Bytes
	// run column-major over vertical tile blocks and the vertical axis is
	// stored bottom-up.
	Landscape Orientation = iota
	// Portrait packs 4 columns × 2 rows of pixels into each byte. Bytes
	// run row-major over horizontal tile blocks.
	Portrait
)

func (o Orientation) String() string {
	switch o {
	case Landscape:
		return "Landscape"
	case Portrait:
		return "Portrait"
	default:
		return fmt.Sprintf("Orientation(%d)", uint8(o))
	}
}

// AddressMap maps pixel coordinates to positions in the tiled framebuffer.
//
// The map is immutable once built. For every pixel it stores the byte
// offset and bit mask of that pixel's slot, forming a bijection between
// pixels and (offset, bit) pairs: every buffer byte is addressed by exactly
// 8 pixels and every bit of every byte by exactly one.
type AddressMap struct {
	w, h   int
	orient Orientation
	offset []uint16
	mask   []byte
}

// NewAddressMap builds the lookup tables for a w×h panel in the given
// orientation.
//
// Landscape panels need the width to be a multiple of 2 and the height a
// multiple of 4; portrait panels need the width to be a multiple of 4 and
// the height a multiple of 2.
func NewAddressMap(w, h int, o Orientation) (*AddressMap, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New("image1bit: width and height must be positive")
	}
	if w*h%8 != 0 {
		return nil, fmt.Errorf("image1bit: %dx%d is not a whole number of 8-pixel tiles", w, h)
	}
	switch o {
	case Landscape:
		if w%2 != 0 || h%4 != 0 {
			return nil, fmt.Errorf("image1bit: landscape requires width%%2==0 and height%%4==0, got %dx%d", w, h)
		}
	case Portrait:
		if w%4 != 0 || h%2 != 0 {
			return nil, fmt.Errorf("image1bit: portrait requires width%%4==0 and height%%2==0, got %dx%d", w, h)
		}
	default:
		return nil, fmt.Errorf("image1bit: unknown orientation %d", o)
	}
	if w*h/8 > 0x10000 {
		return nil, fmt.Errorf("image1bit: %dx%d exceeds the 64KiB addressable buffer", w, h)
	}

	m := &AddressMap{
		w:      w,
		h:      h,
		orient: o,
		offset: make([]uint16, w*h),
		mask:   make([]byte, w*h),
	}
	if o == Landscape {
		m.buildLandscape()
	} else {
		m.buildPortrait()
	}
	return m, nil
}

// buildLandscape fills the tables for the 2×4 tile layout.
//
// The controller scans landscape panels bottom-to-top, so the vertical axis
// is inverted before tiling. Within a tile, bit 7 is (row 0, col 0) and
// bit 0 is (row 3, col 1).
func (m *AddressMap) buildLandscape() {
	h4 := m.h >> 2
	for y := 0; y < m.h; y++ {
		invY := m.h - 1 - y
		blockY := invY >> 2
		localY := invY & 3
		for x := 0; x < m.w; x++ {
			blockX := x >> 1
			localX := x & 1

			idx := x*m.h + y
			m.offset[idx] = uint16(blockX*h4 + blockY)
			m.mask[idx] = 1 << (7 - ((localY << 1) | localX))
		}
	}
}

// buildPortrait fills the tables for the 4×2 tile layout. No axis
// inversion; bit 7 is (row 0, col 0) and bit 0 is (row 1, col 3).
func (m *AddressMap) buildPortrait() {
	w4 := m.w >> 2
	for y := 0; y < m.h; y++ {
		byteY := y >> 1
		localY := y & 1
		for x := 0; x < m.w; x++ {
			byteX := x >> 2
			localX := x & 3

			idx := x*m.h + y
			m.offset[idx] = uint16(byteY*w4 + byteX)
			m.mask[idx] = 1 << (7 - (localY*4 + localX))
		}
	}
}

// Lookup returns the byte offset and bit mask for the pixel at (x, y).
// Coordinates must be in range; Image performs the bounds check.
func (m *AddressMap) Lookup(x, y int) (int, byte) {
	idx := x*m.h + y
	return int(m.offset[idx]), m.mask[idx]
}

// Width returns the panel width in pixels.
func (m *AddressMap) Width() int {
	return m.w
}

// Height returns the panel height in pixels.
func (m *AddressMap) Height() int {
	return m.h
}

// Orientation returns the tile orientation the map was built for.
func (m *AddressMap) Orientation() Orientation {
	return m.orient
}

// BufferSize returns the framebuffer length in bytes.
func (m *AddressMap) BufferSize() int {
	return m.w * m.h / 8
}
