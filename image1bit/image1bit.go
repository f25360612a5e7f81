// Package image1bit provides the 1-bit tiled image format used by the ST7305
// reflective LCD controller.
//
// The ST7305 packs 8 pixels into each framebuffer byte. The tile geometry
// depends on the panel orientation: landscape panels use 2 columns × 4 rows
// per byte, portrait panels use 4 columns × 2 rows. An AddressMap precomputes
// the (byte offset, bit mask) pair for every pixel so that drawing stays O(1)
// per pixel.
package image1bit

import (
	"image"
	"image/color"
	"image/draw"
)

// Bit is a 1-bit color for a reflective monochrome panel.
//
// On means the pixel is drawn (dark); Off leaves the reflective background
// (white). In the packed framebuffer a drawn pixel is a cleared bit and an
// undrawn pixel is a set bit.
type Bit bool

const (
	On  Bit = true
	Off Bit = false
)

// RGBA implements color.Color.
func (b Bit) RGBA() (uint32, uint32, uint32, uint32) {
	if b {
		return 0, 0, 0, 0xFFFF
	}
	return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// toBit converts any color.Color to Bit using standard luminance weights.
// Colors darker than 50% gray are drawn.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y < 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// Image is a 1-bit image stored in the ST7305's tiled byte layout.
//
// Pix holds exactly AddressMap.BufferSize() bytes and is laid out so it can
// be streamed to the controller's memory-write command unchanged. A new
// Image starts with every byte set to 0xFF (all pixels off).
type Image struct {
	Pix []byte

	m    *AddressMap
	rect image.Rectangle
}

// New creates an Image for the given address map with all pixels off.
func New(m *AddressMap) *Image {
	pix := make([]byte, m.BufferSize())
	for i := range pix {
		pix[i] = 0xFF
	}
	return &Image{
		Pix:  pix,
		m:    m,
		rect: image.Rect(0, 0, m.Width(), m.Height()),
	}
}

// ColorModel implements image.Image.
func (p *Image) ColorModel() color.Model {
	return BitModel
}

// Bounds implements image.Image.
func (p *Image) Bounds() image.Rectangle {
	return p.rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the bit at (x, y). Out-of-bounds coordinates return Off.
func (p *Image) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(p.rect)) {
		return Off
	}
	offset, mask := p.m.Lookup(x, y)
	return p.Pix[offset]&mask == 0
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the bit at (x, y). Out-of-bounds coordinates are silently
// ignored so that host drawing code may overshoot the panel edge during
// transforms without corrupting the buffer.
func (p *Image) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(p.rect)) {
		return
	}
	offset, mask := p.m.Lookup(x, y)
	if b {
		p.Pix[offset] &^= mask
	} else {
		p.Pix[offset] |= mask
	}
}

// Fill sets every pixel at once. A drawn pixel is a cleared bit, so the
// whole buffer becomes 0x00 for On and 0xFF for Off regardless of the tile
// orientation.
func (p *Image) Fill(b Bit) {
	v := byte(0xFF)
	if b {
		v = 0x00
	}
	for i := range p.Pix {
		p.Pix[i] = v
	}
}

var _ draw.Image = &Image{}
