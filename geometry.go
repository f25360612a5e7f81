package st7305

import (
	"errors"
	"fmt"

	"github.com/kylehase/st7305/image1bit"
)

// Model identifies a known ST7305 panel.
type Model uint8

const (
	// Waveshare400x300 is the 4.2" 400×300 landscape panel sold as the
	// Waveshare ESP32-S3-RLCD-4.2 and as the GooDisplay GDTL042T71.
	Waveshare400x300 Model = iota
	// Osptek200x200 is the 1.54" 200×200 portrait panel (Osptek
	// YDP154H008).
	Osptek200x200
	// Custom is a user-defined panel; dimensions, orientation and address
	// window must be supplied in Opts.
	Custom
)

func (m Model) String() string {
	switch m {
	case Waveshare400x300:
		return "Waveshare 400x300"
	case Osptek200x200:
		return "Osptek 200x200"
	case Custom:
		return "Custom"
	default:
		return fmt.Sprintf("Model(%d)", uint8(m))
	}
}

// Geometry describes a resolved panel: pixel dimensions, tile orientation,
// the address-window bytes consumed verbatim by the refresh sequence, and
// the gate-line count byte for the init sequence. Immutable after
// resolution.
type Geometry struct {
	W, H        int
	Orientation image1bit.Orientation

	// Address window (column/row start-end). Panel-specific constants;
	// the 200×200 values are estimated upstream and may need hardware
	// validation.
	ColStart, ColEnd byte
	RowStart, RowEnd byte

	// GateLines is the parameter of the gate-line-setting command.
	GateLines byte
}

// BufferSize returns the framebuffer length in bytes.
func (g Geometry) BufferSize() int {
	return g.W * g.H / 8
}

// resolveGeometry maps panel options to a validated Geometry. Known models
// return hard-coded values; Custom takes everything from opts. Non-zero
// window bytes in opts override the model defaults so that panels with a
// different glass offset can be driven without a code change.
func resolveGeometry(opts *Opts) (Geometry, error) {
	var g Geometry
	switch opts.Model {
	case Waveshare400x300:
		g = Geometry{
			W:           400,
			H:           300,
			Orientation: image1bit.Landscape,
			ColStart:    0x12,
			ColEnd:      0x2A,
			RowStart:    0x00,
			RowEnd:      0xC7,
			GateLines:   0x64,
		}
	case Osptek200x200:
		g = Geometry{
			W:           200,
			H:           200,
			Orientation: image1bit.Portrait,
			ColStart:    0x13,
			ColEnd:      0x25,
			RowStart:    0x00,
			RowEnd:      0x63,
			GateLines:   0x32,
		}
	case Custom:
		if opts.W <= 0 || opts.H <= 0 {
			return Geometry{}, errors.New("st7305: custom model requires width and height")
		}
		if opts.W*opts.H%8 != 0 {
			return Geometry{}, fmt.Errorf("st7305: %dx%d is not a multiple of 8 pixels", opts.W, opts.H)
		}
		g = Geometry{
			W:           opts.W,
			H:           opts.H,
			Orientation: opts.Orientation,
			// TODO: verify the height/3 gate-line derivation against the
			// datasheet; the two known panels use fixed constants that do
			// not follow it.
			GateLines: byte(opts.H / 3),
		}
	default:
		return Geometry{}, fmt.Errorf("st7305: unknown model %d", opts.Model)
	}

	if opts.ColStart != 0 || opts.ColEnd != 0 {
		g.ColStart = opts.ColStart
		g.ColEnd = opts.ColEnd
	}
	if opts.RowStart != 0 || opts.RowEnd != 0 {
		g.RowStart = opts.RowStart
		g.RowEnd = opts.RowEnd
	}
	if opts.GateLines != 0 {
		g.GateLines = opts.GateLines
	}
	return g, nil
}
