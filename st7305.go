// Package st7305 controls a ST7305 reflective LCD via SPI.
//
// The ST7305 is a 1-bit monochrome memory-in-pixel controller used by
// reflective panels such as the Waveshare 4.2" 400×300 and the Osptek 1.54"
// 200×200. The image is retained in all power states.
//
// See the examples for how to use this package.
package st7305

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/kylehase/st7305/image1bit"
)

// PowerState is the controller operating mode last requested by the caller.
//
// The panel retains its image in every state; the states trade refresh rate
// for current draw.
type PowerState uint8

const (
	// ActiveHigh refreshes at ~51Hz and draws the most current (~5mA).
	ActiveHigh PowerState = iota
	// ActiveLow refreshes at ~1Hz (~1mA); suited to static content.
	ActiveLow
	// Sleeping halts the controller logic (~10µA). Waking requires a
	// 120ms delay before further commands.
	Sleeping
	// Blanked disables the display output; RAM is retained and recovery
	// is immediate.
	Blanked
)

func (s PowerState) String() string {
	switch s {
	case ActiveHigh:
		return "ActiveHigh"
	case ActiveLow:
		return "ActiveLow"
	case Sleeping:
		return "Sleeping"
	case Blanked:
		return "Blanked"
	default:
		return fmt.Sprintf("PowerState(%d)", uint8(s))
	}
}

// Opts is the configuration for the ST7305 display.
type Opts struct {
	// Model selects a known panel, or Custom.
	Model Model

	// Custom panel dimensions and tile orientation. Ignored for known
	// models.
	W, H        int
	Orientation image1bit.Orientation

	// Address-window bytes. Required for Custom; non-zero values override
	// the defaults of known models (the 200×200 window is estimated
	// upstream).
	ColStart, ColEnd byte
	RowStart, RowEnd byte

	// GateLines overrides the gate-line-setting parameter. Zero keeps the
	// model default (for Custom, height/3).
	GateLines byte

	// Optional hardware reset pin.
	RST gpio.PinIO
}

// Dev is the device handle for the ST7305 display.
type Dev struct {
	// Communication
	c   conn.Conn   // SPI connection (NoCS; CS is driven manually)
	dc  gpio.PinOut // Data/Command pin
	cs  gpio.PinOut // Chip-select pin
	rst gpio.PinIO  // Reset pin (optional)

	// Panel geometry and framebuffer
	geom Geometry
	img  *image1bit.Image

	// Power tracking. state follows explicit power calls only; refresh
	// never mutates it. lastActive is the tier DisplayOn restores after a
	// blank.
	state      PowerState
	lastActive PowerState

	halted bool

	// sleep blocks the caller for mandatory controller delays.
	sleep func(time.Duration)
}

// NewSPI creates a new ST7305 device connected via SPI.
//
// The SPI port is configured for 10MHz, Mode0 (CPOL=0, CPHA=0), 8-bit
// transfers, with chip select disabled on the port: the ST7305 memory write
// needs CS held low across the command byte and the whole frame, so cs must
// be a GPIO pin and is driven by this driver. The dc (Data/Command) pin
// must be an output.
//
// opts can be nil to use defaults (Waveshare 400×300 panel).
func NewSPI(p spi.Port, dc, cs gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == nil || cs == nil {
		return nil, errors.New("st7305: dc and cs pins are required")
	}
	if opts == nil {
		opts = &Opts{Model: Waveshare400x300}
	}

	geom, err := resolveGeometry(opts)
	if err != nil {
		return nil, err
	}
	m, err := image1bit.NewAddressMap(geom.W, geom.H, geom.Orientation)
	if err != nil {
		return nil, err
	}

	// ST7305 supports Mode0 (CPOL=0, CPHA=0). 10MHz per the datasheet
	// maximum for write cycles.
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		return nil, fmt.Errorf("st7305: failed to connect SPI: %w", err)
	}

	d := &Dev{
		c:          c,
		dc:         dc,
		cs:         cs,
		rst:        opts.RST,
		geom:       geom,
		img:        image1bit.New(m),
		state:      ActiveHigh,
		lastActive: ActiveHigh,
		sleep:      time.Sleep,
	}

	if err := d.cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("st7305: failed to deassert CS: %w", err)
	}
	if err := d.reset(); err != nil {
		return nil, err
	}
	if err := d.runSequence(initSequence(geom)); err != nil {
		return nil, err
	}
	return d, nil
}

// reset pulses the hardware reset pin if one was provided. Timing per the
// ST7305 datasheet; only runs during setup.
func (d *Dev) reset() error {
	if d.rst == nil {
		return nil
	}
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("st7305: failed to pull RST high: %w", err)
	}
	d.sleep(50 * time.Millisecond)

	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("st7305: failed to pull RST low: %w", err)
	}
	d.sleep(20 * time.Millisecond)

	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("st7305: failed to pull RST high: %w", err)
	}
	d.sleep(50 * time.Millisecond)
	return nil
}

// runSequence sends a list of commands, honoring per-command settle delays.
func (d *Dev) runSequence(cmds []command) error {
	for _, c := range cmds {
		if err := d.sendCommand(c.op, c.args...); err != nil {
			return err
		}
		if c.delay > 0 {
			d.sleep(c.delay)
		}
	}
	return nil
}

// sendCommand writes one opcode and its parameter bytes as a single burst:
// CS stays asserted from the command byte through the last parameter, with
// DC low for the opcode and high for the parameters.
func (d *Dev) sendCommand(op byte, args ...byte) error {
	if err := d.cs.Out(gpio.Low); err != nil {
		return err
	}
	defer d.cs.Out(gpio.High)

	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{op}, nil); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	return d.c.Tx(args, nil)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Bounds()
}

// Width returns the panel width in pixels.
func (d *Dev) Width() int {
	return d.geom.W
}

// Height returns the panel height in pixels.
func (d *Dev) Height() int {
	return d.geom.H
}

// SetPixel draws or clears a single pixel in the framebuffer. Out-of-range
// coordinates are silently ignored. The panel is not updated until the next
// Refresh.
func (d *Dev) SetPixel(x, y int, on bool) {
	d.img.SetBit(x, y, image1bit.Bit(on))
}

// Fill sets every pixel in the framebuffer at once. The panel is not
// updated until the next Refresh.
func (d *Dev) Fill(on bool) {
	d.img.Fill(image1bit.Bit(on))
}

// Pix returns the packed framebuffer. The slice is owned by the device and
// must not be retained past the next mutation.
func (d *Dev) Pix() []byte {
	return d.img.Pix
}

// Refresh writes the whole framebuffer to the panel.
//
// High-power mode and display-on are re-asserted first; both are single
// idempotent command writes, issued unconditionally so a refresh recovers
// from controller state lost outside the driver's view. Tracked power
// state is not changed: it follows explicit power calls only.
func (d *Dev) Refresh() error {
	if d.halted {
		return errors.New("st7305: halted")
	}
	if err := d.sendCommand(cmdHighPowerMode); err != nil {
		return err
	}
	if err := d.sendCommand(cmdDisplayOn); err != nil {
		return err
	}
	if err := d.sendCommand(cmdColumnAddressSet, d.geom.ColStart, d.geom.ColEnd); err != nil {
		return err
	}
	if err := d.sendCommand(cmdRowAddressSet, d.geom.RowStart, d.geom.RowEnd); err != nil {
		return err
	}
	// The memory write keeps CS asserted across the command byte and
	// every frame byte; sendCommand provides exactly that bracket.
	return d.sendCommand(cmdMemoryWrite, d.img.Pix...)
}

// Write replaces the framebuffer with raw pixel data in the panel's tiled
// format and refreshes the display. The data must be exactly
// width*height/8 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("st7305: halted")
	}
	if len(pixels) != len(d.img.Pix) {
		return 0, errors.New("st7305: invalid buffer size")
	}
	copy(d.img.Pix, pixels)
	if err := d.Refresh(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw rasterizes an image into the framebuffer and refreshes the display.
// The dst rectangle specifies the destination region on the panel.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("st7305: halted")
	}

	dst = dst.Intersect(d.img.Bounds())
	if dst.Empty() {
		return nil
	}

	// Fast path: a full-frame source already in the panel's format.
	if srcImg, ok := src.(*image1bit.Image); ok {
		if dst == d.img.Bounds() && sp == (image.Point{}) && srcImg.Bounds() == d.img.Bounds() {
			copy(d.img.Pix, srcImg.Pix)
			return d.Refresh()
		}
	}

	draw.Draw(d.img, dst, src, sp, draw.Src)
	return d.Refresh()
}

// Sleep halts the controller logic. The image is retained; Wake is required
// before the panel accepts further commands.
func (d *Dev) Sleep() error {
	if d.halted {
		return errors.New("st7305: halted")
	}
	if err := d.sendCommand(cmdSleepIn); err != nil {
		return err
	}
	d.state = Sleeping
	return nil
}

// Wake exits sleep mode. It blocks for the mandatory 120ms the controller
// needs after sleep-out; no command is issued until the delay has elapsed.
// The controller resumes in high-power mode.
func (d *Dev) Wake() error {
	if d.halted {
		return errors.New("st7305: halted")
	}
	if err := d.sendCommand(cmdSleepOut); err != nil {
		return err
	}
	d.sleep(wakeDelay)
	d.state = ActiveHigh
	d.lastActive = ActiveHigh
	return nil
}

// LowPowerMode switches to the ~1Hz refresh tier for static content.
func (d *Dev) LowPowerMode() error {
	if d.halted {
		return errors.New("st7305: halted")
	}
	if err := d.sendCommand(cmdLowPowerMode); err != nil {
		return err
	}
	d.state = ActiveLow
	d.lastActive = ActiveLow
	return nil
}

// HighPowerMode switches to the ~51Hz refresh tier for animated content.
func (d *Dev) HighPowerMode() error {
	if d.halted {
		return errors.New("st7305: halted")
	}
	if err := d.sendCommand(cmdHighPowerMode); err != nil {
		return err
	}
	d.state = ActiveHigh
	d.lastActive = ActiveHigh
	return nil
}

// DisplayOn enables the display output, returning to the power tier that
// was active before DisplayOff.
func (d *Dev) DisplayOn() error {
	if d.halted {
		return errors.New("st7305: halted")
	}
	if err := d.sendCommand(cmdDisplayOn); err != nil {
		return err
	}
	if d.state == Blanked {
		d.state = d.lastActive
	}
	return nil
}

// DisplayOff disables the display output. RAM is retained and DisplayOn
// recovers immediately.
func (d *Dev) DisplayOff() error {
	if d.halted {
		return errors.New("st7305: halted")
	}
	if err := d.sendCommand(cmdDisplayOff); err != nil {
		return err
	}
	d.state = Blanked
	return nil
}

// State returns the power state last requested by the caller.
func (d *Dev) State() PowerState {
	return d.state
}

// Halt puts the controller to sleep and marks the device stopped. After
// calling Halt the device does not respond to further operations until
// re-initialized.
func (d *Dev) Halt() error {
	if err := d.sendCommand(cmdSleepIn); err != nil {
		return err
	}
	d.state = Sleeping
	d.halted = true
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7305.Dev{%dx%d}", d.geom.W, d.geom.H)
}

var _ display.Drawer = &Dev{}
