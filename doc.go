// Package st7305 controls a ST7305 reflective LCD via SPI.
//
// The ST7305 is a 1-bit monochrome memory-in-pixel controller. Because the
// panel is reflective, the image is retained in every power state and the
// display draws almost no current between refreshes.
//
// # Supported Panels
//
//   - Waveshare ESP32-S3-RLCD-4.2 / GooDisplay GDTL042T71 (400×300,
//     landscape 2×4 tiles)
//   - Osptek YDP154H008 (200×200, portrait 4×2 tiles)
//   - Custom panels via Opts (dimensions, orientation, address window)
//
// # Hardware Connection
//
// Connect the display via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → GPIO (any available pin; driven by this driver)
//	RST         → Optional: GPIO for hardware reset
//
// CS must be a GPIO pin rather than the SPI controller's hardware chip
// select: the ST7305 memory-write command requires CS to stay asserted
// across the command byte and the entire frame, which the driver handles by
// toggling the pin itself.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"github.com/kylehase/st7305"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Open SPI bus
//		spiBus, _ := spireg.Open("")
//
//		// Get control GPIO pins
//		dcPin := gpioreg.ByName("GPIO25")
//		csPin := gpioreg.ByName("GPIO8")
//
//		// Create device
//		dev, _ := st7305.NewSPI(spiBus, dcPin, csPin, &st7305.Opts{
//			Model: st7305.Waveshare400x300,
//		})
//		defer dev.Halt()
//
//		// Draw into the framebuffer, then push it to the panel.
//		dev.Fill(false)
//		for x := 0; x < 400; x++ {
//			dev.SetPixel(x, 150, true)
//		}
//		dev.Refresh()
//	}
//
// SetPixel silently ignores out-of-range coordinates, so host drawing code
// that overshoots the panel edge during rotation or clipping does not
// corrupt the buffer.
//
// # Power Management
//
// The controller offers four modes, all of which retain the image:
//
//	High power: ~51Hz refresh, ~5mA  (animations)
//	Low power:  ~1Hz refresh,  ~1mA  (static content)
//	Sleep:      logic halted, ~10µA  (long idle periods)
//	Blanked:    output off, RAM retained (fastest recovery)
//
//	dev.LowPowerMode() // static dashboard
//	dev.Sleep()        // overnight
//	dev.Wake()         // blocks 120ms per datasheet
//
// Wake always returns the controller to high-power mode. No transition is
// rejected: the driver trusts caller intent and issues the single
// corresponding command.
//
// # Custom Panels
//
// Panels not listed above can be driven by supplying the geometry directly:
//
//	dev, err := st7305.NewSPI(spiBus, dcPin, csPin, &st7305.Opts{
//		Model:       st7305.Custom,
//		W:           300,
//		H:           400,
//		Orientation: image1bit.Portrait,
//		ColStart:    0x10,
//		ColEnd:      0x2C,
//		RowStart:    0x00,
//		RowEnd:      0xC7,
//	})
//
// Width×height must be a multiple of 8 and the dimensions must tile evenly
// for the chosen orientation (landscape: width%2==0, height%4==0;
// portrait: width%4==0, height%2==0). The address-window bytes are
// consumed verbatim and must come from the panel vendor.
//
// # Datasheet
//
// https://files.waveshare.com/wiki/common/ST_7305_V0_2.pdf
//
// # Compatibility with periph.io
//
// This driver implements the display.Drawer interface from periph.io and
// can be used with any tool or library expecting one.
package st7305
