// Package image1bit implements the monochrome tiled pixel format of the
// ST7305 reflective LCD controller.
//
// Each framebuffer byte holds an 8-pixel tile. Landscape panels use 2×4
// tiles (2 columns, 4 rows) with the vertical axis stored bottom-up;
// portrait panels use 4×2 tiles with no inversion.
//
// Landscape tile, byte offset = blockX*(height/4) + blockY:
//
//	     col0 col1
//	row0  b7   b6
//	row1  b5   b4
//	row2  b3   b2
//	row3  b1   b0
//
// Portrait tile, byte offset = blockY*(width/4) + blockX:
//
//	     col0 col1 col2 col3
//	row0  b7   b6   b5   b4
//	row1  b3   b2   b1   b0
//
// A cleared bit is a drawn (dark) pixel; a set bit leaves the reflective
// white background. A freshly created Image is therefore all 0xFF.
//
// This package provides:
//
// - Bit: a 1-bit color (On = drawn, Off = background)
// - BitModel: a color model converting standard Go colors to Bit
// - AddressMap: precomputed pixel → (byte offset, bit mask) tables
// - Image: a draw.Image backed by the packed buffer
//
// Example usage:
//
//	m, err := image1bit.NewAddressMap(400, 300, image1bit.Landscape)
//	if err != nil {
//		// geometry does not tile
//	}
//	img := image1bit.New(m)
//
//	// Draw a pixel.
//	img.SetBit(10, 20, image1bit.On)
//
//	// Use with standard Go image operations.
//	draw.Draw(img, img.Bounds(), image.NewUniform(image1bit.On), image.Point{}, draw.Src)
package image1bit
