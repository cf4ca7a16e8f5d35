package render

import "image/color"

// fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func fillBinaryRGBA(buf []byte, cells []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}

// FillMask writes tint into buf for every set cell of mask and clears the rest
// to transparent. Cells already painted by an earlier mask keep their colour
// when keep is true, so several layers can share one buffer.
func FillMask(buf []byte, mask []uint8, tint color.RGBA, keep bool) {
	for i, c := range mask {
		base := i * 4
		if c != 0 {
			buf[base+0] = tint.R
			buf[base+1] = tint.G
			buf[base+2] = tint.B
			buf[base+3] = tint.A
			continue
		}
		if keep {
			continue
		}
		buf[base+0] = 0
		buf[base+1] = 0
		buf[base+2] = 0
		buf[base+3] = 0
	}
}

// Palette is the overlay tint per mask layer: north, south, west, east and
// conflict sources.
var Palette = []color.RGBA{
	{R: 64, G: 164, B: 223, A: 160},
	{R: 90, G: 200, B: 120, A: 160},
	{R: 230, G: 200, B: 60, A: 160},
	{R: 200, G: 110, B: 220, A: 160},
	{R: 255, G: 70, B: 40, A: 200},
}

// LayerColor returns the tint for layer i, repeating the palette when there
// are more layers than colours.
func LayerColor(i int) color.RGBA {
	if i < 0 {
		i = 0
	}
	return Palette[i%len(Palette)]
}
