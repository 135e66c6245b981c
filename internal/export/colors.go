package export

import "image/color"

// Coolwarm endpoints: spin down is blue, spin up is red.
var (
	DownColor = color.RGBA{R: 0x3b, G: 0x4c, B: 0xc0, A: 0xff}
	UpColor   = color.RGBA{R: 0xb4, G: 0x04, B: 0x26, A: 0xff}
)

type coolwarm struct{}

func (coolwarm) Colors() []color.Color {
	return []color.Color{DownColor, UpColor}
}

func hexColor(c color.RGBA) string {
	return "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}
