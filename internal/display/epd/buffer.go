package epd

import "image"

// whiteThreshold splits gray values into white (bit set) and black/red
// (bit clear), matching the panels' 1-bit convention.
const whiteThreshold = 0x80

// packBuffer converts a portrait grayscale layer into the panel byte layout:
// one bit per pixel, MSB first, each row padded to a whole byte. A set bit is
// white; the red layer uses the same convention (set = no red), which is what
// the UC8151-class controllers expect on the wire. Padding bits stay white so
// non-byte-aligned panels (122px) get no dark edge column.
func packBuffer(img *image.Gray) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := (w + 7) / 8

	buf := whiteBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.GrayAt(b.Min.X+x, b.Min.Y+y).Y < whiteThreshold {
				buf[y*stride+x/8] &^= 0x80 >> (x % 8)
			}
		}
	}
	return buf
}

// whiteBuffer returns an all-white packed buffer for a w x h panel,
// including the padding bits of a partial last byte.
func whiteBuffer(w, h int) []byte {
	stride := (w + 7) / 8
	buf := make([]byte, stride*h)
	for i := range buf {
		buf[i] = 0xFF
	}
	return buf
}

// invert flips every bit in place; the SSD1680-class red RAM uses set = red,
// the inverse of the packed convention.
func invert(buf []byte) []byte {
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = ^b
	}
	return out
}
