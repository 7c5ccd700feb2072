package spf

import (
	"fmt"
	"strings"
)

// Bitmap is a glyph's 1-bit pixel grid, stored row-major from the top-left
// corner. Bitmaps are immutable once constructed; the zero value is empty.
//
// An inferred bitmap carries pixel data but no dimensions. The font resolves
// them on insert from its size and alignment, which saves callers from
// restating the fixed dimension for every glyph.
type Bitmap struct {
	width    uint8
	height   uint8
	bits     []bool
	inferred bool
}

// NewBitmap builds a bitmap with explicit dimensions. The pixel slice is
// copied and its length must equal width*height; both dimensions must be
// non-zero.
func NewBitmap(width, height uint8, pixels []bool) (Bitmap, error) {
	if width == 0 || height == 0 {
		return Bitmap{}, fmt.Errorf("%w: %dx%d bitmap", ErrDimensionMismatch, width, height)
	}
	if len(pixels) != int(width)*int(height) {
		return Bitmap{}, fmt.Errorf("%w: %dx%d bitmap needs %d pixels, got %d",
			ErrDimensionMismatch, width, height, int(width)*int(height), len(pixels))
	}
	return Bitmap{
		width:  width,
		height: height,
		bits:   append([]bool(nil), pixels...),
	}, nil
}

// InferredBitmap builds a bitmap whose dimensions are resolved later by
// Font.AddCharacter. The pixel slice is copied.
func InferredBitmap(pixels []bool) Bitmap {
	return Bitmap{
		bits:     append([]bool(nil), pixels...),
		inferred: true,
	}
}

// Width returns the bitmap width in pixels. Zero for unresolved inferred bitmaps.
func (b Bitmap) Width() uint8 { return b.width }

// Height returns the bitmap height in pixels. Zero for unresolved inferred bitmaps.
func (b Bitmap) Height() uint8 { return b.height }

// Inferred reports whether the bitmap's dimensions are still unresolved.
func (b Bitmap) Inferred() bool { return b.inferred }

// On reports whether the pixel at (x, y) is set. Coordinates outside the
// bitmap report false, so callers can probe without bounds arithmetic.
func (b Bitmap) On(x, y int) bool {
	if x < 0 || y < 0 || x >= int(b.width) || y >= int(b.height) {
		return false
	}
	return b.bits[y*int(b.width)+x]
}

// Pixels returns a copy of the row-major pixel data.
func (b Bitmap) Pixels() []bool {
	return append([]bool(nil), b.bits...)
}

// String renders the bitmap as one text row per pixel row, using '#' for set
// pixels and '.' for clear ones. Inferred bitmaps render their raw data as a
// single row.
func (b Bitmap) String() string {
	if len(b.bits) == 0 {
		return ""
	}

	width := int(b.width)
	if width == 0 {
		width = len(b.bits)
	}

	var sb strings.Builder
	sb.Grow(len(b.bits) + len(b.bits)/width)
	for i, on := range b.bits {
		if i > 0 && i%width == 0 {
			sb.WriteByte('\n')
		}
		if on {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// resolve fixes an inferred bitmap's dimensions against the font's fixed
// dimension. The data length must divide evenly and the free dimension must
// fit in a byte.
func (b Bitmap) resolve(alignment Alignment, size uint8) (Bitmap, error) {
	if !b.inferred {
		return b, nil
	}
	if size == 0 {
		return Bitmap{}, ErrZeroSize
	}
	if len(b.bits) == 0 || len(b.bits)%int(size) != 0 {
		return Bitmap{}, fmt.Errorf("%w: %d pixels do not divide by font size %d",
			ErrDimensionMismatch, len(b.bits), size)
	}

	free := len(b.bits) / int(size)
	if free > 255 {
		return Bitmap{}, fmt.Errorf("%w: inferred dimension %d exceeds 255", ErrDimensionMismatch, free)
	}

	resolved := Bitmap{bits: b.bits}
	if alignment == AlignmentHeight {
		resolved.width = uint8(free)
		resolved.height = size
	} else {
		resolved.width = size
		resolved.height = uint8(free)
	}
	return resolved, nil
}

// freeDimension returns the per-glyph dimension stored on the wire: width for
// height-aligned fonts and height for width-aligned ones.
func (b Bitmap) freeDimension(alignment Alignment) uint8 {
	if alignment == AlignmentHeight {
		return b.width
	}
	return b.height
}
