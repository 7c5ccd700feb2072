package spf

import (
	"fmt"
	"unicode/utf8"
)

// Character pairs a rune with its glyph bitmap.
type Character struct {
	Rune   rune
	Bitmap Bitmap
}

// NewCharacter builds a character from a rune and a bitmap. The bitmap may be
// inferred; dimensions are then resolved when the character joins a font.
func NewCharacter(r rune, bitmap Bitmap) Character {
	return Character{Rune: r, Bitmap: bitmap}
}

// Font is an in-memory SimplePixelFont: a glyph table plus the header
// properties that govern its wire encoding. Glyph lookup by rune is O(1);
// encoding preserves insertion order.
type Font struct {
	Version   FormatVersion
	Flags     ConfigurationFlags
	Modifiers ModifierFlags
	Size      uint8

	glyphs []Character
	index  map[rune]int
}

// NewFont creates an empty font. The size is the fixed glyph dimension
// (height for AlignmentHeight, width for AlignmentWidth) and must be non-zero.
func NewFont(flags ConfigurationFlags, modifiers ModifierFlags, size uint8) (*Font, error) {
	if size == 0 {
		return nil, ErrZeroSize
	}
	return &Font{
		Version:   FormatVersion0,
		Flags:     flags,
		Modifiers: modifiers,
		Size:      size,
		index:     make(map[rune]int),
	}, nil
}

// AddCharacter appends a glyph to the font. Inferred bitmaps are resolved
// against the font's size and alignment; explicit bitmaps must already agree
// with the fixed dimension. Duplicate runes and invalid rune values are
// rejected.
func (f *Font) AddCharacter(c Character) error {
	if f.Size == 0 {
		return ErrZeroSize
	}
	if !utf8.ValidRune(c.Rune) {
		return fmt.Errorf("%w: %#U", ErrInvalidRune, c.Rune)
	}
	if _, exists := f.index[c.Rune]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRune, c.Rune)
	}

	bitmap, err := c.Bitmap.resolve(f.Flags.Alignment, f.Size)
	if err != nil {
		return fmt.Errorf("character %q: %w", c.Rune, err)
	}

	fixed := bitmap.Height()
	if f.Flags.Alignment == AlignmentWidth {
		fixed = bitmap.Width()
	}
	if fixed != f.Size {
		return fmt.Errorf("character %q: %w: fixed dimension %d, font size %d",
			c.Rune, ErrDimensionMismatch, fixed, f.Size)
	}

	if f.index == nil {
		f.index = make(map[rune]int)
	}
	f.index[c.Rune] = len(f.glyphs)
	f.glyphs = append(f.glyphs, Character{Rune: c.Rune, Bitmap: bitmap})
	return nil
}

// AddPixels is a convenience wrapper that adds a glyph from raw row-major
// pixel data with inferred dimensions.
func (f *Font) AddPixels(r rune, pixels []bool) error {
	return f.AddCharacter(Character{Rune: r, Bitmap: InferredBitmap(pixels)})
}

// Character returns the glyph for the given rune, if present.
func (f *Font) Character(r rune) (Character, bool) {
	i, ok := f.index[r]
	if !ok {
		return Character{}, false
	}
	return f.glyphs[i], true
}

// Characters returns the glyph table in insertion order. The returned slice
// is a copy; the bitmaps it holds are shared.
func (f *Font) Characters() []Character {
	return append([]Character(nil), f.glyphs...)
}

// Len returns the number of glyphs in the font.
func (f *Font) Len() int { return len(f.glyphs) }
