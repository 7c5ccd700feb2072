// Package spf implements the SimplePixelFont (.spf) binary format, a compact
// container for monospaced-ish bitmap fonts where every glyph is a 1-bit
// pixel grid. Fonts are built in memory with NewFont and AddCharacter, then
// serialized with MarshalBinary and read back with Decode.
//
// The format pins one glyph dimension for the whole font (the font size) and
// stores the other per glyph, so a height-aligned font has uniform glyph
// height and variable width, and a width-aligned font the reverse.
package spf

import "errors"

// magic is the three-byte signature at the start of every .spf file.
var magic = [3]byte{'f', 's', 'F'}

// headerLen is the fixed prefix length: magic, flags, size, and the
// three checksum bytes.
const headerLen = 8

// FormatVersion identifies the .spf wire format revision, stored in the
// high nibble of the header flags byte.
type FormatVersion uint8

// FormatVersion0 is the only revision currently defined.
const FormatVersion0 FormatVersion = 0

// Alignment selects which glyph dimension the font size pins.
type Alignment uint8

const (
	// AlignmentHeight pins glyph height to the font size; widths vary per glyph.
	AlignmentHeight Alignment = iota
	// AlignmentWidth pins glyph width to the font size; heights vary per glyph.
	AlignmentWidth
)

// String returns a human-readable name for the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignmentHeight:
		return "height"
	case AlignmentWidth:
		return "width"
	default:
		return "unknown"
	}
}

// ConfigurationFlags are structural properties fixed when a font is created.
type ConfigurationFlags struct {
	Alignment Alignment
}

// ModifierFlags tune how the font body is packed on the wire.
type ModifierFlags struct {
	// Compact packs glyph bitmaps as one continuous bit stream instead of
	// padding each glyph to a byte boundary. Smaller files, unaligned records.
	Compact bool
}

// Sentinel errors returned by decoding and font construction. Callers should
// match them with errors.Is; returned errors carry additional context.
var (
	ErrBadMagic           = errors.New("spf: missing fsF signature")
	ErrTruncated          = errors.New("spf: truncated data")
	ErrChecksumMismatch   = errors.New("spf: checksum mismatch")
	ErrUnsupportedVersion = errors.New("spf: unsupported format version")
	ErrZeroSize           = errors.New("spf: font size must be non-zero")
	ErrDuplicateRune      = errors.New("spf: duplicate character")
	ErrInvalidRune        = errors.New("spf: invalid character encoding")
	ErrDimensionMismatch  = errors.New("spf: bitmap dimensions inconsistent")
)
