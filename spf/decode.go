package spf

import (
	"fmt"
	"unicode/utf8"
)

// Decode parses .spf data and verifies its checksum.
func Decode(data []byte) (*Font, error) {
	return decode(data, true)
}

// DecodeUnchecked parses .spf data without comparing the stored checksum.
// Structural validation still applies; use this only for files known to have
// been rewritten by tools that do not maintain the checksum.
func DecodeUnchecked(data []byte) (*Font, error) {
	return decode(data, false)
}

// UnmarshalBinary decodes the font from .spf data, replacing the receiver's
// contents. It implements encoding.BinaryUnmarshaler and verifies the
// checksum.
func (f *Font) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

func decode(data []byte, verify bool) (*Font, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: %d byte header, need %d", ErrTruncated, len(data), headerLen)
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] {
		return nil, ErrBadMagic
	}

	flags := data[3]
	version := FormatVersion(flags >> versionShift)
	if version != FormatVersion0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	size := data[4]
	if size == 0 {
		return nil, ErrZeroSize
	}

	body := data[headerLen:]
	if verify {
		want := [3]byte{data[5], data[6], data[7]}
		if got := checksum24(data[:5], body); got != want {
			return nil, fmt.Errorf("%w: stored %06x, computed %06x",
				ErrChecksumMismatch,
				uint32(want[0])|uint32(want[1])<<8|uint32(want[2])<<16,
				uint32(got[0])|uint32(got[1])<<8|uint32(got[2])<<16)
		}
	}

	cfg := ConfigurationFlags{Alignment: AlignmentHeight}
	if flags&flagAlignmentWidth != 0 {
		cfg.Alignment = AlignmentWidth
	}
	mods := ModifierFlags{Compact: flags&flagCompact != 0}

	font, err := NewFont(cfg, mods, size)
	if err != nil {
		return nil, err
	}

	r := bitReader{data: body}
	for r.remaining() >= 8 {
		glyph, err := readCharacter(&r, cfg.Alignment, size)
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", font.Len(), err)
		}
		if err := font.AddCharacter(glyph); err != nil {
			return nil, err
		}
		if !mods.Compact {
			r.align()
		}
	}

	return font, nil
}

// readCharacter parses one glyph record from the bit stream.
func readCharacter(r *bitReader, alignment Alignment, size uint8) (Character, error) {
	char, err := readRune(r)
	if err != nil {
		return Character{}, err
	}

	free, err := r.readByte()
	if err != nil {
		return Character{}, fmt.Errorf("%q dimension: %w", char, err)
	}
	if free == 0 {
		return Character{}, fmt.Errorf("%q: %w: zero glyph dimension", char, ErrDimensionMismatch)
	}

	width, height := free, size
	if alignment == AlignmentWidth {
		width, height = size, free
	}

	pixels := make([]bool, int(width)*int(height))
	for i := range pixels {
		on, err := r.readBit()
		if err != nil {
			return Character{}, fmt.Errorf("%q pixel %d of %d: %w", char, i, len(pixels), err)
		}
		pixels[i] = on
	}

	bitmap, err := NewBitmap(width, height, pixels)
	if err != nil {
		return Character{}, err
	}
	return Character{Rune: char, Bitmap: bitmap}, nil
}

// readRune parses one UTF-8 encoded rune from the bit stream. The lead byte
// determines the sequence length.
func readRune(r *bitReader) (rune, error) {
	lead, err := r.readByte()
	if err != nil {
		return 0, err
	}

	var n int
	switch {
	case lead&0x80 == 0:
		n = 1
	case lead&0xE0 == 0xC0:
		n = 2
	case lead&0xF0 == 0xE0:
		n = 3
	case lead&0xF8 == 0xF0:
		n = 4
	default:
		return 0, fmt.Errorf("%w: lead byte %#02x", ErrInvalidRune, lead)
	}

	buf := [utf8.UTFMax]byte{lead}
	for i := 1; i < n; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		buf[i] = b
	}

	char, width := utf8.DecodeRune(buf[:n])
	if char == utf8.RuneError && width <= 1 {
		return 0, fmt.Errorf("%w: %#v", ErrInvalidRune, buf[:n])
	}
	return char, nil
}
