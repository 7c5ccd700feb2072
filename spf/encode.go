package spf

import (
	"fmt"
	"unicode/utf8"
)

// Header flag bits and the version nibble position.
const (
	flagAlignmentWidth = 1 << 0
	flagCompact        = 1 << 1
	versionShift       = 4
)

// MarshalBinary encodes the font into the .spf wire format. It implements
// encoding.BinaryMarshaler.
//
// Layout: the "fsF" magic, one flags byte (alignment, compact, version
// nibble), the font size, a 24-bit checksum over every other byte, then one
// record per glyph in insertion order. A record is the rune's UTF-8 bytes,
// the free dimension, and the bitmap pixels MSB-first; non-compact fonts pad
// each record to a byte boundary.
func (f *Font) MarshalBinary() ([]byte, error) {
	if f.Size == 0 {
		return nil, ErrZeroSize
	}
	if f.Version != FormatVersion0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}

	var flags byte
	if f.Flags.Alignment == AlignmentWidth {
		flags |= flagAlignmentWidth
	}
	if f.Modifiers.Compact {
		flags |= flagCompact
	}
	flags |= byte(f.Version) << versionShift

	head := []byte{magic[0], magic[1], magic[2], flags, f.Size}

	var w bitWriter
	for _, glyph := range f.glyphs {
		var runeBuf [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBuf[:], glyph.Rune)
		for _, b := range runeBuf[:n] {
			w.writeByte(b)
		}

		w.writeByte(glyph.Bitmap.freeDimension(f.Flags.Alignment))

		for _, on := range glyph.Bitmap.bits {
			w.writeBit(on)
		}
		if !f.Modifiers.Compact {
			w.align()
		}
	}
	body := w.bytes()

	sum := checksum24(head, body)

	out := make([]byte, 0, len(head)+len(sum)+len(body))
	out = append(out, head...)
	out = append(out, sum[:]...)
	out = append(out, body...)
	return out, nil
}
