package spf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplepixelfont/spf-go/spf"
)

func TestNewFont_ZeroSize(t *testing.T) {
	font, err := spf.NewFont(spf.ConfigurationFlags{}, spf.ModifierFlags{}, 0)

	assert.Nil(t, font)
	require.ErrorIs(t, err, spf.ErrZeroSize)
}

func TestAddCharacter_InferredHeightAligned(t *testing.T) {
	font, err := spf.NewFont(spf.ConfigurationFlags{Alignment: spf.AlignmentHeight}, spf.ModifierFlags{}, 4)
	require.NoError(t, err)

	// 8 pixels over fixed height 4 gives an inferred width of 2.
	require.NoError(t, font.AddPixels('i', []bool{
		true, false,
		false, true,
		true, false,
		false, true,
	}))

	glyph, ok := font.Character('i')
	require.True(t, ok)
	assert.Equal(t, uint8(2), glyph.Bitmap.Width())
	assert.Equal(t, uint8(4), glyph.Bitmap.Height())
	assert.False(t, glyph.Bitmap.Inferred())
}

func TestAddCharacter_InferredWidthAligned(t *testing.T) {
	font, err := spf.NewFont(spf.ConfigurationFlags{Alignment: spf.AlignmentWidth}, spf.ModifierFlags{}, 3)
	require.NoError(t, err)

	require.NoError(t, font.AddPixels('t', []bool{
		true, true, true,
		false, true, false,
	}))

	glyph, ok := font.Character('t')
	require.True(t, ok)
	assert.Equal(t, uint8(3), glyph.Bitmap.Width())
	assert.Equal(t, uint8(2), glyph.Bitmap.Height())
}

func TestAddCharacter_Errors(t *testing.T) {
	square, err := spf.NewBitmap(4, 4, make([]bool, 16))
	require.NoError(t, err)
	tall, err := spf.NewBitmap(2, 5, make([]bool, 10))
	require.NoError(t, err)

	tests := []struct {
		name    string
		add     func(f *spf.Font) error
		wantErr error
	}{
		{
			name:    "duplicate rune",
			add:     func(f *spf.Font) error { return f.AddCharacter(spf.NewCharacter('o', square)) },
			wantErr: spf.ErrDuplicateRune,
		},
		{
			name:    "fixed dimension disagrees with font size",
			add:     func(f *spf.Font) error { return f.AddCharacter(spf.NewCharacter('x', tall)) },
			wantErr: spf.ErrDimensionMismatch,
		},
		{
			name:    "inferred pixels do not divide by font size",
			add:     func(f *spf.Font) error { return f.AddPixels('y', make([]bool, 7)) },
			wantErr: spf.ErrDimensionMismatch,
		},
		{
			name:    "surrogate rune rejected",
			add:     func(f *spf.Font) error { return f.AddCharacter(spf.NewCharacter(0xD800, square)) },
			wantErr: spf.ErrInvalidRune,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			font, err := spf.NewFont(spf.ConfigurationFlags{Alignment: spf.AlignmentHeight}, spf.ModifierFlags{}, 4)
			require.NoError(t, err)
			require.NoError(t, font.AddCharacter(spf.NewCharacter('o', square)))

			err = tt.add(font)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, font.Len(), "failed add must not grow the glyph table")
		})
	}
}

func TestCharacter_Lookup(t *testing.T) {
	font, err := spf.NewFont(spf.ConfigurationFlags{Alignment: spf.AlignmentHeight}, spf.ModifierFlags{}, 2)
	require.NoError(t, err)

	require.NoError(t, font.AddPixels('a', []bool{true, false, false, true}))
	require.NoError(t, font.AddPixels('b', []bool{false, true, true, false}))

	glyph, ok := font.Character('b')
	require.True(t, ok)
	assert.Equal(t, 'b', glyph.Rune)

	_, ok = font.Character('z')
	assert.False(t, ok)

	chars := font.Characters()
	require.Len(t, chars, 2)
	assert.Equal(t, 'a', chars[0].Rune)
	assert.Equal(t, 'b', chars[1].Rune)
}

func TestNewBitmap_Validation(t *testing.T) {
	_, err := spf.NewBitmap(3, 2, make([]bool, 5))
	require.ErrorIs(t, err, spf.ErrDimensionMismatch)

	_, err = spf.NewBitmap(0, 4, nil)
	require.ErrorIs(t, err, spf.ErrDimensionMismatch)
}

func TestBitmap_On(t *testing.T) {
	bitmap, err := spf.NewBitmap(2, 2, []bool{
		true, false,
		false, true,
	})
	require.NoError(t, err)

	assert.True(t, bitmap.On(0, 0))
	assert.False(t, bitmap.On(1, 0))
	assert.True(t, bitmap.On(1, 1))

	// Out-of-range coordinates probe as unset instead of panicking.
	assert.False(t, bitmap.On(-1, 0))
	assert.False(t, bitmap.On(2, 0))
	assert.False(t, bitmap.On(0, 2))
}

func TestBitmap_String(t *testing.T) {
	bitmap, err := spf.NewBitmap(3, 2, []bool{
		true, true, true,
		false, true, false,
	})
	require.NoError(t, err)

	assert.Equal(t, "###\n.#.", bitmap.String())
}

func TestBitmap_PixelsCopies(t *testing.T) {
	src := []bool{true, false, false, true}
	bitmap, err := spf.NewBitmap(2, 2, src)
	require.NoError(t, err)

	src[0] = false
	pixels := bitmap.Pixels()
	assert.True(t, pixels[0], "bitmap must copy its input")

	pixels[1] = true
	assert.False(t, bitmap.On(1, 0), "Pixels must return a copy")
}
