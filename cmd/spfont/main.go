package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/simplepixelfont/spf-go/spf"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	path := os.Getenv("SPFONT_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		return fmt.Errorf("usage: spfont <font.spf> (or set SPFONT_FILE)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	font, err := spf.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	if jsonOut, _ := strconv.ParseBool(os.Getenv("SPFONT_JSON")); jsonOut {
		return printJSON(path, len(data), font)
	}

	printText(path, len(data), font)
	return nil
}

// printText writes a header summary followed by an ASCII preview per glyph,
// set pixels as '#' and clear ones as '.'.
func printText(path string, size int, font *spf.Font) {
	fmt.Printf("%s: %d bytes, %d glyphs\n", path, size, font.Len())
	fmt.Printf("alignment %s, size %d, compact %t\n",
		font.Flags.Alignment, font.Size, font.Modifiers.Compact)

	for _, glyph := range font.Characters() {
		bm := glyph.Bitmap
		fmt.Printf("\n%q  %dx%d\n%s\n", glyph.Rune, bm.Width(), bm.Height(), bm)
	}
}

type jsonGlyph struct {
	Rune   string   `json:"rune"`
	Width  uint8    `json:"width"`
	Height uint8    `json:"height"`
	Rows   []string `json:"rows"`
}

type jsonFont struct {
	File      string      `json:"file"`
	Bytes     int         `json:"bytes"`
	Alignment string      `json:"alignment"`
	Size      uint8       `json:"size"`
	Compact   bool        `json:"compact"`
	Glyphs    []jsonGlyph `json:"glyphs"`
}

func printJSON(path string, size int, font *spf.Font) error {
	out := jsonFont{
		File:      path,
		Bytes:     size,
		Alignment: font.Flags.Alignment.String(),
		Size:      font.Size,
		Compact:   font.Modifiers.Compact,
		Glyphs:    make([]jsonGlyph, 0, font.Len()),
	}

	for _, glyph := range font.Characters() {
		bm := glyph.Bitmap
		out.Glyphs = append(out.Glyphs, jsonGlyph{
			Rune:   string(glyph.Rune),
			Width:  bm.Width(),
			Height: bm.Height(),
			Rows:   strings.Split(bm.String(), "\n"),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
