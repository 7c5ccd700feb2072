package main

import (
	"fmt"
	"os"

	"github.com/simplepixelfont/spf-go/spf"
)

func main() {
	os.Exit(check())
}

// check validates a shipped .spf file: readable, well-formed, checksum
// intact, and holding at least one glyph. One line on stderr per failure
// so CI logs show the reason.
func check() int {
	path := os.Getenv("SPFCHECK_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: spfcheck <font.spf> (or set SPFCHECK_FILE)")
		return 1
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spfcheck: %v\n", err)
		return 1
	}

	font, err := spf.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spfcheck: %s: %v\n", path, err)
		return 1
	}

	if font.Len() == 0 {
		fmt.Fprintf(os.Stderr, "spfcheck: %s: font has no glyphs\n", path)
		return 1
	}

	return 0
}
