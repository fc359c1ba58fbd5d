// Command lqframe encodes or decodes a single 1024-byte raw framebuffer
// to or from one of the two wire formats.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	quadtree "github.com/techmccat/linear-quadtree"
	"github.com/techmccat/linear-quadtree/raster"
	"github.com/techmccat/linear-quadtree/wire/v1"
	"github.com/techmccat/linear-quadtree/wire/v2"
)

func main() {
	var version int
	var decode bool
	var inPath, outPath string
	flag.IntVar(&version, "v", 1, "wire format version, 1 or 2")
	flag.BoolVar(&decode, "d", false, "decode a payload back into a raw framebuffer instead of encoding one")
	flag.StringVar(&inPath, "i", "", "input file path (default stdin)")
	flag.StringVar(&outPath, "o", "", "output file path (default stdout)")
	flag.Parse()

	if version != 1 && version != 2 {
		fmt.Fprintf(os.Stderr, "lqframe: -v must be 1 or 2, got %d\n", version)
		os.Exit(1)
	}

	in := os.Stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lqframe: cant open input %s: %s\n", inPath, err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lqframe: cant open output %s: %s\n", outPath, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lqframe: cant read input: %s\n", err)
		os.Exit(1)
	}

	if decode {
		err = runDecode(version, data, out)
	} else {
		err = runEncode(version, data, out)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "lqframe: %s\n", err)
		os.Exit(1)
	}
}

func runEncode(version int, data []byte, out io.Writer) error {
	var raw [1024]byte
	if len(data) != len(raw) {
		return fmt.Errorf("input must be exactly %d bytes, got %d", len(raw), len(data))
	}
	copy(raw[:], data)

	var payload []byte
	switch version {
	case 1:
		payload = v1.EncodeFull(quadtree.Build(&raw, true))
	case 2:
		payload = v2.Encode(quadtree.Build(&raw, false))
	}
	_, err := out.Write(payload)
	return err
}

func runDecode(version int, data []byte, out io.Writer) error {
	fb := raster.NewFramebuffer()
	switch version {
	case 1:
		f, err := v1.Parse(data)
		if err != nil {
			return fmt.Errorf("parse v1 payload: %w", err)
		}
		raster.DrawFull(fb, !f.Meta.ActiveFeature, f.Leaves())
	case 2:
		raster.DrawFull(fb, false, v2.Parse(data).Leaves())
	}
	_, err := out.Write(fb.Bytes()[:])
	return err
}
