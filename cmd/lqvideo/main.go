// Command lqvideo encodes a sequence of raw 1024-byte framebuffers read
// back to back from its input into a length-prefixed stream of wire
// payloads, or decodes such a stream back into raw framebuffers.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/techmccat/linear-quadtree/raster"
	"github.com/techmccat/linear-quadtree/stream"
	"github.com/techmccat/linear-quadtree/wire/v1"
	"github.com/techmccat/linear-quadtree/wire/v2"
)

func main() {
	var version int
	var decode bool
	var inPath, outPath string
	var iFrameInterval int
	var frameLimit int
	flag.IntVar(&version, "v", 1, "wire format version, 1 or 2")
	flag.BoolVar(&decode, "d", false, "decode a stream back into raw framebuffers instead of encoding one")
	flag.StringVar(&inPath, "i", "", "input file path (default stdin)")
	flag.StringVar(&outPath, "o", "", "output file path (default stdout)")
	flag.IntVar(&iFrameInterval, "k", 30, "frames between forced I-frames (encode only)")
	flag.IntVar(&frameLimit, "f", 0, "stop after this many input frames, 0 for no limit (encode only)")
	flag.Parse()

	if version != 1 && version != 2 {
		fmt.Fprintf(os.Stderr, "lqvideo: -v must be 1 or 2, got %d\n", version)
		os.Exit(1)
	}

	in := os.Stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lqvideo: cant open input %s: %s\n", inPath, err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lqvideo: cant open output %s: %s\n", outPath, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	var err error
	if decode {
		err = runDecode(version, in, out)
	} else {
		err = runEncode(version, in, out, iFrameInterval, frameLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "lqvideo: %s\n", err)
		os.Exit(1)
	}
}

func runEncode(version int, in io.Reader, out io.Writer, iFrameInterval, frameLimit int) error {
	var codec stream.FrameCodec
	switch version {
	case 1:
		codec = v1.NewCodec()
	case 2:
		codec = v2.NewCodec()
	}
	enc := stream.NewEncoder(out, codec, iFrameInterval)

	var frame [1024]byte
	frames := 0
	for frameLimit == 0 || frames < frameLimit {
		n, err := io.ReadFull(in, frame[:])
		if n > 0 {
			if _, werr := enc.Write(frame[:n]); werr != nil {
				return fmt.Errorf("encode frame %d: %w", frames, werr)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read frame %d: %w", frames, err)
		}
		frames++
	}
	return enc.Flush()
}

func runDecode(version int, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var codec stream.FrameCodec
	switch version {
	case 1:
		codec = v1.NewCodec()
	case 2:
		codec = v2.NewCodec()
	}

	fb := raster.NewFramebuffer()
	dec := stream.NewDecoder(codec, fb)
	vs := stream.NewVideoSlice(data)
	for {
		payload, ok := vs.Next()
		if !ok {
			return nil
		}
		if err := dec.DecodeOne(payload); err != nil {
			return err
		}
		if version == 1 {
			// A V1 P-frame spans two payloads; only the one with Display
			// set completes a frame.
			f, err := v1.Parse(payload)
			if err != nil {
				return err
			}
			if !f.Meta.Display {
				continue
			}
		}
		if _, err := out.Write(fb.Bytes()[:]); err != nil {
			return err
		}
	}
}
