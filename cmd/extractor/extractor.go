package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/r-a303931/catconf"
)

type CommandLine struct {
	In        string
	Marker    string
	MarkerHex string
	Window    int
	Out       string
}

// markerBytes resolves the marker from the command line, preferring the hex
// form for markers that are not printable text.
func markerBytes(cmd CommandLine) []byte {
	if cmd.MarkerHex != "" {
		marker, err := hex.DecodeString(cmd.MarkerHex)
		if err != nil {
			log.Fatalf("Invalid -marker-hex value: %s", err)
		}
		return marker
	}
	return []byte(cmd.Marker)
}

func main() {
	var cmd CommandLine
	flag.StringVar(&cmd.In, "in", "", "File to extract the trailing payload from")
	flag.StringVar(&cmd.Marker, "marker", "", "Marker bytes preceding the payload")
	flag.StringVar(&cmd.MarkerHex, "marker-hex", "", "Marker bytes in hex (overrides -marker)")
	flag.IntVar(&cmd.Window, "window", catconf.DefaultWindowSize, "Scan window size in bytes")
	flag.StringVar(&cmd.Out, "out", "", "Output file for the payload (defaults to stdout)")
	flag.Parse()
	if cmd.In == "" || (cmd.Marker == "" && cmd.MarkerHex == "") {
		flag.Usage()
		os.Exit(1)
	}

	in, err := os.Open(cmd.In)
	if err != nil {
		log.Fatalf("Failed to open %q: %s", cmd.In, err)
	}
	defer in.Close()

	payload, err := catconf.NewOptions(markerBytes(cmd)).
		WithWindowSize(cmd.Window).
		Payload(in)
	if err != nil {
		log.Fatalf("Failed to locate payload in %q: %s", cmd.In, err)
	}

	out := os.Stdout
	if cmd.Out != "" {
		out, err = os.OpenFile(cmd.Out, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("Failed to open output file %q: %s", cmd.Out, err)
		}
		defer out.Close()
	}

	n, err := io.Copy(out, payload)
	if err != nil {
		log.Fatalf("Failed to write payload: %s", err)
	}
	fmt.Fprintf(os.Stderr, "Extracted %d bytes\n", n)
}
