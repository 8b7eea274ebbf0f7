// Command chartconv converts a chart specification file from the
// command line, without running the HTTP service.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	convert "github.com/drummonds/chartconv/convert"
	render "github.com/drummonds/chartconv/render"
)

func main() {
	var (
		inPath   = flag.String("in", "-", "Input chart specification file, or - for stdin")
		outPath  = flag.String("out", "-", "Output file, or - for stdout")
		format   = flag.String("format", "", "Output format: json, html, png, svg, pdf or jpeg; inferred from -out extension when omitted")
		scale    = flag.Float64("scale", 1.0, "Raster scale multiplier")
		ppi      = flag.Float64("ppi", 72.0, "Raster pixel density")
		quality  = flag.Int("quality", 90, "JPEG quality (0-100)")
		target   = flag.String("target", "", "Structured-document target: spec or scene")
		mode     = flag.String("mode", "", "HTML mode: vector, raster or hybrid")
		noBundle = flag.Bool("no-bundle", false, "Reference viewer scripts from a CDN instead of inlining them")
		chrome   = flag.Bool("chrome", false, "Rasterize through a headless browser instead of resvg")
	)
	flag.Parse()

	outFormat := convert.Format(*format)
	if *format == "" {
		if *outPath == "-" {
			fatal(fmt.Errorf("-format is required when writing to stdout"))
		}
		var err error
		outFormat, err = convert.FormatForPath(*outPath)
		if err != nil {
			fatal(err)
		}
	}

	opts := convert.Options{
		Scale:    *scale,
		PPI:      *ppi,
		Quality:  *quality,
		Target:   *target,
		Mode:     *mode,
		NoBundle: *noBundle,
	}
	if *chrome {
		rasterizer, err := render.NewChromeRasterizer(30 * time.Second)
		if err != nil {
			fatal(err)
		}
		opts.Renderer = rasterizer
	}

	raw, err := readInput(*inPath)
	if err != nil {
		fatal(err)
	}

	output, err := convert.Convert(raw, outFormat, opts)
	if err != nil {
		fatal(err)
	}

	if err := writeOutput(*outPath, output); err != nil {
		fatal(err)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "chartconv: %v\n", err)
	os.Exit(1)
}
