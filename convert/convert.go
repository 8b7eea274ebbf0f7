// Package convert is the single entry point for turning a chart
// specification into one of the supported output documents. It wires
// the parse, layout and encoding stages together; errors from each
// stage pass through unchanged so callers can match on the stage
// sentinels.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/drummonds/chartconv/chartspec"
	"github.com/drummonds/chartconv/render"
	"github.com/drummonds/chartconv/scene"
)

// Format identifies an output document type.
type Format string

const (
	FormatJSON Format = "json" // structured document
	FormatHTML Format = "html" // self-contained markup page
	FormatPNG  Format = "png"  // raster image
	FormatSVG  Format = "svg"  // vector image
	FormatPDF  Format = "pdf"  // print document
	FormatJPEG Format = "jpeg" // raster image, lossy
)

// Formats returns every supported output format, in a fixed order.
func Formats() []Format {
	return []Format{FormatJSON, FormatHTML, FormatPNG, FormatSVG, FormatPDF, FormatJPEG}
}

func supportedList() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// Options tune the conversion. The zero value gives the defaults:
// scale 1.0, 72 ppi, JPEG quality 90, bundled HTML pages and the
// resvg rasterizer.
type Options struct {
	Scale   float64 // raster output multiplier
	PPI     float64 // pixel density recorded in raster output
	Quality int     // JPEG quality, 0 to 100

	NoBundle bool   // load the HTML viewer from a CDN instead of inlining content
	Mode     string // HTML renderer mode: vector, raster or hybrid
	CDNBase  string // asset host for non-bundled pages

	Target string // structured-document target: spec or scene

	Renderer render.Rasterizer // SVG rasterization backend
}

func (o Options) rasterizer() render.Rasterizer {
	if o.Renderer != nil {
		return o.Renderer
	}
	return render.ResvgRasterizer{}
}

func (o Options) rasterOptions() render.RasterOptions {
	return render.RasterOptions{Scale: o.Scale, PPI: o.PPI, Quality: o.Quality}
}

// Convert parses the raw specification and produces the requested
// output document. The format is validated before any parsing, so an
// unsupported format is reported even for invalid input.
func Convert(raw []byte, format Format, opts Options) ([]byte, error) {
	if !supported(format) {
		return nil, &UnsupportedFormatError{Format: string(format)}
	}

	spec, err := chartspec.Parse(raw)
	if err != nil {
		return nil, err
	}
	sc, err := scene.Build(spec)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return render.EncodeJSON(spec, sc, opts.Target)
	case FormatSVG:
		return render.EncodeSVG(sc)
	case FormatPDF:
		return render.EncodePDF(sc)
	case FormatHTML:
		return render.EncodeHTML(spec, sc, render.HTMLOptions{
			Bundle:  !opts.NoBundle,
			Mode:    opts.Mode,
			CDNBase: opts.CDNBase,
		}, opts.rasterizer())
	case FormatPNG:
		svgData, err := render.EncodeSVG(sc)
		if err != nil {
			return nil, err
		}
		return render.EncodePNG(svgData, sc.Width, sc.Height, opts.rasterOptions(), opts.rasterizer())
	case FormatJPEG:
		svgData, err := render.EncodeSVG(sc)
		if err != nil {
			return nil, err
		}
		return render.EncodeJPEG(svgData, sc.Width, sc.Height, opts.rasterOptions(), opts.rasterizer())
	}
	return nil, &UnsupportedFormatError{Format: string(format)}
}

func supported(format Format) bool {
	for _, f := range Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// extensionFormats maps output file extensions to formats. Unlisted
// extensions are rejected rather than guessed at.
var extensionFormats = map[string]Format{
	".json": FormatJSON,
	".html": FormatHTML,
	".htm":  FormatHTML,
	".png":  FormatPNG,
	".svg":  FormatSVG,
	".pdf":  FormatPDF,
	".jpeg": FormatJPEG,
	".jpg":  FormatJPEG,
}

// FormatForPath infers the output format from a file name's extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensionFormats[ext]
	if !ok {
		return "", &UnsupportedFormatError{Format: strings.TrimPrefix(ext, ".")}
	}
	return format, nil
}

// ConvertFile reads a specification file and writes the converted
// document, inferring the format from the output path's extension.
func ConvertFile(inPath, outPath string, opts Options) error {
	format, err := FormatForPath(outPath)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(inPath)
	if err != nil {
		return &ConversionError{Stage: fmt.Sprintf("reading %s", inPath), Err: err}
	}
	out, err := Convert(raw, format, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return &ConversionError{Stage: fmt.Sprintf("writing %s", outPath), Err: err}
	}
	return nil
}
