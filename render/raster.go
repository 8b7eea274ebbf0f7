package render

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/xo/resvg"
)

// Raster encoder defaults.
const (
	DefaultScale   = 1.0
	DefaultPPI     = 72.0
	DefaultQuality = 90
)

// RasterOptions configure the raster encoders.
type RasterOptions struct {
	Scale   float64 // linear scale factor applied to the canvas size
	PPI     float64 // pixel density recorded in PNG metadata
	Quality int     // JPEG quality 0-100
}

func (o RasterOptions) withDefaults() RasterOptions {
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.PPI <= 0 {
		o.PPI = DefaultPPI
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	return o
}

// Rasterizer turns SVG bytes into a pixel image at the requested size.
// Implementations must be safe for concurrent use.
type Rasterizer interface {
	Rasterize(svgData []byte, width, height int) (image.Image, error)
	Name() string
}

// ResvgRasterizer is the default backend, rendering SVG in-process.
type ResvgRasterizer struct{}

// Name identifies the backend in logs and startup checks.
func (ResvgRasterizer) Name() string { return "resvg" }

// Rasterize renders the SVG at exactly width x height pixels.
func (ResvgRasterizer) Rasterize(svgData []byte, width, height int) (image.Image, error) {
	return resvg.Render(svgData,
		resvg.WithWidth(width),
		resvg.WithHeight(height),
	)
}

// EncodePNG rasterizes a scene's SVG and encodes it as PNG. The scale
// factor multiplies the canvas size exactly: scale 2.0 doubles both
// linear pixel dimensions. The pixel density is written into the PNG
// pHYs chunk without affecting the pixel grid.
func EncodePNG(svgData []byte, width, height int, opts RasterOptions, r Rasterizer) ([]byte, error) {
	opts = opts.withDefaults()
	img, err := rasterize(svgData, width, height, opts, r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, &EncodingError{Format: "png", Msg: "encoding image", Err: err}
	}
	return setPNGDensity(buf.Bytes(), opts.PPI), nil
}

// EncodeJPEG rasterizes a scene's SVG and encodes it as JPEG at the
// given quality. JPEG has no alpha, so the image is flattened onto a
// white background first.
func EncodeJPEG(svgData []byte, width, height int, opts RasterOptions, r Rasterizer) ([]byte, error) {
	opts = opts.withDefaults()
	if opts.Quality < 0 || opts.Quality > 100 {
		return nil, &EncodingError{Format: "jpeg", Msg: "quality must be between 0 and 100"}
	}
	img, err := rasterize(svgData, width, height, opts, r)
	if err != nil {
		return nil, err
	}
	flat := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, &EncodingError{Format: "jpeg", Msg: "encoding image", Err: err}
	}
	return buf.Bytes(), nil
}

func rasterize(svgData []byte, width, height int, opts RasterOptions, r Rasterizer) (image.Image, error) {
	w := int(math.Round(float64(width) * opts.Scale))
	h := int(math.Round(float64(height) * opts.Scale))
	if w <= 0 || h <= 0 {
		return nil, &EncodingError{Format: "raster", Msg: "scaled dimensions are zero"}
	}
	img, err := r.Rasterize(svgData, w, h)
	if err != nil {
		return nil, &EncodingError{Format: "raster", Msg: r.Name() + " backend failed", Err: err}
	}
	// Backends may round differently (headless browsers in particular);
	// the contract is exact pixel dimensions.
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return img, nil
}

const pngHeaderSize = 8

// setPNGDensity inserts a pHYs chunk directly after IHDR, recording
// the pixel density in pixels per meter. The pixel data is untouched.
func setPNGDensity(data []byte, ppi float64) []byte {
	if len(data) < pngHeaderSize+8 {
		return data
	}
	// IHDR is always first: 4 length + 4 type + 13 data + 4 crc.
	ihdrEnd := pngHeaderSize + 8 + 13 + 4
	if len(data) < ihdrEnd {
		return data
	}

	ppm := uint32(math.Round(ppi / 0.0254)) // inches to meters

	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:4], 9)
	copy(chunk[4:8], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:12], ppm)
	binary.BigEndian.PutUint32(chunk[12:16], ppm)
	chunk[16] = 1 // unit: meter
	crc := crc32.ChecksumIEEE(chunk[4:17])
	binary.BigEndian.PutUint32(chunk[17:21], crc)

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, data[ihdrEnd:]...)
	return out
}
