package render

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/drummonds/chartconv/chartspec"
	"github.com/drummonds/chartconv/scene"
)

// Markup renderer modes.
const (
	ModeVector = "vector" // inline SVG only
	ModeRaster = "raster" // embedded PNG only
	ModeHybrid = "hybrid" // SVG with a PNG fallback
)

// DefaultCDNBase serves the viewer assets when bundling is disabled.
const DefaultCDNBase = "https://cdn.jsdelivr.net/npm"

// HTMLOptions configure the markup-page encoder.
type HTMLOptions struct {
	Bundle  bool   // inline all content; no external fetches
	Mode    string // vector, raster or hybrid (bundled pages only)
	CDNBase string // asset host for non-bundled pages
}

// bundledPage is a fully self-contained viewable document.
var bundledPage = template.Must(template.New("bundled").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>body{margin:0;display:flex;justify-content:center;padding:24px;font-family:sans-serif}</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// cdnPage delegates rendering to the vega-embed viewer loaded from a CDN.
var cdnPage = template.Must(template.New("cdn").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.CDNBase}}/vega@5"></script>
<script src="{{.CDNBase}}/vega-lite@5"></script>
<script src="{{.CDNBase}}/vega-embed@6"></script>
<style>body{margin:0;display:flex;justify-content:center;padding:24px;font-family:sans-serif}</style>
</head>
<body>
<div id="chart"></div>
<script>
vegaEmbed("#chart", {{.Spec}}, {renderer: {{.Renderer}}});
</script>
</body>
</html>
`))

// EncodeHTML wraps the chart in a self-contained viewable page.
//
// With Bundle set (the default) nothing is fetched at view time: the
// chart is embedded as inline SVG (vector mode), an embedded PNG
// (raster mode) or SVG with a PNG fallback (hybrid mode). Without
// Bundle, the page embeds the specification and loads the viewer
// scripts from a CDN; the mode selects the viewer's renderer.
func EncodeHTML(spec *chartspec.Spec, sc *scene.Scene, opts HTMLOptions, r Rasterizer) ([]byte, error) {
	if opts.Mode == "" {
		opts.Mode = ModeVector
	}
	if opts.CDNBase == "" {
		opts.CDNBase = DefaultCDNBase
	}

	title := spec.Title
	if title == "" {
		title = "Chart"
	}

	if !opts.Bundle {
		return encodeCDNPage(spec, title, opts)
	}

	svgData, err := EncodeSVG(sc)
	if err != nil {
		return nil, err
	}

	var body string
	switch opts.Mode {
	case ModeVector:
		body = string(svgData)
	case ModeRaster:
		pngData, err := EncodePNG(svgData, sc.Width, sc.Height, RasterOptions{}, r)
		if err != nil {
			return nil, err
		}
		body = fmt.Sprintf(`<img src="data:image/png;base64,%s" width="%d" height="%d" alt=%q>`,
			base64.StdEncoding.EncodeToString(pngData), sc.Width, sc.Height, title)
	case ModeHybrid:
		pngData, err := EncodePNG(svgData, sc.Width, sc.Height, RasterOptions{}, r)
		if err != nil {
			return nil, err
		}
		body = fmt.Sprintf(`<picture>
<source type="image/svg+xml" srcset="data:image/svg+xml;base64,%s">
<img src="data:image/png;base64,%s" width="%d" height="%d" alt=%q>
</picture>`,
			base64.StdEncoding.EncodeToString(svgData),
			base64.StdEncoding.EncodeToString(pngData), sc.Width, sc.Height, title)
	default:
		return nil, &EncodingError{Format: "html", Msg: fmt.Sprintf("unknown renderer mode %q", opts.Mode)}
	}

	var buf bytes.Buffer
	err = bundledPage.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)})
	if err != nil {
		return nil, &EncodingError{Format: "html", Msg: "executing page template", Err: err}
	}
	return buf.Bytes(), nil
}

func encodeCDNPage(spec *chartspec.Spec, title string, opts HTMLOptions) ([]byte, error) {
	switch opts.Mode {
	case ModeVector, ModeRaster, ModeHybrid:
	default:
		return nil, &EncodingError{Format: "html", Msg: fmt.Sprintf("unknown renderer mode %q", opts.Mode)}
	}
	// The viewer understands svg and canvas; hybrid lets it pick.
	renderer := "svg"
	if opts.Mode == ModeRaster {
		renderer = "canvas"
	}

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, &EncodingError{Format: "html", Msg: "marshalling specification", Err: err}
	}

	var buf bytes.Buffer
	err = cdnPage.Execute(&buf, struct {
		Title    string
		CDNBase  string
		Spec     template.JS
		Renderer string
	}{
		Title:    title,
		CDNBase:  opts.CDNBase,
		Spec:     template.JS(specJSON),
		Renderer: renderer,
	})
	if err != nil {
		return nil, &EncodingError{Format: "html", Msg: "executing page template", Err: err}
	}
	return buf.Bytes(), nil
}
