package convert

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drummonds/chartconv/chartspec"
	"github.com/drummonds/chartconv/scene"
)

const lineSpec = `{
	"title": "Training progress",
	"mark": "line",
	"encoding": {
		"x": {"field": "iteration", "type": "quantitative"},
		"y": {"field": "score", "type": "quantitative"}
	},
	"data": {"iteration": [1, 2, 3], "score": [1, 2, 3]}
}`

func TestConvertUnsupportedFormat(t *testing.T) {
	_, err := Convert([]byte(lineSpec), "bmp", Options{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Convert returned %v, want ErrUnsupportedFormat", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, `"bmp"`) {
		t.Errorf("error %q does not name the rejected format", msg)
	}
	for _, f := range Formats() {
		if !strings.Contains(msg, string(f)) {
			t.Errorf("error %q does not list supported format %q", msg, f)
		}
	}
}

func TestConvertUnsupportedFormatBeforeParsing(t *testing.T) {
	// Format validation happens first, even for garbage input.
	_, err := Convert([]byte("not json"), "bmp", Options{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Convert returned %v, want ErrUnsupportedFormat", err)
	}
}

func TestConvertInvalidSpecPassthrough(t *testing.T) {
	_, err := Convert([]byte(`{"mark": "sunburst"}`), FormatSVG, Options{})
	if !errors.Is(err, chartspec.ErrInvalidSpec) {
		t.Errorf("Convert returned %v, want ErrInvalidSpec", err)
	}
}

func TestConvertLayoutErrorPassthrough(t *testing.T) {
	raw := `{
		"mark": "line",
		"encoding": {
			"x": {"field": "missing", "type": "quantitative"},
			"y": {"field": "score", "type": "quantitative"}
		},
		"data": {"score": [1, 2, 3]}
	}`
	_, err := Convert([]byte(raw), FormatSVG, Options{})
	if !errors.Is(err, scene.ErrLayout) {
		t.Fatalf("Convert returned %v, want ErrLayout", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error %q does not name the missing field", err)
	}
}

func TestConvertSVG(t *testing.T) {
	out, err := Convert([]byte(lineSpec), FormatSVG, Options{})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !bytes.Contains(out, []byte("<svg")) {
		t.Error("output is not SVG")
	}
}

func TestConvertJSONIdempotent(t *testing.T) {
	first, err := Convert([]byte(lineSpec), FormatJSON, Options{})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	second, err := Convert(first, FormatJSON, Options{})
	if err != nil {
		t.Fatalf("re-converting canonical output: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("structured document not idempotent:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestConvertPDF(t *testing.T) {
	out, err := Convert([]byte(lineSpec), FormatPDF, Options{})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output missing PDF header")
	}
}

func TestConvertHTMLBundled(t *testing.T) {
	out, err := Convert([]byte(lineSpec), FormatHTML, Options{})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !bytes.Contains(out, []byte("<svg")) {
		t.Error("bundled page has no inline chart")
	}
}

func TestConvertPNGScale(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping rasterizer test in short mode")
	}
	base, err := Convert([]byte(lineSpec), FormatPNG, Options{})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	doubled, err := Convert([]byte(lineSpec), FormatPNG, Options{Scale: 2.0})
	if err != nil {
		t.Fatalf("Convert with scale failed: %v", err)
	}
	baseCfg, err := png.DecodeConfig(bytes.NewReader(base))
	if err != nil {
		t.Fatalf("decoding base output: %v", err)
	}
	doubledCfg, err := png.DecodeConfig(bytes.NewReader(doubled))
	if err != nil {
		t.Fatalf("decoding scaled output: %v", err)
	}
	if doubledCfg.Width != 2*baseCfg.Width || doubledCfg.Height != 2*baseCfg.Height {
		t.Errorf("scale=2 output %dx%d, want double %dx%d",
			doubledCfg.Width, doubledCfg.Height, baseCfg.Width, baseCfg.Height)
	}
}

func TestFormatForPath(t *testing.T) {
	cases := map[string]Format{
		"chart.json": FormatJSON,
		"chart.html": FormatHTML,
		"chart.htm":  FormatHTML,
		"chart.PNG":  FormatPNG,
		"chart.svg":  FormatSVG,
		"chart.pdf":  FormatPDF,
		"chart.jpg":  FormatJPEG,
		"chart.jpeg": FormatJPEG,
	}
	for path, want := range cases {
		got, err := FormatForPath(path)
		if err != nil {
			t.Errorf("FormatForPath(%q) failed: %v", path, err)
			continue
		}
		if got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}

	for _, path := range []string{"chart.bmp", "chart.tiff", "chart"} {
		if _, err := FormatForPath(path); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("FormatForPath(%q) returned %v, want ErrUnsupportedFormat", path, err)
		}
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "chart.json")
	out := filepath.Join(dir, "chart.svg")
	if err := os.WriteFile(in, []byte(lineSpec), 0644); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	if err := ConvertFile(in, out, Options{}); err != nil {
		t.Fatalf("ConvertFile failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output file is not SVG")
	}
}

func TestConvertFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := ConvertFile(filepath.Join(dir, "absent.json"), filepath.Join(dir, "out.svg"), Options{})
	if !errors.Is(err, ErrConversion) {
		t.Errorf("ConvertFile returned %v, want ErrConversion", err)
	}
}
