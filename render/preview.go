package render

import (
	"bytes"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

// PDFPreview renders the first page of a generated PDF as a PNG
// thumbnail, resized to the given width (0 keeps the native size).
// Used by the render service's preview endpoint and the CLI.
func PDFPreview(pdfData []byte, width int) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, &EncodingError{Format: "pdf-preview", Msg: "opening document", Err: err}
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, &EncodingError{Format: "pdf-preview", Msg: "document has no pages"}
	}
	img, err := doc.Image(0)
	if err != nil {
		return nil, &EncodingError{Format: "pdf-preview", Msg: "rendering first page", Err: err}
	}
	if width > 0 && img.Bounds().Dx() != width {
		img2 := imaging.Resize(img, width, 0, imaging.Lanczos)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img2, imaging.PNG); err != nil {
			return nil, &EncodingError{Format: "pdf-preview", Msg: "encoding preview", Err: err}
		}
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, &EncodingError{Format: "pdf-preview", Msg: "encoding preview", Err: err}
	}
	return buf.Bytes(), nil
}
