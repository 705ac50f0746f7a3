package docwriter

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"sort"

	docx "github.com/fumiama/go-docx"
	"golang.org/x/image/draw"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
)

// ReportFilename is the fixed name of the delivered artifact.
const ReportFilename = "subsidence_report.docx"

// ContentType is the wordprocessingml MIME type for .docx downloads.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	// displayWidthPx fixes every embedded picture at a 5.5 inch display
	// width (96 dpi). Images are scaled in memory before embedding; no
	// scratch files are involved.
	displayWidthPx = 528

	// Run sizes are half-points. The default template carries no heading
	// styles, so headings are plain bold runs at larger sizes.
	titleSize   = "48"
	headingSize = "32"
)

// Write serializes the assembled report to an in-memory .docx buffer.
// Content passes through unchanged; identical input yields identical bytes.
func Write(doc domain.ReportDocument) (*bytes.Buffer, error) {
	w := docx.New().WithDefaultTheme()

	w.AddParagraph().AddText(doc.Title).Size(titleSize).Bold()

	for _, section := range doc.Sections {
		w.AddParagraph().AddText(section.Heading).Size(headingSize).Bold()

		for _, block := range section.Blocks {
			para := w.AddParagraph()
			if block.Image == nil {
				para.AddText(block.Text)
				continue
			}

			data, err := scaleToWidth(block.Image.Data, displayWidthPx)
			if err != nil {
				return nil, fmt.Errorf("prepare image %q: %w", block.Image.Name, err)
			}
			if _, err := para.AddInlineDrawing(data); err != nil {
				return nil, fmt.Errorf("embed image %q: %w", block.Image.Name, err)
			}
		}
	}

	var raw bytes.Buffer
	if _, err := w.WriteTo(&raw); err != nil {
		return nil, fmt.Errorf("serialize report: %w", err)
	}
	return normalizeArchive(&raw)
}

// normalizeArchive rewrites the serialized archive with its parts in sorted
// name order and zeroed timestamps. The library emits parts in map-iteration
// order, so the raw buffer varies between runs over the same document.
func normalizeArchive(src *bytes.Buffer) (*bytes.Buffer, error) {
	zr, err := zip.NewReader(bytes.NewReader(src.Bytes()), int64(src.Len()))
	if err != nil {
		return nil, fmt.Errorf("reopen archive: %w", err)
	}

	parts := make([]*zip.File, len(zr.File))
	copy(parts, zr.File)
	sort.Slice(parts, func(i, j int) bool { return parts[i].Name < parts[j].Name })

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		if err := copyPart(zw, part); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return &buf, nil
}

func copyPart(zw *zip.Writer, part *zip.File) error {
	rc, err := part.Open()
	if err != nil {
		return fmt.Errorf("open part %q: %w", part.Name, err)
	}
	defer rc.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   part.Name,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("rewrite part %q: %w", part.Name, err)
	}
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("copy part %q: %w", part.Name, err)
	}
	return nil
}

// scaleToWidth resamples the image to the fixed display width, preserving
// aspect ratio. Images already at the target width pass through untouched.
func scaleToWidth(data []byte, width int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == width {
		return data, nil
	}

	height := bounds.Dy() * width / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode scaled image: %w", err)
	}
	return buf.Bytes(), nil
}
