package docwriter

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"testing"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testDocument(t *testing.T) domain.ReportDocument {
	return domain.ReportDocument{
		Title: "Subsidence Report",
		Sections: []domain.Section{
			{
				Heading: "1. Property & Claim Info",
				Blocks: []domain.Block{
					domain.TextBlock("Insurer: Acme Insurance"),
					domain.TextBlock("Coordinates: 53.34000, -6.25000"),
				},
			},
			{
				Heading: "2. Site Location Map",
				Blocks:  []domain.Block{domain.ImageBlock("site-map", pngBytes(t, 64, 48))},
			},
			{
				Heading: "3. Geological Summary",
				Blocks:  []domain.Block{domain.TextBlock("Geological information unavailable.")},
			},
			{
				Heading: "4. Historical Photos",
				Blocks: []domain.Block{
					domain.TextBlock("Figure 1: crack.png"),
					domain.ImageBlock("crack.png", pngBytes(t, 32, 32)),
				},
			},
		},
	}
}

func documentXML(t *testing.T, buf *bytes.Buffer) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatal("word/document.xml missing from archive")
	return ""
}

func TestWrite_ProducesDocxArchive(t *testing.T) {
	buf, err := Write(testDocument(t))
	require.NoError(t, err)

	// .docx is a zip container.
	assert.Equal(t, []byte{'P', 'K', 0x03, 0x04}, buf.Bytes()[:4])

	xml := documentXML(t, buf)
	assert.Contains(t, xml, "Subsidence Report")
	assert.Contains(t, xml, "1. Property &amp; Claim Info")
	assert.Contains(t, xml, "Coordinates: 53.34000, -6.25000")
	assert.Contains(t, xml, "Geological information unavailable.")
	assert.Contains(t, xml, "Figure 1: crack.png")
}

func TestWrite_SectionOrderPreserved(t *testing.T) {
	buf, err := Write(testDocument(t))
	require.NoError(t, err)
	xml := documentXML(t, buf)

	idxInfo := bytes.Index([]byte(xml), []byte("1. Property"))
	idxMap := bytes.Index([]byte(xml), []byte("2. Site Location Map"))
	idxGeo := bytes.Index([]byte(xml), []byte("3. Geological Summary"))
	idxPhotos := bytes.Index([]byte(xml), []byte("4. Historical Photos"))

	require.GreaterOrEqual(t, idxInfo, 0)
	assert.Greater(t, idxMap, idxInfo)
	assert.Greater(t, idxGeo, idxMap)
	assert.Greater(t, idxPhotos, idxGeo)
}

func TestWrite_Deterministic(t *testing.T) {
	first, err := Write(testDocument(t))
	require.NoError(t, err)
	second, err := Write(testDocument(t))
	require.NoError(t, err)

	// Repeated serialization of the same document must match byte for byte.
	assert.Equal(t, first.Bytes(), second.Bytes())

	zr, err := zip.NewReader(bytes.NewReader(first.Bytes()), int64(first.Len()))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.True(t, sort.StringsAreSorted(names), "archive parts not in sorted order: %v", names)
}

func TestWrite_InvalidImageFails(t *testing.T) {
	doc := domain.ReportDocument{
		Title: "Subsidence Report",
		Sections: []domain.Section{
			{
				Heading: "2. Site Location Map",
				Blocks:  []domain.Block{domain.ImageBlock("broken", []byte("not an image"))},
			},
		},
	}

	_, err := Write(doc)
	assert.Error(t, err)
}

func TestScaleToWidth(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		wantH      int
	}{
		{"downscale", 1056, 792, 396},
		{"upscale", 264, 200, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scaled, err := scaleToWidth(pngBytes(t, tt.srcW, tt.srcH), displayWidthPx)
			require.NoError(t, err)

			cfg, _, err := image.DecodeConfig(bytes.NewReader(scaled))
			require.NoError(t, err)
			assert.Equal(t, displayWidthPx, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
		})
	}
}

func TestScaleToWidth_ExactWidthPassthrough(t *testing.T) {
	src := pngBytes(t, displayWidthPx, 100)
	scaled, err := scaleToWidth(src, displayWidthPx)
	require.NoError(t, err)
	assert.Equal(t, src, scaled)
}
