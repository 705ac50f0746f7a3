package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
	"github.com/claimworks/subsidence-report/pkg/services/geology"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaim() domain.ClaimInput {
	return domain.ClaimInput{
		Insurer:        "Acme Insurance",
		ClaimRef:       "CLM-2025-0042",
		Address:        "1 Example Terrace, Dublin 2",
		Eircode:        "D02AF30",
		InspectionDate: time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC),
	}
}

func TestAssemble_FullDocument(t *testing.T) {
	coord := &domain.Coordinate{Lat: 53.34, Lng: -6.25}
	mapImage := &domain.MapImage{Data: []byte("map-bytes")}

	got := Assemble(testClaim(), coord, "The underlying bedrock geology is primarily limestone.", mapImage)

	want := domain.ReportDocument{
		Title: "Subsidence Report",
		Sections: []domain.Section{
			{
				Heading: "1. Property & Claim Info",
				Blocks: []domain.Block{
					domain.TextBlock("Insurer: Acme Insurance"),
					domain.TextBlock("Claim Ref: CLM-2025-0042"),
					domain.TextBlock("Address: 1 Example Terrace, Dublin 2"),
					domain.TextBlock("Eircode: D02AF30"),
					domain.TextBlock("Coordinates: 53.34000, -6.25000"),
					domain.TextBlock("Inspection Date: 07 March 2025"),
				},
			},
			{
				Heading: "2. Site Location Map",
				Blocks:  []domain.Block{domain.ImageBlock("site-map", []byte("map-bytes"))},
			},
			{
				Heading: "3. Geological Summary",
				Blocks:  []domain.Block{domain.TextBlock("The underlying bedrock geology is primarily limestone.")},
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_CoordinatePrecision(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want string
	}{
		{"round values", 53.34, -6.25, "Coordinates: 53.34000, -6.25000"},
		{"long fraction", 53.123456789, -6.987654321, "Coordinates: 53.12346, -6.98765"},
		{"integers", 53, -6, "Coordinates: 53.00000, -6.00000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord := &domain.Coordinate{Lat: tt.lat, Lng: tt.lng}
			doc := Assemble(testClaim(), coord, geology.Fallback, nil)
			assert.Equal(t, tt.want, doc.Sections[0].Blocks[4].Text)
		})
	}
}

func TestAssemble_UnresolvedCoordinateOmitsLine(t *testing.T) {
	doc := Assemble(testClaim(), nil, geology.Fallback, nil)

	for _, block := range doc.Sections[0].Blocks {
		assert.NotContains(t, block.Text, "Coordinates:")
	}
}

func TestAssemble_MapUnavailable(t *testing.T) {
	doc := Assemble(testClaim(), &domain.Coordinate{Lat: 53.34, Lng: -6.25}, geology.Fallback, nil)

	siteMap := doc.Sections[1]
	require.Len(t, siteMap.Blocks, 1)
	assert.Equal(t, "Map image unavailable.", siteMap.Blocks[0].Text)
	assert.Nil(t, siteMap.Blocks[0].Image)
}

func TestAssemble_NoPhotosNoSection(t *testing.T) {
	doc := Assemble(testClaim(), &domain.Coordinate{Lat: 53.34, Lng: -6.25}, geology.Fallback, nil)

	require.Len(t, doc.Sections, 3)
	for _, section := range doc.Sections {
		assert.NotEqual(t, "4. Historical Photos", section.Heading)
	}
}

func TestAssemble_PhotoCaptionsInUploadOrder(t *testing.T) {
	claim := testClaim()
	for i := 1; i <= 3; i++ {
		claim.HistoricalPhotos = append(claim.HistoricalPhotos, domain.Photo{
			Filename: fmt.Sprintf("crack-%d.jpg", i),
			Data:     []byte{byte(i)},
		})
	}

	doc := Assemble(claim, &domain.Coordinate{Lat: 53.34, Lng: -6.25}, geology.Fallback, nil)

	require.Len(t, doc.Sections, 4)
	photos := doc.Sections[3]
	assert.Equal(t, "4. Historical Photos", photos.Heading)
	require.Len(t, photos.Blocks, 6) // caption + image per photo

	for i := 0; i < 3; i++ {
		caption := photos.Blocks[i*2]
		image := photos.Blocks[i*2+1]
		assert.Equal(t, fmt.Sprintf("Figure %d: crack-%d.jpg", i+1, i+1), caption.Text)
		require.NotNil(t, image.Image)
		assert.Equal(t, fmt.Sprintf("crack-%d.jpg", i+1), image.Image.Name)
		assert.Equal(t, []byte{byte(i + 1)}, image.Image.Data)
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	claim := testClaim()
	claim.HistoricalPhotos = []domain.Photo{{Filename: "a.png", Data: []byte{1, 2, 3}}}
	coord := &domain.Coordinate{Lat: 53.34, Lng: -6.25}
	mapImage := &domain.MapImage{Data: []byte("map")}

	first := Assemble(claim, coord, geology.Fallback, mapImage)
	second := Assemble(claim, coord, geology.Fallback, mapImage)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated assembly differs (-first +second):\n%s", diff)
	}
}
