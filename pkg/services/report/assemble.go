package report

import (
	"fmt"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
)

const (
	// Title is the document heading of every generated report.
	Title = "Subsidence Report"

	// MapUnavailableNote replaces the map image when no snapshot could be
	// produced.
	MapUnavailableNote = "Map image unavailable."

	// inspectionDateLayout renders dates as "DD Month YYYY".
	inspectionDateLayout = "02 January 2006"
)

// Assemble deterministically builds the report document. Section order is
// fixed; the photo section exists only when photos were uploaded. The
// coordinate line is omitted when coord is nil.
func Assemble(
	claim domain.ClaimInput,
	coord *domain.Coordinate,
	geologySummary string,
	mapImage *domain.MapImage,
) domain.ReportDocument {
	doc := domain.ReportDocument{Title: Title}

	info := domain.Section{
		Heading: "1. Property & Claim Info",
		Blocks: []domain.Block{
			domain.TextBlock("Insurer: " + claim.Insurer),
			domain.TextBlock("Claim Ref: " + claim.ClaimRef),
			domain.TextBlock("Address: " + claim.Address),
			domain.TextBlock("Eircode: " + claim.Eircode),
		},
	}
	if coord != nil {
		info.Blocks = append(info.Blocks, domain.TextBlock("Coordinates: "+coord.String()))
	}
	info.Blocks = append(info.Blocks,
		domain.TextBlock("Inspection Date: "+claim.InspectionDate.Format(inspectionDateLayout)))
	doc.Sections = append(doc.Sections, info)

	siteMap := domain.Section{Heading: "2. Site Location Map"}
	if mapImage != nil {
		siteMap.Blocks = append(siteMap.Blocks, domain.ImageBlock("site-map", mapImage.Data))
	} else {
		siteMap.Blocks = append(siteMap.Blocks, domain.TextBlock(MapUnavailableNote))
	}
	doc.Sections = append(doc.Sections, siteMap)

	doc.Sections = append(doc.Sections, domain.Section{
		Heading: "3. Geological Summary",
		Blocks:  []domain.Block{domain.TextBlock(geologySummary)},
	})

	if len(claim.HistoricalPhotos) > 0 {
		photos := domain.Section{Heading: "4. Historical Photos"}
		for i, photo := range claim.HistoricalPhotos {
			photos.Blocks = append(photos.Blocks,
				domain.TextBlock(fmt.Sprintf("Figure %d: %s", i+1, photo.Filename)),
				domain.ImageBlock(photo.Filename, photo.Data))
		}
		doc.Sections = append(doc.Sections, photos)
	}

	return doc
}
