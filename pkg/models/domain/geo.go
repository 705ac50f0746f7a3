package domain

import "fmt"

// Coordinate is a WGS 84 latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lng float64
}

// String renders the coordinate at the fixed 5-decimal precision used
// throughout report text.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.5f, %.5f", c.Lat, c.Lng)
}

// MapImage is a rendered map snapshot anchored to a resolved coordinate.
// It is owned by the pipeline run that produced it and never reused.
type MapImage struct {
	Data []byte
}
