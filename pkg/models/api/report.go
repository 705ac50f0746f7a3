package api

// ReportPreview mirrors the key pipeline artifacts back to the caller
// without generating the document: the resolved location, the geology
// sentence, and the map snapshot when one was produced.
type ReportPreview struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Location       string  `json:"location"`
	GeologySummary string  `json:"geology_summary"`
	MapAvailable   bool    `json:"map_available"`
	MapImage       string  `json:"map_image,omitempty"` // base64 PNG/JPEG bytes
	PhotoCount     int     `json:"photo_count"`
}

// Error is the uniform error envelope for halting failures.
type Error struct {
	Error string `json:"error"`
}
