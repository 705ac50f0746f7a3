package domain

import "time"

// Photo is an uploaded historical photograph, kept in memory for the
// lifetime of a single pipeline run.
type Photo struct {
	Filename string
	Data     []byte
}

// ClaimInput carries everything the assessor entered on the submission
// form. It is created once per submission and never mutated.
type ClaimInput struct {
	Insurer          string
	ClaimRef         string
	Address          string
	Eircode          string
	InspectionDate   time.Time
	HistoricalPhotos []Photo
}
