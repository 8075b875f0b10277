package sources

import "time"

// Source is an uploaded piece of product source material (a spec sheet,
// datasheet, or marketing brief) used to ground AI draft generation.
type Source struct {
	ID               string
	UserID           string
	ProductID        string
	FileName         string
	OriginalFilename string
	MimeType         string
	ContentType      string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
}
