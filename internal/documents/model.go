package documents

import "time"

// Document is an uploaded CV or resume. StorageKey is the path applications
// reference in their cv and resume fields.
type Document struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	FileName         string     `json:"fileName"`
	MimeType         string     `json:"mimeType"`
	SizeBytes        int64      `json:"sizeBytes"`
	StorageProvider  string     `json:"storageProvider"`
	StorageKey       string     `json:"filePath"`
	ExtractedTextKey string     `json:"-"`
	ExtractedAt      *time.Time `json:"extractedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// HasText reports whether extracted text is available for reviewers.
func (d Document) HasText() bool { return d.ExtractedTextKey != "" }
