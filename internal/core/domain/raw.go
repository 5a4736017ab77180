package domain

// RawDocument is the stored source file of a document before extraction.
type RawDocument struct {
	// DocumentID links to the registered Document.
	DocumentID string

	// TenantID is the owning organisation.
	TenantID string

	// FileName is the canonical file name.
	FileName string

	// MIMEType is the content type (e.g., "text/html").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains upload- or crawl-specific key-value pairs.
	Metadata map[string]any
}
