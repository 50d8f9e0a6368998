package models

// SourceType identifies where a knowledge base item came from.
type SourceType string

const (
	SourceDocumentation SourceType = "documentation"
	SourceQASite        SourceType = "qa_site"
	SourceCodeHost      SourceType = "code_host"
	SourceCurated       SourceType = "curated"
)

// ContentItem is a unit of scraped or curated text, the atomic unit of the
// knowledge base. Items are immutable once scored; collection only ever
// appends.
type ContentItem struct {
	Model

	Title string `json:"title" gorm:"not null"`
	Body  string `json:"body" gorm:"not null"`

	SourceType SourceType `json:"source_type" gorm:"not null;index"`
	SourceURL  string     `json:"source_url,omitempty"`

	// QualityScore is always in [0,1], assigned at creation time.
	QualityScore float64 `json:"quality_score" gorm:"not null"`
}
