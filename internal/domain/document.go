// File: internal/domain/document.go
package domain

// IngestionStatus is the processing state reported by the ingestion functions.
type IngestionStatus string

const (
	StatusProcessed  IngestionStatus = "processed"
	StatusProcessing IngestionStatus = "processing"
	StatusFailed     IngestionStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s IngestionStatus) Valid() bool {
	switch s {
	case StatusProcessed, StatusProcessing, StatusFailed:
		return true
	}
	return false
}

// IngestedDataInfo is a read-through projection of a document held by the
// Azure Functions ingestion API. It is never mutated locally.
type IngestedDataInfo struct {
	ID         string                 `json:"id"`
	FileName   string                 `json:"fileName"`
	FileType   string                 `json:"fileType"`
	UploadDate string                 `json:"uploadDate"`
	Size       int64                  `json:"size"`
	Status     IngestionStatus        `json:"status"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
