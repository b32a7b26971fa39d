package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
}

// AllowedContentTypes maps detected MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
}

// ExtractionStatus represents the lifecycle of an invoice record.
type ExtractionStatus string

const (
	ExtractionStatusPending    ExtractionStatus = "pending"
	ExtractionStatusProcessing ExtractionStatus = "processing"
	ExtractionStatusCompleted  ExtractionStatus = "completed"
	ExtractionStatusFailed     ExtractionStatus = "failed"
)

// ValidExtractionStatuses is the set of accepted status filter values.
var ValidExtractionStatuses = map[ExtractionStatus]bool{
	ExtractionStatusPending:    true,
	ExtractionStatusProcessing: true,
	ExtractionStatusCompleted:  true,
	ExtractionStatusFailed:     true,
}

// Provider names accepted by the extraction endpoints.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// SupportedProviders lists provider names a client may request.
var SupportedProviders = map[string]bool{
	ProviderGemini: true,
	ProviderGroq:   true,
}

// Sentinel values stored in extraction_model besides provider names.
const (
	ExtractionModelMock   = "mock"
	ExtractionModelManual = "manual"
)

// StorageDriver selects the blob store implementation.
type StorageDriver string

const (
	StorageDriverS3    StorageDriver = "s3"
	StorageDriverLocal StorageDriver = "local"
)
