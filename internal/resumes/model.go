package resumes

import "time"

// Record is an uploaded resume owned by a single identity. Records are never
// mutated after creation.
type Record struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId" validate:"required"`
	URL           string    `json:"url" validate:"required"`
	PublicID      string    `json:"publicId" validate:"required"`
	OriginalName  string    `json:"originalName" validate:"required"`
	FileType      string    `json:"fileType" validate:"required,oneof=application/pdf application/vnd.openxmlformats-officedocument.wordprocessingml.document text/plain"`
	Size          int64     `json:"size" validate:"gt=0"`
	ExtractedText string    `json:"extractedText"`
	CreatedAt     time.Time `json:"createdAt" validate:"required"`
}
