package onboarding

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type FileKind string

const (
	FileKindPDF           FileKind = "pdf"
	FileKindImage         FileKind = "image"
	FileKindCameraCapture FileKind = "camera-capture"
)

// ParseFileKind accepts the three upload kinds; "camera" is an alias of camera-capture.
func ParseFileKind(raw string) (FileKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pdf":
		return FileKindPDF, true
	case "image":
		return FileKindImage, true
	case "camera", "camera-capture":
		return FileKindCameraCapture, true
	default:
		return "", false
	}
}

type Document struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	FileName      string    `json:"file_name"`
	FileKind      FileKind  `json:"file_kind"`
	MimeType      string    `json:"mime_type,omitempty"`
	ByteSize      int64     `json:"byte_size"`
	UploadedAt    time.Time `json:"uploaded_at"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	Summary       string    `json:"summary"`
	PreviewRef    string    `json:"preview_ref"`
	LocalOnly     bool      `json:"local_only"`
}

func (d Document) Owner() uuid.UUID { return d.OwnerID }
