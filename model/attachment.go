package model

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedAttachment is returned for files that are neither images
// nor PDFs. Validation happens before any request; rejection leaves the
// conversation untouched.
var ErrUnsupportedAttachment = errors.New("only image or PDF files are supported")

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Attachment is a staged contract document awaiting submission. At most
// one is staged at a time; staging a new one replaces the prior one.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
	Description string
}

// LoadAttachment reads and validates a user-selected file. Acceptance is
// by filename suffix first, content sniffing second, matching the
// backend's own acceptance rule.
func LoadAttachment(path string) (*Attachment, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var contentType string
	switch {
	case ext == ".pdf":
		contentType = "application/pdf"
	default:
		contentType = imageExtensions[ext]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if contentType == "" {
		sniffed := http.DetectContentType(data)
		switch {
		case strings.HasPrefix(sniffed, "image/"):
			contentType = sniffed
		case sniffed == "application/pdf":
			contentType = sniffed
		default:
			return nil, ErrUnsupportedAttachment
		}
	}

	return &Attachment{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// IsPDF reports whether the staged file is a PDF rather than an image.
func (a *Attachment) IsPDF() bool {
	return a.ContentType == "application/pdf"
}

// PreviewLabel is the inline placeholder shown in the input area while the
// attachment is staged. Images show name and size; PDFs just a marker.
func (a *Attachment) PreviewLabel() string {
	if a.IsPDF() {
		return fmt.Sprintf("📄 %s (PDF)", a.Filename)
	}
	return fmt.Sprintf("🖼  %s (%s)", a.Filename, formatSize(len(a.Data)))
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// StageAttachment stages a validated attachment, replacing any prior one.
func (m *Model) StageAttachment(a *Attachment) {
	m.Attachment = a
}

// ClearAttachment removes the staged attachment and its preview. No effect
// on the conversation.
func (m *Model) ClearAttachment() {
	m.Attachment = nil
}
