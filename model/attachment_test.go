package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// Minimal valid PNG header, enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestLoadAttachmentByExtension(t *testing.T) {
	path := writeTemp(t, "contract.pdf", []byte("not really a pdf"))
	att, err := LoadAttachment(path)
	if err != nil {
		t.Fatalf("LoadAttachment: %v", err)
	}
	if att.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q", att.ContentType)
	}
	if !att.IsPDF() {
		t.Error("IsPDF() = false for .pdf")
	}
	if att.Filename != "contract.pdf" {
		t.Errorf("Filename = %q", att.Filename)
	}
}

func TestLoadAttachmentSniffsUnknownExtension(t *testing.T) {
	path := writeTemp(t, "scan.dat", pngHeader)
	att, err := LoadAttachment(path)
	if err != nil {
		t.Fatalf("LoadAttachment: %v", err)
	}
	if att.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", att.ContentType)
	}
}

func TestLoadAttachmentRejectsUnsupported(t *testing.T) {
	path := writeTemp(t, "notes.txt", []byte("plain text, not a document scan"))
	if _, err := LoadAttachment(path); !errors.Is(err, ErrUnsupportedAttachment) {
		t.Errorf("err = %v, want ErrUnsupportedAttachment", err)
	}
}

func TestPreviewLabel(t *testing.T) {
	image := &Attachment{Filename: "lease.jpg", ContentType: "image/jpeg", Data: make([]byte, 2048)}
	if got := image.PreviewLabel(); got != "🖼  lease.jpg (2.0 KB)" {
		t.Errorf("image preview = %q", got)
	}

	pdf := &Attachment{Filename: "lease.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	if got := pdf.PreviewLabel(); got != "📄 lease.pdf (PDF)" {
		t.Errorf("pdf preview = %q", got)
	}
}
