package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Uma Example</w:t></w:r></w:p>
<w:p><w:r><w:t>Senior Go Engineer</w:t></w:r></w:p>
</w:body>
</w:document>`

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func minimalDocx(t *testing.T) []byte {
	return buildZip(t, map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	})
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(), minimalDocx(t), "application/zip", "cv.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if !strings.Contains(text, "Uma Example") || !strings.Contains(text, "Senior Go Engineer") {
		t.Fatalf("unexpected text %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Fatalf("expected paragraph breaks, got %q", text)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})

	_, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeMimeType(t *testing.T) {
	tests := []struct {
		mime, name, want string
	}{
		{"application/pdf; charset=binary", "cv.pdf", MimePDF},
		{"application/octet-stream", "cv.doc", MimeDOC},
		{"application/zip", "cv.docx", MimeDOCX},
		{"text/plain; charset=utf-8", "cv.txt", "text/plain"},
	}
	for _, tt := range tests {
		if got := NormalizeMimeType(tt.mime, tt.name, nil); got != tt.want {
			t.Fatalf("NormalizeMimeType(%q, %q) = %q, want %q", tt.mime, tt.name, got, tt.want)
		}
	}
}

func TestTextKey(t *testing.T) {
	if got := TextKey("abc/cv.pdf"); got != "abc/cv.pdf.extracted.txt" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestExtractTextFromBytes_BlankDocxIsEmpty(t *testing.T) {
	blank := buildZip(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml": `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p></w:p></w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	})
	_, err := ExtractTextFromBytes(context.Background(), blank, MimeDOCX, "cv.docx")
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}
