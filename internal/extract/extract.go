// Package extract turns uploaded CVs into plain text for reviewers.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"jobportal-backend/internal/shared/storage/object"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC  = "application/msword"
)

// maxSourceBytes caps how much of a stored upload is read for extraction.
const maxSourceBytes = 10 << 20

var (
	// ErrUnsupported is returned for formats that carry no extractable text.
	ErrUnsupported = errors.New("unsupported mime type")
	// ErrEmpty is returned when a supported file yields only whitespace,
	// such as a scanned PDF.
	ErrEmpty = errors.New("no text in document")
	// ErrTooLarge is returned for sources over maxSourceBytes.
	ErrTooLarge = errors.New("document too large to extract")
)

// TextKey is where the extracted copy of fileKey is stored.
func TextKey(fileKey string) string {
	return fileKey + ".extracted.txt"
}

// ExtractText reads a stored object, extracts its text and stores the text
// next to it under TextKey.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", fileKey, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, maxSourceBytes+1))
	if err != nil {
		return "", fmt.Errorf("extract %s: read: %w", fileKey, err)
	}
	if len(raw) > maxSourceBytes {
		return "", fmt.Errorf("extract %s: %w", fileKey, ErrTooLarge)
	}

	text, err := ExtractTextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("extract %s (%s): %w", fileKey, mimeType, err)
	}

	if _, err := store.SaveWithKey(ctx, TextKey(fileKey), "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("extract %s: save: %w", fileKey, err)
	}
	return text, nil
}

// ExtractTextFromBytes extracts text from an in-memory payload.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var (
		text string
		err  error
	)
	switch normalized := NormalizeMimeType(mimeType, fileName, data); normalized {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, normalized)
	}
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// NormalizeMimeType strips parameters and resolves generic zip and binary
// types to the office format the payload or file name indicates.
func NormalizeMimeType(mimeType, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case "application/zip":
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
		if strings.EqualFold(filepath.Ext(fileName), ".docx") {
			return MimeDOCX
		}
	case "application/octet-stream", "application/x-ole-storage", "":
		if strings.EqualFold(filepath.Ext(fileName), ".doc") {
			return MimeDOC
		}
	}
	return clean
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return MimeDOCX
		}
	}
	return ""
}
