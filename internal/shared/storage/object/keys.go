package object

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidFileName is returned for empty names or names with traversal segments.
var ErrInvalidFileName = errors.New("invalid file name")

// OwnerKey returns a path-safe namespace for an owner ID.
func OwnerKey(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])
}

// SanitizeFileName flattens path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// NewKey builds a unique storage key for fileName under the owner's namespace.
func NewKey(ownerID, fileName string) (string, error) {
	clean, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(OwnerKey(ownerID), uuid.NewString()+"_"+clean), nil
}

// Sniff detects the content type from the first 512 bytes of r and returns a
// reader that replays them.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}
