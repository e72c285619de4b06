package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/username/extractos/backend/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"text/plain":               true,
	"text/html":                true,
	"message/rfc822":           true, // saved notification emails
	"application/octet-stream": false,
	"application/pdf":          false, // statements must be copied out as text
}

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if allowed, exists := AllowedClientContentTypes[mediaType]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("%w: client-declared file type '%s' is not allowed for statement upload", ErrValidationFailed, contentType)
	}
	return nil
}

// isBinaryContent reports null bytes or invalid UTF-8, neither of which a text statement has.
func isBinaryContent(buf []byte) bool {
	if bytes.IndexByte(buf, 0) != -1 {
		return true
	}
	// a multi-byte rune may be cut at the end of the sniff buffer
	for i := 0; i < utf8.UTFMax && len(buf) > 0; i++ {
		if utf8.Valid(buf) {
			return false
		}
		buf = buf[:len(buf)-1]
	}
	return true
}

// ValidateFileContentByMagicBytes sniffs the first KiB of file, rejects anything
// that is not text and rewinds file for the caller.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 1024)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// Reset so the caller can read the full file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if n == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrValidationFailed)
	}

	if isBinaryContent(buffer[:n]) {
		logger.L.Warn("File rejected: Binary content detected in text upload")
		return "application/octet-stream", fmt.Errorf("%w: file appears to be binary, not text", ErrValidationFailed)
	}

	detectedContentType := http.DetectContentType(buffer[:n])
	detectedContentType = strings.ToLower(strings.Split(detectedContentType, ";")[0])

	allowedDetectedTypes := map[string]bool{
		"text/plain": true,
		"text/html":  true,
		"text/xml":   true,
	}
	if !allowedDetectedTypes[detectedContentType] {
		logger.L.Warn("Disallowed detected file content type", "detectedContentType", detectedContentType)
		return detectedContentType, fmt.Errorf("%w: detected file content type '%s' is not allowed", ErrValidationFailed, detectedContentType)
	}

	logger.L.Debug("File content type validated", "detectedContentType", detectedContentType)
	return detectedContentType, nil
}
