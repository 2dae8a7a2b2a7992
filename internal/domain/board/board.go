// Package board provides data-URI helpers for whiteboard-type virtual
// files. A whiteboard's content is either empty or a single data-URI
// encoded raster image covering the whole drawing surface; each finished
// drawing gesture re-encodes the entire surface.
package board

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURIPrefix = "data:"

// IsDataURI reports whether content looks like a data-URI image.
func IsDataURI(content string) bool {
	if !strings.HasPrefix(content, dataURIPrefix) {
		return false
	}
	return strings.Contains(content, ";base64,")
}

// Encode wraps raw image bytes into a data URI with the given MIME type.
func Encode(mime string, raw []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw))
}

// Decode extracts the MIME type and raw image bytes from a data URI.
// Empty content decodes to an empty surface.
func Decode(content string) (mime string, raw []byte, err error) {
	if content == "" {
		return "", nil, nil
	}
	rest, ok := strings.CutPrefix(content, dataURIPrefix)
	if !ok {
		return "", nil, fmt.Errorf("whiteboard content is not a data URI")
	}
	mime, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("whiteboard content is not base64 encoded")
	}
	raw, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode whiteboard image: %w", err)
	}
	return mime, raw, nil
}
