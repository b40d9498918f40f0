// Package extract turns uploaded documents into plain text for ingestion.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedType reports a document type no extractor handles.
var ErrUnsupportedType = errors.New("unsupported document type")

// Extractor converts a single document format to plain text. PDF and DOCX
// extraction is pluggable so deployments can wire their preferred backend.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Registry dispatches document bytes to an extractor by MIME type.
type Registry struct {
	byType map[string]Extractor
}

// NewRegistry builds a registry that handles plain text and markdown
// inline. Additional formats are added with Register.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]Extractor)}
}

// Register installs an extractor for a MIME type, replacing any existing
// one. The media type is normalized, parameters are ignored.
func (r *Registry) Register(mediaType string, e Extractor) {
	normalized, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		normalized = strings.ToLower(strings.TrimSpace(mediaType))
	}
	r.byType[normalized] = e
}

// Extract converts document bytes to plain text. The content type may
// carry parameters (e.g. charset); when empty it is inferred from the
// filename extension. Unknown types return ErrUnsupportedType.
func (r *Registry) Extract(ctx context.Context, data []byte, contentType, filename string) (string, error) {
	mediaType := normalizeType(contentType, filename)
	if mediaType == "" {
		return "", fmt.Errorf("%w: unable to determine document type for %q", ErrUnsupportedType, filename)
	}

	if isInlineText(mediaType) {
		return decodeText(data)
	}

	extractor, ok := r.byType[mediaType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}

	extracted, err := extractor.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extracting %s document: %w", mediaType, err)
	}
	return extracted, nil
}

func normalizeType(contentType, filename string) string {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			// Multipart uploads often arrive as octet-stream; fall through
			// to the extension in that case.
			if mediaType != "application/octet-stream" {
				return mediaType
			}
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return ""
}

func isInlineText(mediaType string) bool {
	switch mediaType {
	case "text/plain", "text/markdown":
		return true
	}
	return false
}

// decodeText validates UTF-8 and strips a leading BOM.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text document is not valid UTF-8", ErrUnsupportedType)
	}
	return string(data), nil
}
