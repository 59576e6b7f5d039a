// Package upload validates incoming image files before they enter the
// enhancement pipeline.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"server/internal/domain"
)

// DefaultMaxBytes caps uploads at 4 MiB unless configured otherwise.
const DefaultMaxBytes = 4 << 20

// Image is a validated upload ready for storage and provider submission.
type Image struct {
	Data     []byte
	MIME     string
	Filename string
}

// Validator enforces size and format limits on uploaded images.
type Validator struct {
	maxBytes int64
}

// NewValidator builds a Validator; maxBytes <= 0 selects DefaultMaxBytes.
func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{maxBytes: maxBytes}
}

// MaxBytes reports the configured size limit.
func (v *Validator) MaxBytes() int64 { return v.maxBytes }

// ReadPart consumes a multipart file part and validates it.
func (v *Validator) ReadPart(file multipart.File, header *multipart.FileHeader) (*Image, error) {
	if header != nil && header.Size > v.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrConfiguration, v.maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(file, v.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("upload: read image: %w", err)
	}
	name := ""
	if header != nil {
		name = header.Filename
	}
	return v.Validate(data, name)
}

// Validate checks raw bytes against the size limit and the allowed formats.
// The MIME type is sniffed from content, never trusted from the client.
func (v *Validator) Validate(data []byte, filename string) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image payload is empty", domain.ErrConfiguration)
	}
	if int64(len(data)) > v.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrConfiguration, v.maxBytes)
	}
	mime := sniffMIME(data)
	if !allowedMIME(mime) {
		return nil, fmt.Errorf("%w: unsupported image format %q, want jpeg, png or webp", domain.ErrConfiguration, mime)
	}
	return &Image{Data: data, MIME: mime, Filename: filename}, nil
}

func sniffMIME(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mime := http.DetectContentType(head)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

func allowedMIME(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

// Extension maps a validated MIME type to a stored file extension.
func Extension(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
