package model

import (
	"errors"
	"strings"
)

const (
	MaxImageCount     = 20
	MaxImageSizeBytes = 10 * 1024 * 1024 // 10MB per photo
)

// ContentTypeJPEG is the encoding used for generated previews.
const ContentTypeJPEG = "image/jpeg"

// Error codes for HTTP responses
const (
	CodeImagesRejected = "IMAGES_REJECTED"
	CodeTooManyImages  = "TOO_MANY_IMAGES"
)

// User-facing messages for the images control
const (
	MsgImagesRejected = "Some files were rejected. Only images under 10MB are allowed."
	MsgTooManyImages  = "Maximum 20 photos allowed"
)

// Domain errors for image batches
var (
	ErrImagesRejected = errors.New("some images were rejected")
	ErrTooManyImages  = errors.New("too many images")
)

// ImageFile is a user-selected file as handed over by the host runtime.
// ContentType and Size are the declared metadata; Data holds the bytes when they
// were read (files over the size limit may arrive without them).
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// ImageMeta describes an attachment without its bytes.
type ImageMeta struct {
	ID          string `json:"id" db:"attachment_id"`
	Name        string `json:"name" db:"name"`
	ContentType string `json:"content_type" db:"content_type"`
	Size        int64  `json:"size" db:"size_bytes"`
}

// IsImageContentType reports whether the declared content kind indicates an image.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// IsAcceptableImage applies the per-file upload filter: image content kind and size cap.
func IsAcceptableImage(f ImageFile) bool {
	return IsImageContentType(f.ContentType) && f.Size >= 0 && f.Size <= MaxImageSizeBytes
}
