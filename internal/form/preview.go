package form

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"

	"propertyad/internal/model"
)

const (
	DefaultPreviewDimension = 400
	DefaultPreviewQuality   = 80
)

var ErrEmptyImage = errors.New("image has no data")

// ImagePreviewer turns an image into a data URL, downscaled to fit a square box.
type ImagePreviewer struct {
	maxDimension int
	quality      int
}

// NewImagePreviewer returns a previewer; non-positive arguments select the defaults.
func NewImagePreviewer(maxDimension, quality int) *ImagePreviewer {
	if maxDimension <= 0 {
		maxDimension = DefaultPreviewDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultPreviewQuality
	}
	return &ImagePreviewer{maxDimension: maxDimension, quality: quality}
}

// Preview decodes the image and re-encodes a thumbnail as JPEG. Formats the
// decoder does not understand are passed through as a data URL of the original bytes.
func (p *ImagePreviewer) Preview(ctx context.Context, f model.ImageFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(f.Data) == 0 {
		return "", ErrEmptyImage
	}

	img, err := imaging.Decode(bytes.NewReader(f.Data), imaging.AutoOrientation(true))
	if err != nil {
		return dataURL(f.ContentType, f.Data), nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	thumb := imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return dataURL(model.ContentTypeJPEG, buf.Bytes()), nil
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
