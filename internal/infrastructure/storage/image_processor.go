package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage is returned for content that is not an accepted photo.
var ErrInvalidImage = errors.New("invalid image")

// ProcessedImage is an encoded photo ready for upload.
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Extension   string
}

type ImageProcessor struct {
	MaxBytes     int64 // default: 5MB
	MaxDimension int   // longest side in pixels
}

func NewImageProcessor(maxBytes int64, maxDimension int) *ImageProcessor {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	if maxDimension <= 0 {
		maxDimension = 800
	}
	return &ImageProcessor{MaxBytes: maxBytes, MaxDimension: maxDimension}
}

// Validate accepts JPEG/PNG up to MaxBytes.
func (p *ImageProcessor) Validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if int64(len(data)) > p.MaxBytes {
		return fmt.Errorf("%w: exceeds %d bytes", ErrInvalidImage, p.MaxBytes)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: not an image: %v", ErrInvalidImage, err)
	}
	switch format {
	case "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("%w: format %s not allowed (only jpeg/png)", ErrInvalidImage, format)
	}
}

// Process fits the photo inside MaxDimension and re-encodes it in its own
// format (JPEG at quality 90).
func (p *ImageProcessor) Process(data []byte) (*ProcessedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if b.Dx() > p.MaxDimension || b.Dy() > p.MaxDimension {
		img = imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
	}

	out := &ProcessedImage{ContentType: "image/jpeg", Extension: "jpg"}
	encFormat := imaging.JPEG
	if format == "png" {
		out.ContentType = "image/png"
		out.Extension = "png"
		encFormat = imaging.PNG
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, encFormat, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("cannot encode %s: %w", format, err)
	}
	out.Data = buf.Bytes()
	return out, nil
}
