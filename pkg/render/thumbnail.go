package render

import (
	"bytes"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/wobble/pkg/errors"
)

// DefaultThumbnailSize bounds the longer thumbnail edge in pixels.
const DefaultThumbnailSize = 256

// Thumbnail downsizes a rendered PNG so its longer edge is at most maxSize
// pixels, keeping the aspect ratio.
func Thumbnail(png []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "thumbnail size must be positive, got %d", maxSize)
	}
	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderingFailure, err, "decode png")
	}
	thumb := imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderingFailure, err, "encode thumbnail")
	}
	return buf.Bytes(), nil
}
