package extractor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageSide is the longest side in pixels of an image sent to a vision model
	MaxImageSide = 1024
	// JPEGQuality of the prepared image
	JPEGQuality = 85
)

var supportedMimeTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// PrepareImage decodes an image, downscales it to fit MaxImageSide and re-encodes it as jpeg
func PrepareImage(bs []byte) ([]byte, error) {
	mtype := mimetype.Detect(bs)
	if !mimetype.EqualsAny(mtype.String(), supportedMimeTypes...) {
		return nil, fmt.Errorf("unsupported image type %s", mtype.String())
	}
	src, _, err := image.Decode(bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if side := max(width, height); side > MaxImageSide {
		width = max(1, width*MaxImageSide/side)
		height = max(1, height*MaxImageSide/side)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadImage reads and prepares an image file
func ReadImage(path string) ([]byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, err
	}
	return PrepareImage(bs)
}
