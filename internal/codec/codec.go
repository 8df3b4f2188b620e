// Package codec decodes uploaded image bytes into pixel grids and encodes
// rendered results back into transportable bytes.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	apperrors "go-image-differ/internal/errors"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// Register decoders beyond the stdlib set handled by imaging.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Mode selects the color depth an image is decoded into.
type Mode int

const (
	// ModeColor decodes into a 3-channel (plus alpha) pixel grid.
	ModeColor Mode = iota
	// ModeGrayscale decodes into a single-channel intensity grid.
	ModeGrayscale
)

// Format selects the encoding of rendered output images.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// Decode parses encoded image bytes into a pixel grid. ModeColor yields an
// *image.NRGBA, ModeGrayscale an *image.Gray.
func Decode(data []byte, mode Mode) (image.Image, error) {
	if len(data) == 0 {
		return nil, apperrors.NewDecodeError("image data is empty", nil)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to decode image", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, apperrors.NewDecodeError("decoding yielded an empty image", nil)
	}

	switch mode {
	case ModeColor:
		return imaging.Clone(img), nil
	case ModeGrayscale:
		return ToGray(img), nil
	default:
		return nil, apperrors.NewDecodeError(fmt.Sprintf("unsupported decode mode: %d", mode), nil)
	}
}

// Encode serializes a pixel grid into the requested format. PNG is lossless
// and is the format used for overlays handed back to clients.
func Encode(img image.Image, format Format) ([]byte, error) {
	if img == nil {
		return nil, apperrors.NewEncodeError("cannot encode nil image", nil)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, apperrors.NewEncodeError("cannot encode empty image", nil)
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG)
	case FormatJPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG)
	case FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Lossless: true})
	default:
		return nil, apperrors.NewEncodeError(fmt.Sprintf("unsupported encode format: %q", format), nil)
	}
	if err != nil {
		return nil, apperrors.NewEncodeError(fmt.Sprintf("failed to encode image as %s", format), err)
	}

	return buf.Bytes(), nil
}

// ToGray reduces an image to single-channel intensity using the standard
// luminance weights (0.299 R + 0.587 G + 0.114 B).
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < bounds.Dy(); y++ {
			srcRow := nrgba.Pix[y*nrgba.Stride:]
			dstRow := gray.Pix[y*gray.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				r := float64(srcRow[x*4])
				g := float64(srcRow[x*4+1])
				b := float64(srcRow[x*4+2])
				dstRow[x] = uint8(0.299*r + 0.587*g + 0.114*b + 0.5)
			}
		}
		return gray
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(lum + 0.5)})
		}
	}
	return gray
}
