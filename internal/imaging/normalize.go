package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxHeight is the height cap for stored images. Width scales with the
// aspect ratio; images are never upscaled.
const MaxHeight = 800

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// Normalize decodes an image, flattens any transparency onto a white
// background, downscales to MaxHeight if taller, and re-encodes as
// JPEG. Callers should treat a failure as "no image", not as fatal.
func Normalize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = flatten(img)
	img = downscale(img, MaxHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return buf.Bytes(), nil
}

// flatten composites the image over an opaque white background so
// transparent regions become white rather than black after JPEG
// encoding.
func flatten(img image.Image) image.Image {
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}

// downscale resizes the image so its height does not exceed maxHeight,
// preserving the aspect ratio. Uses high-quality Catmull-Rom
// interpolation. Returns the original image if already within bounds.
func downscale(img image.Image, maxHeight int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if h <= maxHeight {
		return img
	}

	newH := maxHeight
	newW := int(math.Round(float64(newH) * float64(w) / float64(h)))
	if newW < 1 {
		newW = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
