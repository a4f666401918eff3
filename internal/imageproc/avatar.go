// Package imageproc turns uploaded pictures into square avatars.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register webp decoder
)

// AvatarSize is the edge length of the square avatar in pixels.
const AvatarSize = 250

// autocropTolerance is the maximum normalized color distance at which a
// pixel still counts as border.
const autocropTolerance = 0.0002

// MaxDimension bounds both edges of an accepted source image. Decoding
// allocates width*height*4 bytes no matter how small the file is.
const MaxDimension = 4096

var ErrImageTooLarge = fmt.Errorf("image dimensions too large: maximum is %dx%d pixels", MaxDimension, MaxDimension)

// Avatar decodes r, trims its uniform border, scales it to fit an
// AvatarSize square and centers it on a transparent canvas. Images with an
// edge over MaxDimension are rejected from their header, before decoding.
func Avatar(r io.Reader) (*image.NRGBA, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, fmt.Errorf("%w: got %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	cropped := Autocrop(src)
	return Contain(cropped, AvatarSize, AvatarSize), nil
}

// Contain scales img up or down to fit a width x height box keeping its
// aspect ratio and centers it on a transparent canvas of that size.
func Contain(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	scale := math.Min(float64(width)/float64(b.Dx()), float64(height)/float64(b.Dy()))

	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))

	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	canvas := imaging.New(width, height, color.NRGBA{})
	return imaging.PasteCenter(canvas, resized)
}

// Autocrop removes the border of pixels matching the top-left pixel. An
// image made entirely of that color is returned unchanged.
func Autocrop(img image.Image) image.Image {
	src := imaging.Clone(img)
	b := src.Bounds()
	ref := src.NRGBAAt(b.Min.X, b.Min.Y)

	rowUniform := func(y, x0, x1 int) bool {
		for x := x0; x < x1; x++ {
			if !similar(src.NRGBAAt(x, y), ref) {
				return false
			}
		}
		return true
	}
	colUniform := func(x, y0, y1 int) bool {
		for y := y0; y < y1; y++ {
			if !similar(src.NRGBAAt(x, y), ref) {
				return false
			}
		}
		return true
	}

	top, bottom := b.Min.Y, b.Max.Y
	for top < bottom && rowUniform(top, b.Min.X, b.Max.X) {
		top++
	}
	if top == bottom {
		return src
	}
	for bottom > top && rowUniform(bottom-1, b.Min.X, b.Max.X) {
		bottom--
	}

	left, right := b.Min.X, b.Max.X
	for left < right && colUniform(left, top, bottom) {
		left++
	}
	for right > left && colUniform(right-1, top, bottom) {
		right--
	}

	if left == b.Min.X && right == b.Max.X && top == b.Min.Y && bottom == b.Max.Y {
		return src
	}

	return imaging.Crop(src, image.Rect(left, top, right, bottom))
}

// similar compares two colors by squared distance over all channels,
// normalized to [0, 1].
func similar(a, b color.NRGBA) bool {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	da := float64(a.A) - float64(b.A)
	dist := (dr*dr + dg*dg + db*db + da*da) / (4 * 255 * 255)
	return dist <= autocropTolerance
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}
