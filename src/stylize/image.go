package stylize

import (
	"fmt"
	"image"
	"image/color"
)

// Image is an RGB image with samples normalized to [0, 1], stored row by row
// (height x width x 3).
type Image struct {
	Width  int
	Height int
	Pix    []float32
}

func NewImage(width int, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*3),
	}
}

// FromImage converts a decoded image. Alpha is dropped.
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	res := NewImage(bounds.Dx(), bounds.Dy())

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			res.Pix[i] = float32(r>>8) / 255
			res.Pix[i+1] = float32(g>>8) / 255
			res.Pix[i+2] = float32(b>>8) / 255
			i += 3
		}
	}
	return res
}

func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("image is missing")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("image is empty (%dx%d)", img.Width, img.Height)
	}
	if len(img.Pix) != img.Width*img.Height*3 {
		return fmt.Errorf("image has %d samples, expected %d", len(img.Pix), img.Width*img.Height*3)
	}
	return nil
}

// ToImage converts back to an 8-bit image, clamping samples to [0, 1].
func (img *Image) ToImage() *image.NRGBA {
	res := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	i := 0
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			res.SetNRGBA(x, y, color.NRGBA{
				R: toByte(img.Pix[i]),
				G: toByte(img.Pix[i+1]),
				B: toByte(img.Pix[i+2]),
				A: 255,
			})
			i += 3
		}
	}
	return res
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
