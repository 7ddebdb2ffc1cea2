package imageio

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math/rand"

	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const (
	MinSize = 32
	MaxSize = 1024

	DefaultContentSize = 256
	DefaultStyleSize   = 256
	DefaultStyleRatio  = 100
)

// Decode reads an image and applies its EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode image")
	}
	return img, nil
}

func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open image %s", path)
	}
	return img, nil
}

func ClampSize(size int) int {
	if size < MinSize {
		return MinSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// ResizeToHeight scales img to the given height and keeps the aspect ratio.
func ResizeToHeight(img image.Image, height int) image.Image {
	height = ClampSize(height)
	if img.Bounds().Dy() == height {
		return img
	}
	return imaging.Resize(img, 0, height, imaging.Lanczos)
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "couldn't encode image")
	}
	return buf.Bytes(), nil
}

// RandomSettings picks slider values the same way the playground's
// "randomize" button does.
func RandomSettings(rnd *rand.Rand) datastructures.RandomSettings {
	return datastructures.RandomSettings{
		StyleRatio:  randomInt(rnd, 0, 100),
		ContentSize: randomInt(rnd, 256, 400),
		StyleSize:   randomInt(rnd, 100, 400),
	}
}

// randomInt returns a number in [min, max].
func randomInt(rnd *rand.Rand, min int, max int) int {
	return rnd.Intn(max-min+1) + min
}
