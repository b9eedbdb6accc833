package fingerprint

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"image"
	"image/draw"

	// Decoders for the recognized image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
)

// normalizedSize is the canonical resolution images are rendered to before
// hashing.
const normalizedSize = 256

// NormalizedPixels fingerprints the visual content of an image rather than
// its encoding: the file is decoded, EXIF orientation is undone, the image
// is resampled to 256x256 with a box (area-averaging) filter, flattened to
// 8-bit grayscale, and the resulting pixel buffer is hashed. Re-encoded or
// metadata-stripped copies of the same picture collide; distinct pictures
// keep distinct fingerprints for ordinary use.
type NormalizedPixels struct {
	fs afero.Fs
}

// NewNormalizedPixels returns the pixel-normalizing strategy.
func NewNormalizedPixels(fs afero.Fs) *NormalizedPixels {
	return &NormalizedPixels{fs: fs}
}

// Name implements Fingerprinter.
func (*NormalizedPixels) Name() string { return StrategyPixels }

// Fingerprint implements Fingerprinter.
func (n *NormalizedPixels) Fingerprint(path string) (string, error) {
	data, err := afero.ReadFile(n.fs, path)
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}

	img = undoOrientation(img, orientationOf(data))

	canonical := imaging.Resize(img, normalizedSize, normalizedSize, imaging.Box)

	gray := image.NewGray(canonical.Bounds())
	draw.Draw(gray, gray.Bounds(), canonical, canonical.Bounds().Min, draw.Src)

	sum := md5.Sum(gray.Pix)
	return hex.EncodeToString(sum[:]), nil
}

// orientationOf extracts the EXIF orientation tag from an encoded image.
// Files without usable EXIF data are upright (orientation 1); that is not
// an error.
func orientationOf(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// undoOrientation transforms an image with the given EXIF orientation back
// to its upright rendering.
func undoOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
