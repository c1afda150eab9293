// Package vision turns uploaded image bytes into the input tensor expected by
// the leaf classifier: 224x224, BGR, ImageNet mean subtracted, NHWC with a
// leading batch dimension.
package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

const (
	Width    = 224
	Height   = 224
	Channels = 3
)

// Shape is the tensor shape produced by Preprocess.
var Shape = [4]int64{1, Height, Width, Channels}

// Per-channel means in BGR order, the same values the network was trained with.
var meanBGR = [3]float32{103.939, 116.779, 123.68}

// Error is returned for any failure to turn bytes into a tensor. The HTTP
// layer reports it to the client verbatim as a bad request.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "Error preprocessing image: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// IsError reports whether err (or anything it wraps) is a preprocessing error.
func IsError(err error) bool {
	var pe *Error
	return errors.As(err, &pe)
}

// Preprocess decodes data and returns a flat float32 tensor of Shape.
func Preprocess(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, &Error{Err: errors.New("empty image data")}
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Err: err}
	}
	return PreprocessImage(img)
}

// PreprocessImage is Preprocess for an already decoded image.
func PreprocessImage(img image.Image) ([]float32, error) {
	if img == nil {
		return nil, &Error{Err: errors.New("failed to load image")}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &Error{Err: fmt.Errorf("image has no pixels (%dx%d)", b.Dx(), b.Dy())}
	}
	// straight alpha, 8 bits per channel. Alpha is forced opaque before the
	// resize so transparent pixels keep their stored colour.
	src := imaging.Clone(img)
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}
	dst := toNRGBA(resize.Resize(Width, Height, src, resize.Bicubic))
	if dst.Bounds().Dx() != Width || dst.Bounds().Dy() != Height {
		return nil, &Error{Err: fmt.Errorf("resize produced %dx%d", dst.Bounds().Dx(), dst.Bounds().Dy())}
	}

	out := make([]float32, Width*Height*Channels)
	for y := 0; y < Height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+Width*4]
		for x := 0; x < Width; x++ {
			px := row[x*4 : x*4+4]
			i := (y*Width + x) * Channels
			out[i+0] = float32(px[2]) - meanBGR[0]
			out[i+1] = float32(px[1]) - meanBGR[1]
			out[i+2] = float32(px[0]) - meanBGR[2]
		}
	}
	return out, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
