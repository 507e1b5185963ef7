package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	// additional supported image formats
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

type binImageProcessingFlags uint8

const (
	imageScale binImageProcessingFlags = 1 << iota
	imageConvertPNG
)

type binImage struct {
	log *zap.Logger
	//
	id          string
	ct          string
	fname       string
	relpath     string // always relative to "root" directory - usually temporary working directory
	flags       binImageProcessingFlags
	scaleFactor float64
	img         image.Image
	imgType     string
	data        []byte
}

const jpegReencodeQuality = 75

// process applies requested transformations to image data in place. Images we cannot
// decode are passed through untouched, a book with an odd image beats no book.
func (b *binImage) process() {

	if b.flags == 0 || len(b.data) == 0 {
		return
	}

	// Do not touch svg images
	if b.imgType == "svg" {
		return
	}

	if b.img == nil {
		var err error
		b.img, b.imgType, err = image.Decode(bytes.NewReader(b.data))
		if err != nil {
			b.log.Warn("Unable to decode image for processing, storing as is",
				zap.String("id", b.id),
				zap.Error(err))
			return
		}
	}

	var changed bool

	if b.flags&imageScale != 0 && b.scaleFactor > 0 {
		if resizedImg := imaging.Resize(b.img,
			int(float64(b.img.Bounds().Dx())*b.scaleFactor),
			int(float64(b.img.Bounds().Dy())*b.scaleFactor),
			imaging.Linear); resizedImg != nil {
			b.img = resizedImg
			changed = true
		} else {
			b.log.Warn("Unable to resize image, storing as is", zap.String("id", b.id))
			return
		}
	}

	if b.flags&imageConvertPNG != 0 {

		// Flatten transparency onto white, e-ink renderers do strange things with alpha
		opaque := func(im image.Image) bool {
			if oimg, ok := im.(interface{ Opaque() bool }); ok {
				return oimg.Opaque()
			}
			return true
		}(b.img)

		if !opaque {
			opaqueImg := image.NewRGBA(b.img.Bounds())
			draw.Draw(opaqueImg, b.img.Bounds(), &image.Uniform{color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
			draw.Draw(opaqueImg, b.img.Bounds(), b.img, image.Point{}, draw.Over)
			b.img = opaqueImg
			changed = true
		}
	}

	target := b.imgType
	if b.flags&imageConvertPNG != 0 {
		target = "png"
	}
	if !changed && target == b.imgType {
		return
	}

	// Serialize the results
	var (
		buf = new(bytes.Buffer)
		err error
	)
	switch target {
	case "jpeg":
		err = imaging.Encode(buf, b.img, imaging.JPEG, imaging.JPEGQuality(jpegReencodeQuality))
	case "gif":
		err = imaging.Encode(buf, b.img, imaging.GIF)
	case "bmp":
		err = imaging.Encode(buf, b.img, imaging.BMP)
	case "tiff":
		err = imaging.Encode(buf, b.img, imaging.TIFF)
	default:
		// png proper plus decodable formats without an encoder, webp among them
		target = "png"
		err = imaging.Encode(buf, b.img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	}
	if err != nil {
		b.log.Error("Unable to encode processed image, storing original",
			zap.String("id", b.id),
			zap.String("type", target),
			zap.Error(err))
		return
	}
	b.data = buf.Bytes()

	if target != b.imgType {
		b.imgType = target
		b.ct = "image/" + target
		ext := filepath.Ext(b.fname)
		b.fname = b.fname[:len(b.fname)-len(ext)] + "." + target
	}
}

// encodePNG serializes decoded image into png data.
func (b *binImage) encodePNG() error {
	if b.img == nil {
		return fmt.Errorf("no image to encode (%s)", b.id)
	}
	var buf = new(bytes.Buffer)
	if err := imaging.Encode(buf, b.img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return fmt.Errorf("unable to encode PNG (%s): %w", b.id, err)
	}
	b.data = buf.Bytes()
	b.imgType = "png"
	b.ct = "image/png"
	return nil
}

// flush is storing image to file
func (b *binImage) flush(path string) error {

	// Sanity
	if len(b.fname) == 0 || len(b.data) == 0 {
		return nil
	}

	newdir := filepath.Join(path, b.relpath)
	if err := os.MkdirAll(newdir, 0700); err != nil {
		return fmt.Errorf("unable to create directory %s: %w", newdir, err)
	}
	if err := os.WriteFile(filepath.Join(newdir, b.fname), b.data, 0644); err != nil {
		return fmt.Errorf("unable to store image %s: %w", filepath.Join(newdir, b.fname), err)
	}
	return nil
}
