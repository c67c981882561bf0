//go:build vips

package vips

import (
	"bytes"
	"context"
	"fmt"
	"github.com/h2non/bimg"
	"go.uber.org/zap"
	"image"
	"image/png"
	"io"
	"optimizer/converter"
	"optimizer/shared/log"
)

var saveTypes = map[converter.Type]bimg.ImageType{
	converter.WEBP: bimg.WEBP,
	converter.JPEG: bimg.JPEG,
	converter.PNG:  bimg.PNG,
	converter.GIF:  bimg.GIF,
	converter.TIFF: bimg.TIFF,
}

// Backend runs decode and encode through libvips. Formats libvips cannot
// save are exported as PNG and handed to the native encoder. Resizing goes
// through converter.Resample so both backends use the same Lanczos filter.
type Backend struct {
	fallback  *converter.Strategy
	maxPixels int
	logger    *zap.Logger
}

func New(fallback *converter.Strategy, maxPixels int, logger *zap.Logger) (*Backend, error) {
	bimg.Initialize()
	logger.Info("libvips initialised", zap.String("version", bimg.VipsVersion))

	return &Backend{fallback: fallback, maxPixels: maxPixels, logger: logger}, nil
}

func (b *Backend) Shutdown() {
	bimg.Shutdown()
}

func (b *Backend) Name() string {
	return "vips"
}

func (b *Backend) Decode(ctx context.Context, data []byte) (converter.Image, error) {
	logger := log.LoggerWithTrace(ctx, b.logger)

	img := bimg.NewImage(data)
	size, err := img.Size()
	if err != nil {
		logger.Debug("Error decoding image", zap.Int("size", len(data)), zap.Error(err))
		return nil, err
	}

	if converter.ExceedsPixels(size.Width, size.Height, b.maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d is above %d pixels", converter.ErrTooManyPixels, size.Width, size.Height, b.maxPixels)
	}

	t, known := sourceType(bimg.DetermineImageTypeName(data), data)
	if known {
		_, known = b.fallback.Apply(t)
	}

	logger.Debug(fmt.Sprintf("Decoded %s image %dx%d", t.Lower(), size.Width, size.Height))

	return &vipsImage{img: img, width: size.Width, height: size.Height, format: t, known: known, backend: b}, nil
}

type vipsImage struct {
	img           *bimg.Image
	width, height int
	format        converter.Type
	known         bool
	backend       *Backend
}

func (vi *vipsImage) Width() int {
	return vi.width
}

func (vi *vipsImage) Height() int {
	return vi.height
}

func (vi *vipsImage) Format() (converter.Type, bool) {
	return vi.format, vi.known
}

func (vi *vipsImage) Resize(ctx context.Context, width, height int) (converter.Image, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", converter.ErrInvalidDimensions, width, height)
	}

	logger := log.LoggerWithTrace(ctx, vi.backend.logger)

	src, err := vi.export()
	if err != nil {
		logger.Error("Error exporting image for resampling", zap.Error(err))
		return nil, err
	}

	resized, err := converter.Resample(src, width, height)
	if err != nil {
		logger.Error("Error resizing image", zap.Error(err))
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		logger.Error("Error handing resized image back to libvips", zap.Error(err))
		return nil, err
	}

	return &vipsImage{
		img:     bimg.NewImage(buf.Bytes()),
		width:   width,
		height:  height,
		format:  vi.format,
		known:   vi.known,
		backend: vi.backend,
	}, nil
}

func (vi *vipsImage) Encode(ctx context.Context, t converter.Type, quality int) (io.Reader, int64, error) {
	logger := log.LoggerWithTrace(ctx, vi.backend.logger)
	quality = converter.QualityFor(t, quality)

	if bt, ok := saveTypes[t]; ok && bimg.IsTypeSupportedSave(bt) {
		logger.Debug(fmt.Sprintf("Converting image to %s with quality: %d", t.Lower(), quality))

		buf, err := vi.img.Process(bimg.Options{Type: bt, Quality: quality})
		if err != nil {
			logger.Error("Error converting image to "+t.Lower(), zap.Error(err))
			return nil, 0, err
		}

		return bytes.NewReader(buf), int64(len(buf)), nil
	}

	encoder, ok := vi.backend.fallback.Apply(t)
	if !ok {
		return nil, 0, fmt.Errorf("unsupported output format: %s", t)
	}

	img, err := vi.export()
	if err != nil {
		logger.Error("Error exporting image for native encoder", zap.Error(err))
		return nil, 0, err
	}

	return encoder.Encode(ctx, img, quality)
}

// export converts the libvips image into an image.Image via a lossless PNG.
func (vi *vipsImage) export() (image.Image, error) {
	buf, err := vi.img.Process(bimg.Options{Type: bimg.PNG})
	if err != nil {
		return nil, err
	}

	return png.Decode(bytes.NewReader(buf))
}
