package converter

import (
	"bytes"
	"context"
	"fmt"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"optimizer/shared/log"
)

// Backend decodes uploaded bytes into an Image.
type Backend interface {
	Name() string
	Decode(ctx context.Context, data []byte) (Image, error)
}

// Image is a decoded upload that can be resampled and serialised again.
type Image interface {
	Width() int
	Height() int
	// Format reports the source container format; false when the decoder could not name one we can encode.
	Format() (Type, bool)
	Resize(ctx context.Context, width, height int) (Image, error)
	// Encode passes quality on only for lossy formats.
	Encode(ctx context.Context, t Type, quality int) (io.Reader, int64, error)
}

// QualityFor drops the quality setting for formats whose encoder does not take one.
func QualityFor(t Type, quality int) int {
	if t.IsLossy() {
		return quality
	}
	return 0
}

// Resample scales img to exactly width x height with the Lanczos filter.
func Resample(img image.Image, width, height int) (image.Image, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// Native decodes with the image package registry and encodes through the Strategy.
// Uploads whose header declares more than maxPixels pixels are rejected before decoding.
type Native struct {
	strategy  *Strategy
	maxPixels int
	logger    *zap.Logger
}

func NewNative(strategy *Strategy, maxPixels int, logger *zap.Logger) *Native {
	return &Native{strategy: strategy, maxPixels: maxPixels, logger: logger}
}

func (n *Native) Name() string {
	return "native"
}

func (n *Native) Decode(ctx context.Context, data []byte) (Image, error) {
	logger := log.LoggerWithTrace(ctx, n.logger)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		logger.Debug("Error reading image header", zap.Int("size", len(data)), zap.Error(err))
		return nil, err
	}
	if ExceedsPixels(cfg.Width, cfg.Height, n.maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d is above %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, n.maxPixels)
	}

	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Debug("Error decoding image", zap.Int("size", len(data)), zap.Error(err))
		return nil, err
	}

	t, err := MakeFromString(name)
	known := err == nil
	if known {
		_, known = n.strategy.Apply(t)
	}

	logger.Debug(fmt.Sprintf("Decoded %s image %dx%d", name, img.Bounds().Dx(), img.Bounds().Dy()))

	return &nativeImage{img: img, format: t, known: known, backend: n}, nil
}

type nativeImage struct {
	img     image.Image
	format  Type
	known   bool
	backend *Native
}

func (ni *nativeImage) Width() int {
	return ni.img.Bounds().Dx()
}

func (ni *nativeImage) Height() int {
	return ni.img.Bounds().Dy()
}

func (ni *nativeImage) Format() (Type, bool) {
	return ni.format, ni.known
}

func (ni *nativeImage) Resize(_ context.Context, width, height int) (Image, error) {
	resized, err := Resample(ni.img, width, height)
	if err != nil {
		return nil, err
	}

	return &nativeImage{img: resized, format: ni.format, known: ni.known, backend: ni.backend}, nil
}

func (ni *nativeImage) Encode(ctx context.Context, t Type, quality int) (io.Reader, int64, error) {
	encoder, ok := ni.backend.strategy.Apply(t)
	if !ok {
		return nil, 0, fmt.Errorf("unsupported output format: %s", t)
	}

	return encoder.Encode(ctx, ni.img, QualityFor(t, quality))
}
