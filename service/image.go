package service

import (
	"context"
	"errors"
	"fmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"optimizer/api/model"
	"optimizer/converter"
	"optimizer/shared/metrics"
	"time"
)

const (
	operationConvert = "convert"
	operationResize  = "resize"
)

type ImageService struct {
	backend         converter.Backend
	maxOutputPixels int
	metrics         *metrics.Metrics
	tracer          trace.Tracer
	logger          *zap.Logger
}

// NewImageService refuses resizes whose result would exceed maxOutputPixels; 0 means no limit.
func NewImageService(backend converter.Backend, maxOutputPixels int, m *metrics.Metrics, logger *zap.Logger) *ImageService {
	return &ImageService{
		backend:         backend,
		maxOutputPixels: maxOutputPixels,
		metrics:         m,
		tracer:          otel.Tracer("optimizer/service"),
		logger:          logger,
	}
}

// Convert re-encodes data into target without touching its geometry.
func (i *ImageService) Convert(ctx context.Context, target converter.Type, quality int, data []byte) (*model.ImageResponse, error) {
	ctx, span := i.tracer.Start(ctx, "ImageService.Convert", trace.WithAttributes(
		attribute.String("image.target_format", target.Lower()),
		attribute.Int("image.quality", quality),
	))
	defer span.End()

	start := time.Now()
	resp, err := i.convert(ctx, target, quality, data)
	i.observe(ctx, span, operationConvert, target.Lower(), resp, err, start)

	return resp, err
}

func (i *ImageService) convert(ctx context.Context, target converter.Type, quality int, data []byte) (*model.ImageResponse, error) {
	img, err := i.decode(ctx, data)
	if err != nil {
		return nil, err
	}

	body, size, err := i.encode(ctx, img, target, quality)
	if err != nil {
		return nil, model.EncodeError("Failed to save the image in the new format.", err)
	}

	filename := "optimized." + target.Lower()

	return model.NewImageResponse(target, filename, img.Width(), img.Height(), body, size), nil
}

// Resize scales data to the requested box and re-encodes it in its source
// format, JPEG when the source format is unknown.
func (i *ImageService) Resize(ctx context.Context, req *model.ResizeRequest, data []byte) (*model.ImageResponse, error) {
	ctx, span := i.tracer.Start(ctx, "ImageService.Resize", trace.WithAttributes(
		attribute.Int("image.quality", req.Quality),
	))
	defer span.End()

	start := time.Now()
	resp, err := i.resize(ctx, req, data)

	format := "unknown"
	if resp != nil {
		format = resp.Format
	}
	i.observe(ctx, span, operationResize, format, resp, err, start)

	return resp, err
}

func (i *ImageService) resize(ctx context.Context, req *model.ResizeRequest, data []byte) (*model.ImageResponse, error) {
	img, err := i.decode(ctx, data)
	if err != nil {
		return nil, err
	}

	width, height, err := converter.TargetSize(img.Width(), img.Height(), req.Width, req.Height, i.maxOutputPixels)
	switch {
	case errors.Is(err, converter.ErrMissingDimension):
		return nil, model.ValidationError("At least 'width' or 'height' must be provided for resizing.")
	case err != nil:
		return nil, model.ValidationError(fmt.Sprintf("Resulting dimensions %dx%d are invalid.", width, height))
	}

	resized, err := i.transform(ctx, img, width, height)
	if err != nil {
		return nil, model.ResizeError(err)
	}

	format, ok := img.Format()
	if !ok {
		format = converter.JPEG
	}

	body, size, err := i.encode(ctx, resized, format, req.Quality)
	if err != nil {
		return nil, model.EncodeError("Failed to save the resized image.", err)
	}

	filename := fmt.Sprintf("resized_%dx%d.%s", width, height, format.Lower())

	return model.NewImageResponse(format, filename, width, height, body, size), nil
}
