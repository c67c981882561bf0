package service

import (
	"context"
	"errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"io"
	"optimizer/api/model"
	"optimizer/converter"
	"optimizer/shared/log"
	"optimizer/shared/metrics"
	"time"
)

func (i *ImageService) decode(ctx context.Context, data []byte) (converter.Image, error) {
	ctx, span := i.tracer.Start(ctx, "decode", trace.WithAttributes(
		attribute.String("image.backend", i.backend.Name()),
		attribute.Int("image.input_bytes", len(data)),
	))
	defer span.End()

	img, err := i.backend.Decode(ctx, data)
	if err != nil {
		failSpan(span, err)
		return nil, model.DecodeError(err)
	}

	format, _ := img.Format()
	span.SetAttributes(
		attribute.Int("image.width", img.Width()),
		attribute.Int("image.height", img.Height()),
		attribute.String("image.source_format", format.Lower()),
	)

	return img, nil
}

func (i *ImageService) transform(ctx context.Context, img converter.Image, width, height int) (converter.Image, error) {
	ctx, span := i.tracer.Start(ctx, "resize", trace.WithAttributes(
		attribute.Int("image.width", width),
		attribute.Int("image.height", height),
	))
	defer span.End()

	resized, err := img.Resize(ctx, width, height)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}

	return resized, nil
}

func (i *ImageService) encode(ctx context.Context, img converter.Image, t converter.Type, quality int) (io.Reader, int64, error) {
	ctx, span := i.tracer.Start(ctx, "encode", trace.WithAttributes(
		attribute.String("image.format", t.Lower()),
		attribute.Int("image.quality", converter.QualityFor(t, quality)),
	))
	defer span.End()

	body, size, err := img.Encode(ctx, t, quality)
	if err != nil {
		failSpan(span, err)
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int64("image.output_bytes", size))

	return body, size, nil
}

func (i *ImageService) observe(ctx context.Context, span trace.Span, operation, format string, resp *model.ImageResponse, err error, start time.Time) {
	logger := log.LoggerWithTrace(ctx, i.logger)
	elapsed := time.Since(start)

	if err == nil {
		i.metrics.ObserveImage(operation, format, metrics.OutcomeOK, resp.ContentLength, elapsed)
		logger.Info("Image processed",
			zap.String("operation", operation),
			zap.String("file", resp.Filename),
			zap.Int64("bytes", resp.ContentLength),
			zap.Duration("elapsed", elapsed),
		)
		return
	}

	outcome := metrics.OutcomeInternalError
	var e *model.Error
	if errors.As(err, &e) && e.Kind.Status() < 500 {
		outcome = metrics.OutcomeClientError
	}
	i.metrics.ObserveImage(operation, format, outcome, 0, elapsed)

	failSpan(span, err)
	logger.Warn("Image processing failed",
		zap.String("operation", operation),
		zap.String("outcome", outcome),
		zap.Error(err),
	)
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
