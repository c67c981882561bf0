package converter

import (
	"bytes"
	"context"
	"go.uber.org/zap"
	"image"
	"image/png"
	"io"
	"optimizer/shared/log"
)

type Png struct {
	logger *zap.Logger
}

func mustPng(logger *zap.Logger) *Png {
	return &Png{logger: logger}
}

func (w *Png) Encode(ctx context.Context, img image.Image, _ int) (io.Reader, int64, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to png")

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Error("Error converting image to png", zap.Error(err))
		return nil, 0, err
	}

	return &buf, int64(buf.Len()), nil
}
