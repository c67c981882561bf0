package converter

import (
	"bytes"
	"context"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"image"
	"io"
	"optimizer/shared/log"
)

type Bmp struct {
	logger *zap.Logger
}

func mustBmp(logger *zap.Logger) *Bmp {
	return &Bmp{logger: logger}
}

func (w *Bmp) Encode(ctx context.Context, img image.Image, _ int) (io.Reader, int64, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to bmp")

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		logger.Error("Error converting image to bmp", zap.Error(err))
		return nil, 0, err
	}

	return &buf, int64(buf.Len()), nil
}
