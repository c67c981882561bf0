package converter

import (
	"bytes"
	"context"
	"go.uber.org/zap"
	"golang.org/x/image/tiff"
	"image"
	"io"
	"optimizer/shared/log"
)

type Tiff struct {
	logger *zap.Logger
}

func mustTiff(logger *zap.Logger) *Tiff {
	return &Tiff{logger: logger}
}

func (w *Tiff) Encode(ctx context.Context, img image.Image, _ int) (io.Reader, int64, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to tiff")

	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		logger.Error("Error converting image to tiff", zap.Error(err))
		return nil, 0, err
	}

	return &buf, int64(buf.Len()), nil
}
