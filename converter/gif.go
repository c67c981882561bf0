package converter

import (
	"bytes"
	"context"
	"go.uber.org/zap"
	"image"
	"image/gif"
	"io"
	"optimizer/shared/log"
)

// Gif only re-encodes the first frame; the decoder never hands over more.
type Gif struct {
	logger *zap.Logger
}

func mustGif(logger *zap.Logger) *Gif {
	return &Gif{logger: logger}
}

func (w *Gif) Encode(ctx context.Context, img image.Image, _ int) (io.Reader, int64, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to gif")

	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		logger.Error("Error converting image to gif", zap.Error(err))
		return nil, 0, err
	}

	return &buf, int64(buf.Len()), nil
}
