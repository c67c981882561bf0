package converter

import (
	"context"
	"go.uber.org/zap"
	"image"
	"io"
)

type Encoder interface {
	Encode(ctx context.Context, img image.Image, quality int) (io.Reader, int64, error)
}

// Strategy picks the Encoder for a format. The map is built once and only read afterwards.
type Strategy struct {
	m map[Type]Encoder
}

func MustStrategy(logger *zap.Logger) *Strategy {
	return &Strategy{m: map[Type]Encoder{
		WEBP: mustWebp(logger),
		JPEG: mustJpeg(logger),
		PNG:  mustPng(logger),
		BMP:  mustBmp(logger),
		GIF:  mustGif(logger),
		TIFF: mustTiff(logger),
	}}
}

func (s *Strategy) Apply(t Type) (Encoder, bool) {
	e, ok := s.m[t]
	return e, ok
}
