//go:build !vips

package vips

import (
	"context"
	"errors"
	"go.uber.org/zap"
	"optimizer/converter"
)

var ErrNotBuilt = errors.New("vips backend requires building with -tags vips")

type Backend struct{}

func New(_ *converter.Strategy, _ int, _ *zap.Logger) (*Backend, error) {
	return nil, ErrNotBuilt
}

func (b *Backend) Shutdown() {}

func (b *Backend) Name() string {
	return "vips"
}

func (b *Backend) Decode(context.Context, []byte) (converter.Image, error) {
	return nil, ErrNotBuilt
}
