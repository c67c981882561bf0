package model

import (
	"fmt"
	"io"
	"optimizer/converter"
	"strings"
	"unicode/utf8"
)

const (
	DefaultTargetFormat = "webp"
	DefaultQuality      = 85
	MinQuality          = 1
	MaxQuality          = 100
)

type ConvertRequest struct {
	TargetFormat string `query:"target_format"`
	Quality      int    `query:"quality"`
}

func NewConvertRequest() *ConvertRequest {
	return &ConvertRequest{TargetFormat: DefaultTargetFormat, Quality: DefaultQuality}
}

// Validate returns the canonical output format.
func (r *ConvertRequest) Validate() (converter.Type, error) {
	if n := utf8.RuneCountInString(r.TargetFormat); n < 3 || n > 4 {
		return converter.Type{}, ValidationError(
			fmt.Sprintf("Query parameter 'target_format' must be 3 to 4 characters long, got %d.", n))
	}
	if err := validateQuality(r.Quality); err != nil {
		return converter.Type{}, err
	}

	token := strings.ToUpper(r.TargetFormat)
	t, err := converter.MakeFromString(token)
	if err != nil || t.String() != token || !t.IsConvertTarget() {
		return converter.Type{}, ValidationError(fmt.Sprintf("Output format '%s' is not supported.", token))
	}

	return t, nil
}

type ResizeRequest struct {
	Width   *int `query:"width"`
	Height  *int `query:"height"`
	Quality int  `query:"quality"`
}

func NewResizeRequest() *ResizeRequest {
	return &ResizeRequest{Quality: DefaultQuality}
}

func (r *ResizeRequest) Validate() error {
	if err := validateQuality(r.Quality); err != nil {
		return err
	}
	if r.Width == nil && r.Height == nil {
		return ValidationError("At least 'width' or 'height' must be provided for resizing.")
	}

	return nil
}

func validateQuality(q int) error {
	if q < MinQuality || q > MaxQuality {
		return ValidationError(
			fmt.Sprintf("Query parameter 'quality' must be between %d and %d, got %d.", MinQuality, MaxQuality, q))
	}
	return nil
}

// ImageResponse is an encoded image, fully buffered before it is sent.
type ImageResponse struct {
	Format             string
	Type               string
	Filename           string
	ContentLength      int64
	ContentDisposition string
	Width              int
	Height             int

	Body io.Reader
}

func NewImageResponse(t converter.Type, filename string, width, height int, body io.Reader, size int64) *ImageResponse {
	return &ImageResponse{
		Format:             t.Lower(),
		Type:               t.MediaType(),
		Filename:           filename,
		ContentLength:      size,
		ContentDisposition: "attachment; filename=" + filename,
		Width:              width,
		Height:             height,
		Body:               body,
	}
}

type StatusResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
