package vips

import (
	"net/http"
	"optimizer/converter"
	"strings"
)

// sourceType resolves the upload's format from the libvips loader name,
// falling back to content sniffing for loaders libvips names differently
// (BMP goes through the magick loader and reports "unknown").
func sourceType(name string, data []byte) (converter.Type, bool) {
	if t, err := converter.MakeFromString(name); err == nil {
		return t, true
	}

	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		return converter.Type{}, false
	}

	t, err := converter.MakeFromString(strings.TrimPrefix(sniffed, "image/"))
	if err != nil {
		return converter.Type{}, false
	}

	return t, true
}
