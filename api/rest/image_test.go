package rest

import (
	"bytes"
	"encoding/json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"optimizer/api/model"
	"optimizer/config"
	"optimizer/converter"
	"optimizer/service"
	"optimizer/shared/metrics"
	"strings"
	"testing"
)

func newTestApp(t *testing.T, expose bool) *fiber.App {
	t.Helper()

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.ExposeErrorDetail = expose

	logger := zap.NewNop()
	backend := converter.NewNative(converter.MustStrategy(logger), cfg.MaxPixels, logger)
	svc := service.NewImageService(backend, cfg.MaxOutputPixels, metrics.New(), logger)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(cfg, logger)})
	NewImageController(app, cfg, svc, logger)

	return app
}

func buildImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, buildImage(width, height)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, buildImage(width, height), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, target string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if data != nil {
		part, err := writer.CreateFormFile("file", "upload.bin")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func detail(t *testing.T, body []byte) string {
	t.Helper()

	var e model.ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("unmarshal error body %q: %v", body, err)
	}
	return e.Detail
}

func TestRoot(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var status model.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Message != "Image Optimizer API is running!" {
		t.Fatalf("unexpected message %q", status.Message)
	}
}

func TestConvertPNGToJPEG(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, uploadRequest(t, "/api/v1/convert?target_format=jpeg&quality=50", pngBytes(t, 200, 100)))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); ct != "image/jpeg" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); cd != "attachment; filename=optimized.jpeg" {
		t.Fatalf("unexpected content disposition %s", cd)
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg, got %s", format)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Fatalf("expected 200x100, got %v", img.Bounds())
	}
}

func TestConvertDefaultsToWebp(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, uploadRequest(t, "/api/v1/convert", pngBytes(t, 20, 20)))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); ct != "image/webp" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if _, format, err := image.Decode(bytes.NewReader(body)); err != nil || format != "webp" {
		t.Fatalf("expected webp body, got %s (%v)", format, err)
	}
}

func TestConvertCaseInsensitiveTarget(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, uploadRequest(t, "/api/v1/convert?target_format=BmP", pngBytes(t, 20, 10)))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); cd != "attachment; filename=optimized.bmp" {
		t.Fatalf("unexpected content disposition %s", cd)
	}
}

func TestConvertBadRequests(t *testing.T) {
	app := newTestApp(t, true)
	valid := pngBytes(t, 10, 10)

	tests := []struct {
		name   string
		target string
		data   []byte
		detail string
	}{
		{name: "unsupported format", target: "/api/v1/convert?target_format=gif", data: valid,
			detail: "Output format 'GIF' is not supported."},
		{name: "unsupported format with garbage", target: "/api/v1/convert?target_format=tga", data: []byte("junk"),
			detail: "Output format 'TGA' is not supported."},
		{name: "format too long", target: "/api/v1/convert?target_format=jpegxl", data: valid},
		{name: "quality too low", target: "/api/v1/convert?quality=0", data: valid},
		{name: "quality too high", target: "/api/v1/convert?quality=101", data: valid},
		{name: "quality not a number", target: "/api/v1/convert?quality=high", data: valid},
		{name: "missing file", target: "/api/v1/convert", data: nil,
			detail: "Form field 'file' is required."},
		{name: "random bytes", target: "/api/v1/convert?target_format=png", data: []byte{0x00, 0x13, 0x37, 0x42, 0x99},
			detail: "Could not process the image. Error: image: unknown format"},
		{name: "empty file", target: "/api/v1/convert", data: []byte{},
			detail: "Could not process the image. Error: image: unknown format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, uploadRequest(t, tt.target, tt.data))
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
			}
			got := detail(t, body)
			if tt.detail != "" && got != tt.detail {
				t.Fatalf("expected detail %q, got %q", tt.detail, got)
			}
		})
	}
}

func TestResizeJPEGWidthOnly(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, uploadRequest(t, "/api/v1/resize?width=50", jpegBytes(t, 100, 50)))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); ct != "image/jpeg" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); cd != "attachment; filename=resized_50x25.jpeg" {
		t.Fatalf("unexpected content disposition %s", cd)
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" || img.Bounds().Dx() != 50 || img.Bounds().Dy() != 25 {
		t.Fatalf("expected 50x25 jpeg, got %s %v", format, img.Bounds())
	}
}

func TestResizeHeightOnlyKeepsPNG(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, uploadRequest(t, "/api/v1/resize?height=10", pngBytes(t, 33, 100)))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); cd != "attachment; filename=resized_3x10.png" {
		t.Fatalf("unexpected content disposition %s", cd)
	}
}

func TestResizeBadRequests(t *testing.T) {
	app := newTestApp(t, true)
	valid := pngBytes(t, 10, 10)

	tests := []struct {
		name   string
		target string
		data   []byte
		detail string
	}{
		{name: "no dimensions", target: "/api/v1/resize", data: valid,
			detail: "At least 'width' or 'height' must be provided for resizing."},
		{name: "no dimensions with garbage", target: "/api/v1/resize?quality=10", data: []byte("junk"),
			detail: "At least 'width' or 'height' must be provided for resizing."},
		{name: "random bytes", target: "/api/v1/resize?width=5", data: []byte("\x89PNX garbage"),
			detail: "Could not process the image. Error: image: unknown format"},
		{name: "width not a number", target: "/api/v1/resize?width=wide", data: valid},
		{name: "quality out of range", target: "/api/v1/resize?width=5&quality=1000", data: valid},
		{name: "derived height is zero", target: "/api/v1/resize?width=1", data: pngBytes(t, 100, 10),
			detail: "Resulting dimensions 1x0 are invalid."},
		{name: "result above the pixel limit", target: "/api/v1/resize?width=2000000000&height=2000000000", data: valid,
			detail: "Resulting dimensions 2000000000x2000000000 are invalid."},
		{name: "derived side above the pixel limit", target: "/api/v1/resize?width=2000000000", data: valid,
			detail: "Resulting dimensions 2000000000x2000000000 are invalid."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, uploadRequest(t, tt.target, tt.data))
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
			}
			got := detail(t, body)
			if tt.detail != "" && got != tt.detail {
				t.Fatalf("expected detail %q, got %q", tt.detail, got)
			}
		})
	}
}

func TestHiddenErrorDetail(t *testing.T) {
	app := newTestApp(t, false)

	resp, body := do(t, app, uploadRequest(t, "/api/v1/convert", []byte("junk")))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	got := detail(t, body)
	if got != "Could not process the image." || strings.Contains(got, "unknown format") {
		t.Fatalf("library text should be hidden, got %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v2/convert", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if detail(t, body) == "" {
		t.Fatal("expected a detail message")
	}
}

func TestServerSurvivesOversizedResize(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, uploadRequest(t, "/api/v1/resize?width=2000000000&height=2000000000", pngBytes(t, 10, 10)))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, uploadRequest(t, "/api/v1/resize?width=5", pngBytes(t, 10, 10)))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the next request to succeed, got %d: %s", resp.StatusCode, body)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); cd != "attachment; filename=resized_5x5.png" {
		t.Fatalf("unexpected content disposition %s", cd)
	}
}
