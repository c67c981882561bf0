package rest

import (
	"fmt"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"io"
	"net/http"
	"optimizer/api/model"
	"optimizer/config"
	"optimizer/service"
	"optimizer/shared/log"
)

type ImageController struct {
	cfg     *config.Config
	service *service.ImageService
	logger  *zap.Logger
}

func NewImageController(app fiber.Router, cfg *config.Config, service *service.ImageService, logger *zap.Logger) *ImageController {
	i := &ImageController{service: service, cfg: cfg, logger: logger}

	app.Get("/", i.Root)

	v1 := app.Group("/api/v1")
	v1.Post("/convert", i.Convert)
	v1.Post("/resize", i.Resize)

	return i
}

// Root reports that the service is up
//
//	@Summary	Service status
//	@Tags		status
//	@Produce	json
//	@Success	200	{object}	model.StatusResponse
//	@Router		/ [get]
func (i *ImageController) Root(c *fiber.Ctx) error {
	return c.JSON(model.StatusResponse{Message: i.cfg.AppName + " is running!"})
}

// Convert image
//
//	@Summary		Converts and optimizes an image to a new format
//	@Description	Re-encodes the uploaded image as webp, jpeg, png or bmp. Quality only applies to jpeg and webp.
//	@Tags			image
//	@Accept			multipart/form-data
//	@Produce		image/webp,image/jpeg,image/png,image/bmp
//	@Param			file			formData	file	true	"Image file to be converted"
//	@Param			target_format	query		string	false	"Output format"					default(webp)	minlength(3)	maxlength(4)
//	@Param			quality			query		int		false	"Compression quality (1-100)"	default(85)		minimum(1)		maximum(100)
//	@Success		200				{file}		file	"The optimized image file"
//	@Failure		400				{object}	model.ErrorResponse
//	@Failure		500				{object}	model.ErrorResponse
//	@Router			/api/v1/convert [post]
func (i *ImageController) Convert(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger := log.LoggerWithTrace(ctx, i.logger)

	params := model.NewConvertRequest()
	if err := c.QueryParser(params); err != nil {
		logger.Debug("Error parsing query", zap.Error(err))
		return model.ValidationError(fmt.Sprintf("Invalid query parameters: %v", err))
	}

	target, err := params.Validate()
	if err != nil {
		return err
	}

	data, err := readUpload(c)
	if err != nil {
		return err
	}

	logger.Debug(fmt.Sprintf("Converting image with params: %+v", params), zap.Int("size", len(data)))

	image, err := i.service.Convert(ctx, target, params.Quality, data)
	if err != nil {
		return err
	}

	return send(c, image)
}

// Resize image
//
//	@Summary		Resizes an image to a specific width and/or height
//	@Description	A missing dimension is derived from the aspect ratio. The output keeps the source format, jpeg when unknown.
//	@Tags			image
//	@Accept			multipart/form-data
//	@Produce		image/webp,image/jpeg,image/png,image/bmp,image/gif,image/tiff
//	@Param			file	formData	file	true	"Image file to be resized"
//	@Param			width	query		int		false	"New width in pixels"
//	@Param			height	query		int		false	"New height in pixels"
//	@Param			quality	query		int		false	"Compression quality (1-100)"	default(85)	minimum(1)	maximum(100)
//	@Success		200		{file}		file	"The resized image file"
//	@Failure		400		{object}	model.ErrorResponse
//	@Failure		500		{object}	model.ErrorResponse
//	@Router			/api/v1/resize [post]
func (i *ImageController) Resize(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger := log.LoggerWithTrace(ctx, i.logger)

	params := model.NewResizeRequest()
	if err := c.QueryParser(params); err != nil {
		logger.Debug("Error parsing query", zap.Error(err))
		return model.ValidationError(fmt.Sprintf("Invalid query parameters: %v", err))
	}

	if err := params.Validate(); err != nil {
		return err
	}

	data, err := readUpload(c)
	if err != nil {
		return err
	}

	logger.Debug("Resizing image", zap.Intp("width", params.Width), zap.Intp("height", params.Height), zap.Int("size", len(data)))

	image, err := i.service.Resize(ctx, params, data)
	if err != nil {
		return err
	}

	return send(c, image)
}

func readUpload(c *fiber.Ctx) ([]byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, model.ValidationError("Form field 'file' is required.")
	}

	f, err := header.Open()
	if err != nil {
		return nil, model.DecodeError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, model.DecodeError(err)
	}

	return data, nil
}

func send(c *fiber.Ctx, image *model.ImageResponse) error {
	c.Set(fiber.HeaderContentType, image.Type)
	c.Set(fiber.HeaderContentDisposition, image.ContentDisposition)

	return c.Status(http.StatusOK).SendStream(image.Body, int(image.ContentLength))
}
