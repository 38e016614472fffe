package v1

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"image_conversion/config"
	"image_conversion/entity"
	"image_conversion/pkg/logger"
)

type convertRoutes struct {
	cu  entity.ConversionUsecase
	l   logger.Interface
	cfg *config.Config
}

func newConvertRoutes(handler *gin.RouterGroup, cu entity.ConversionUsecase, l logger.Interface, cfg *config.Config) {
	r := &convertRoutes{cu, l, cfg}

	handler.POST("/convert", r.convert)
	handler.GET("/info", r.info)
}

// @Summary     Convert an image
// @Description Converts the uploaded image to the configured target format
// @ID          convert
// @Tags  	    convert
// @Accept      mpfd
// @Produce     octet-stream
// @Param       file formData file true "image file"
// @Param       quality formData int false "encode quality 1-100"
// @Success     200
// @Failure     400 {object} response
// @Failure     413 {object} response
// @Failure     503 {object} response
// @Router      /convert [post]
func (r *convertRoutes) convert(c *gin.Context) {
	ctx, span := otel.Tracer(traceName).Start(c.Request.Context(), "convert-api")
	defer span.End()

	req, err := r.parseRequest(c)
	if err != nil {
		r.l.Error(err, "http - v1 - convert")
		errorResponse(c, statusFor(err), err.Error())
		return
	}

	res, err := r.cu.Convert(ctx, *req)
	if err != nil {
		r.l.Error(err, "http - v1 - convert")
		errorResponse(c, statusFor(err), err.Error())
		return
	}

	r.l.Info("converted %q -> %q: %d bytes in, %d bytes out, quality %d",
		req.Filename, res.Filename, len(req.Data), len(res.Data), req.Quality)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	c.Data(http.StatusOK, res.ContentType, res.Data)
}

// parseRequest is the input validator: everything here runs before a
// permit is taken or a worker is touched, and the size check runs
// before the body is buffered.
func (r *convertRoutes) parseRequest(c *gin.Context) (*entity.ConversionRequest, error) {
	maxSize := r.cfg.Convert.MaxUploadSize

	if c.Request.ContentLength > maxSize {
		return nil, errors.Wrapf(entity.ErrPayloadTooLarge,
			"%d bytes (max %d)", c.Request.ContentLength, maxSize)
	}
	// backstop for chunked bodies that carry no Content-Length
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

	quality := r.cfg.Convert.DefaultQuality
	if q := c.PostForm("quality"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 100 {
			return nil, errors.Wrapf(entity.ErrInvalidParameter,
				"quality %q must be an integer in [1,100]", q)
		}
		quality = n
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errors.Wrapf(entity.ErrPayloadTooLarge, "max %d bytes", maxSize)
		}
		return nil, errors.Wrap(entity.ErrMissingFile, "form field 'file'")
	}
	if fh.Size == 0 {
		return nil, errors.Wrap(entity.ErrMissingFile, "empty upload")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(entity.ErrInternal, err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(entity.ErrInternal, err.Error())
	}

	if mt := mimetype.Detect(data); !strings.HasPrefix(mt.String(), "image/") {
		return nil, errors.Wrapf(entity.ErrDecode, "unsupported content type %s", mt.String())
	}

	return &entity.ConversionRequest{
		Filename: fh.Filename,
		Data:     data,
		Quality:  quality,
	}, nil
}

// @Summary     Endpoint info
// @Description Describes the convert endpoint, its limits and free capacity
// @ID          info
// @Tags  	    convert
// @Produce     json
// @Success     200
// @Router      /info [get]
func (r *convertRoutes) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"endpoint": "/api/convert",
		"method":   "POST",
		"fields": gin.H{
			"file":    "image file (required)",
			"quality": fmt.Sprintf("encode quality 1-100 (optional, default %d)", r.cfg.Convert.DefaultQuality),
		},
		"limits": gin.H{
			"max_upload_size": r.cfg.Convert.MaxUploadSize,
			"max_resolution":  r.cfg.Convert.MaxResolution,
		},
		"available_permits": r.cu.AvailablePermits(),
	})
}
