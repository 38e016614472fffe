package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"image_conversion/entity"
)

type response struct {
	Error string `json:"error" example:"message"`
}

func errorResponse(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, response{msg})
}

// statusClientClosed mirrors nginx's non-standard 499; the caller is
// gone, so the code is only ever seen in logs.
const statusClientClosed = 499

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrMissingFile),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrImageTooLarge),
		errors.Is(err, entity.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrServiceBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, entity.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	default:
		return http.StatusInternalServerError
	}
}
