package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"miheater/internal/heater"
	"miheater/internal/service"
)

// deviceStatus maps an error from a device round trip to an HTTP status.
// Anything not caused by the caller's input or by local storage is a failure
// of the device or its gateway.
func deviceStatus(err error) int {
	switch {
	case errors.Is(err, heater.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStorage):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// deviceError answers a failed command or refresh. Input errors echo their
// message; device errors are summarised.
func (h *Handler) deviceError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := deviceStatus(err)
	msg := "heater request failed"
	if code == http.StatusBadRequest {
		msg = err.Error()
	}
	h.logAndJSONError(c, code, msg, logKey, err, kv...)
}

func isFilterError(err error) bool {
	return errors.Is(err, service.ErrInvalidFilter)
}
