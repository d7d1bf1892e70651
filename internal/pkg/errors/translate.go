package errors

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// WireResponse is the status and body returned to the client for a failure
type WireResponse struct {
	Status int
	Body   string
}

// statusCoder is implemented by transport errors that carry their own status
type statusCoder interface {
	StatusCode() int
}

// FromTransport classifies an error raised outside the domain and codec,
// keeping the status the transport attached to it if any.
func FromTransport(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return Transport(fiberErr.Code, fiberErr.Message).WithError(err)
	}

	var coder statusCoder
	if errors.As(err, &coder) {
		return Transport(coder.StatusCode(), err.Error()).WithError(err)
	}

	switch {
	case errors.Is(err, fasthttp.ErrBodyTooLarge):
		return Transport(http.StatusRequestEntityTooLarge, err.Error()).WithError(err)
	case errors.Is(err, fasthttp.ErrContentEncodingUnsupported):
		return Transport(http.StatusUnsupportedMediaType, err.Error()).WithError(err)
	}

	return Transport(0, err.Error()).WithError(err)
}

// Translate maps any failure to exactly one wire response.
// A nil error is a programming error and is answered as a transport failure.
func Translate(err error) WireResponse {
	if err == nil {
		return WireResponse{
			Status: http.StatusInternalServerError,
			Body:   http.StatusText(http.StatusInternalServerError),
		}
	}

	appErr := FromTransport(err)

	status := appErr.StatusCode
	if status < 400 || status > 599 {
		status = wireTable[KindTransport].status
	}

	body := appErr.Message
	if body == "" {
		body = http.StatusText(status)
	}
	if body == "" {
		body = appErr.Code
	}

	return WireResponse{Status: status, Body: body}
}
