package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/logging"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse sends a 200 with data
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Status: "success", Data: data})
}

// SuccessMessageResponse sends a 200 with a message
func SuccessMessageResponse(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Status: "success", Message: message, Data: data})
}

// CreatedResponse sends a 201 with data
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Status: "success", Data: data})
}

// ErrorResponse sends an error envelope with the given status
func ErrorResponse(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, Response{Status: "error", Message: message})
}

func BadRequestResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusBadRequest, message)
}

func UnauthorizedResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusUnauthorized, message)
}

func NotFoundResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusNotFound, message)
}

// InternalServerErrorResponse answers 500 with a generic message. The
// underlying error goes to the log, never to the client.
func InternalServerErrorResponse(c echo.Context, message string, err error) error {
	if err != nil {
		logging.Logg.Error(message, "path", c.Path(), "error", err)
	}
	return ErrorResponse(c, http.StatusInternalServerError, message)
}

// DomainErrorResponse maps a game-rule rejection to the right 4xx with
// the rejection's own message. Anything else is a 500.
func DomainErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return NotFoundResponse(c, err.Error())
	case errors.Is(err, domain.ErrTimeframeLocked),
		errors.Is(err, domain.ErrMiningInProgress),
		errors.Is(err, domain.ErrAlreadyReferred):
		return ErrorResponse(c, http.StatusConflict, err.Error())
	case domain.IsRejection(err):
		return BadRequestResponse(c, err.Error())
	default:
		return InternalServerErrorResponse(c, "Something went wrong", err)
	}
}
