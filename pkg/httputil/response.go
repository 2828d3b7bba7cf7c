package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzansicare/booking-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// statusForCode maps application error codes to HTTP statuses.
func statusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest, errors.ErrInvalidDate, errors.ErrInvalidTime, errors.ErrInvalidDuration:
		return http.StatusBadRequest
	case errors.ErrUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrForbidden, errors.ErrDistrictAccessDenied:
		return http.StatusForbidden
	case errors.ErrIncompatibleFacility, errors.ErrCancellationNotAllowed, errors.ErrInvalidTransition:
		return http.StatusUnprocessableEntity
	case errors.ErrPatientDoubleBooking, errors.ErrProviderUnavailable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a success response for a newly created resource
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	var code errors.ErrorCode
	var message string

	if appErr, ok := err.(*errors.AppError); ok {
		code = appErr.Code
		message = appErr.Message
	} else {
		code = errors.ErrInternal
		message = "internal server error"
	}

	c.JSON(statusForCode(code), Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}
