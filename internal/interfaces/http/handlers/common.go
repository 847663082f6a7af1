// Package handlers implements the HTTP handlers for the matching and
// heatmap API.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openhaven/matchgrid/pkg/errors"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// statusForCode maps an error code to its HTTP status.
func statusForCode(code errors.ErrorCode) int {
	switch {
	case code == errors.CodeInvalidParam,
		code == errors.CodeValidation,
		code == errors.CodeInvalidBounds,
		code == errors.CodeInvalidCellSize,
		code == errors.CodeInvalidMode,
		code == errors.CodeInvalidPoint:
		return http.StatusBadRequest
	case code == errors.CodeNotFound,
		code == errors.CodeApplicantNotFound,
		code == errors.CodeProjectNotFound:
		return http.StatusNotFound
	case code == errors.CodeConflict:
		return http.StatusConflict
	case code == errors.CodeTimeout, code == errors.CodeEmbeddingTimeout:
		return http.StatusGatewayTimeout
	case code == errors.CodeServiceUnavailable, code == errors.CodeEmbeddingUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the canonical error body for err and aborts the
// request.  Non-AppError values surface as an opaque internal error so
// driver details never leak to clients.
func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Code:    string(errors.CodeInternal),
			Message: "internal error",
		})
		return
	}
	c.AbortWithStatusJSON(statusForCode(appErr.Code), ErrorResponse{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}
