package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"order-service/apperrors"
)

// respondError maps any error to the API error envelope. Only
// *apperrors.Error details are exposed; everything else reports as a
// generic server error.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	appErr := apperrors.From(err)
	if appErr.Kind == apperrors.KindInternal || appErr.Kind == apperrors.KindExternal {
		logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("errorType", string(appErr.Kind)),
			zap.Error(err),
		)
	}
	c.JSON(appErr.Code, gin.H{
		"success":   false,
		"errorType": appErr.Kind,
		"message":   appErr.Message,
	})
}

// bindingMessage flattens a gin binding failure into one readable message,
// naming the first offending field when the validator reports one.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "Invalid request: field '" + verrs[0].Field() + "' failed on '" + verrs[0].Tag() + "'"
	}
	return "Invalid request body"
}

func parsePaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
