package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/models"
	"order-service/services"
)

type ReturnController struct {
	returns *services.ReturnService
	logger  *zap.Logger
}

func NewReturnController(returns *services.ReturnService, logger *zap.Logger) *ReturnController {
	return &ReturnController{returns: returns, logger: logger}
}

// MarkInspected records that the returned goods passed through inspection.
func (rc *ReturnController) MarkInspected(c *gin.Context) {
	record, err := rc.returns.MarkInspected(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Returned order marked as inspected",
		"data":    record,
	})
}

// UpdateRefundStatus moves the return refund along Pending/Processed/NotRequired.
func (rc *ReturnController) UpdateRefundStatus(c *gin.Context) {
	var req updateRefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, rc.logger, apperrors.Validation(bindingMessage(err)))
		return
	}

	record, err := rc.returns.UpdateRefundStatus(
		c.Request.Context(),
		c.Param("id"),
		models.RefundStatus(req.RefundStatus),
		req.TransactionID,
	)
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Return refund status updated successfully",
		"data":    record,
	})
}

// List returns returned orders, newest first.
func (rc *ReturnController) List(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	result, err := rc.returns.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"total":       result.Total,
		"currentPage": result.Page,
		"totalPages":  result.TotalPages,
		"data":        result.Rows,
	})
}
