package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/models"
	"order-service/services"
)

type CancellationController struct {
	cancellations *services.CancellationService
	logger        *zap.Logger
}

func NewCancellationController(cancellations *services.CancellationService, logger *zap.Logger) *CancellationController {
	return &CancellationController{cancellations: cancellations, logger: logger}
}

// MarkProcessed flags a cancelled order as operationally handled.
func (cc *CancellationController) MarkProcessed(c *gin.Context) {
	record, err := cc.cancellations.MarkProcessed(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cancelled order marked as processed",
		"data":    record,
	})
}

type updateRefundStatusRequest struct {
	RefundStatus  string `json:"refund_status" binding:"required"`
	TransactionID string `json:"transaction_id"`
}

// UpdateRefundStatus moves the refund along Pending/Processed/NotRequired.
func (cc *CancellationController) UpdateRefundStatus(c *gin.Context) {
	var req updateRefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, cc.logger, apperrors.Validation(bindingMessage(err)))
		return
	}

	record, err := cc.cancellations.UpdateRefundStatus(
		c.Request.Context(),
		c.Param("id"),
		models.RefundStatus(req.RefundStatus),
		req.TransactionID,
	)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Refund status updated successfully",
		"data":    record,
	})
}

// List returns cancelled orders, newest first.
func (cc *CancellationController) List(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	result, err := cc.cancellations.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, cc.logger, err)
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
