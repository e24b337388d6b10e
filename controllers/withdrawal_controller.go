package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/middleware"
	"order-service/services"
)

const maxReturnImages = 5

type WithdrawalController struct {
	withdrawals *services.WithdrawalService
	logger      *zap.Logger
}

func NewWithdrawalController(withdrawals *services.WithdrawalService, logger *zap.Logger) *WithdrawalController {
	return &WithdrawalController{withdrawals: withdrawals, logger: logger}
}

// WithdrawItem removes one item from an order and routes it to the
// cancellation or return flow. Accepts multipart form data so return
// requests can carry evidence images.
func (wc *WithdrawalController) WithdrawItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID := c.Param("id")
	productID := c.Param("productId")
	status := c.PostForm("status")
	reason := c.PostForm("reason")
	if status == "" {
		respondError(c, wc.logger, apperrors.Validation("Status is required"))
		return
	}

	images, closers, err := wc.collectImages(c)
	if err != nil {
		respondError(c, wc.logger, err)
		return
	}
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()

	err = wc.withdrawals.WithdrawItem(c.Request.Context(), services.WithdrawItemRequest{
		OrderID:   orderID,
		ProductID: productID,
		UserID:    userID,
		Status:    services.WithdrawalStatus(status),
		Reason:    reason,
		Images:    images,
	})
	if err != nil {
		respondError(c, wc.logger, err)
		return
	}

	message := "Item cancelled successfully"
	if services.WithdrawalStatus(status) == services.WithdrawalReturned {
		message = "Return request created successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

func (wc *WithdrawalController) collectImages(c *gin.Context) ([]services.EvidenceImage, []multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Plain form bodies without files are fine for cancellations.
		return nil, nil, nil
	}
	files := form.File["returnImages"]
	if len(files) > maxReturnImages {
		return nil, nil, apperrors.Validation("Too many return images, maximum is 5")
	}

	images := make([]services.EvidenceImage, 0, len(files))
	closers := make([]multipart.File, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			wc.logger.Warn("Failed to open uploaded image, skipping",
				zap.String("file", header.Filename),
				zap.Error(err),
			)
			continue
		}
		closers = append(closers, f)
		images = append(images, services.EvidenceImage{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return images, closers, nil
}
