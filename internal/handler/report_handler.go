package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stars-workflow-api/internal/response"
	"stars-workflow-api/internal/service"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// UserActivity godoc
// @Summary      사용자 활동 요약
// @Description  배정, 제출, 피드백, 정산 건수를 한 번에 집계합니다
// @Tags         users
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.UserActivityResponse}
// @Failure      404 {object} response.ErrorResponse "사용자를 찾을 수 없음"
// @Security     BearerAuth
// @Router       /users/{userId}/activity [get]
func (h *ReportHandler) UserActivity(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", "user ID")
	if !ok {
		return
	}

	activity, err := h.reportService.UserActivity(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, activity)
}
