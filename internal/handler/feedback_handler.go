package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/response"
	"stars-workflow-api/internal/service"
)

type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// AddFeedback godoc
// @Summary      피드백 작성
// @Description  제출본에 시간 구간 또는 특정 시점 피드백을 남깁니다
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        submissionId path string true "Submission ID (UUID)"
// @Param        request body dto.AddFeedbackRequest true "피드백 내용"
// @Success      201 {object} response.SuccessResponse{data=dto.FeedbackResponse}
// @Failure      422 {object} response.ErrorResponse "잘못된 시간 구간"
// @Security     BearerAuth
// @Router       /submissions/{submissionId}/feedback [post]
func (h *FeedbackHandler) AddFeedback(c *gin.Context) {
	reviewerID, ok := actingUserID(c)
	if !ok {
		return
	}
	submissionID, ok := pathUUID(c, "submissionId", "submission ID")
	if !ok {
		return
	}

	var req dto.AddFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	feedback, err := h.feedbackService.AddFeedback(c.Request.Context(), submissionID, reviewerID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, feedback)
}

// ListFeedback godoc
// @Summary      제출본 피드백 목록
// @Tags         feedback
// @Produce      json
// @Param        submissionId path string true "Submission ID (UUID)"
// @Param        status query string false "PENDING, RESOLVED, WONTFIX"
// @Success      200 {object} response.SuccessResponse{data=[]dto.FeedbackResponse}
// @Security     BearerAuth
// @Router       /submissions/{submissionId}/feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	submissionID, ok := pathUUID(c, "submissionId", "submission ID")
	if !ok {
		return
	}

	feedback, err := h.feedbackService.ListFeedback(c.Request.Context(), submissionID, queryString(c, "status"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, feedback)
}

// GetFeedback godoc
// @Summary      피드백 조회
// @Tags         feedback
// @Produce      json
// @Param        feedbackId path string true "Feedback ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.FeedbackResponse}
// @Failure      404 {object} response.ErrorResponse "피드백을 찾을 수 없음"
// @Security     BearerAuth
// @Router       /feedback/{feedbackId} [get]
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	feedbackID, ok := pathUUID(c, "feedbackId", "feedback ID")
	if !ok {
		return
	}

	feedback, err := h.feedbackService.GetFeedback(c.Request.Context(), feedbackID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, feedback)
}

// UpdateFeedback godoc
// @Summary      피드백 수정
// @Description  작성자만 PENDING 상태의 피드백을 수정할 수 있습니다
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        feedbackId path string true "Feedback ID (UUID)"
// @Param        request body dto.UpdateFeedbackRequest true "수정할 필드"
// @Success      200 {object} response.SuccessResponse{data=dto.FeedbackResponse}
// @Failure      403 {object} response.ErrorResponse "작성자가 아님"
// @Security     BearerAuth
// @Router       /feedback/{feedbackId} [patch]
func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	authorID, ok := actingUserID(c)
	if !ok {
		return
	}
	feedbackID, ok := pathUUID(c, "feedbackId", "feedback ID")
	if !ok {
		return
	}

	var req dto.UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	feedback, err := h.feedbackService.UpdateFeedback(c.Request.Context(), feedbackID, authorID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, feedback)
}

// ResolveFeedback godoc
// @Summary      피드백 처리
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        feedbackId path string true "Feedback ID (UUID)"
// @Param        request body dto.ResolveFeedbackRequest true "처리 결과"
// @Success      200 {object} response.SuccessResponse{data=dto.FeedbackResponse}
// @Failure      409 {object} response.ErrorResponse "이미 처리된 피드백"
// @Security     BearerAuth
// @Router       /feedback/{feedbackId}/resolve [post]
func (h *FeedbackHandler) ResolveFeedback(c *gin.Context) {
	resolverID, ok := actingUserID(c)
	if !ok {
		return
	}
	feedbackID, ok := pathUUID(c, "feedbackId", "feedback ID")
	if !ok {
		return
	}

	var req dto.ResolveFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	feedback, err := h.feedbackService.Resolve(c.Request.Context(), feedbackID, resolverID, domain.FeedbackStatus(req.Outcome))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, feedback)
}
