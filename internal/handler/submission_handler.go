package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/response"
	"stars-workflow-api/internal/service"
)

type SubmissionHandler struct {
	submissionService service.SubmissionService
}

func NewSubmissionHandler(submissionService service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// CreateSubmission godoc
// @Summary      제출본 생성
// @Description  슬롯의 첫 번째 버전을 등록합니다. assignmentId 또는 projectId 중 하나만 지정해야 합니다
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateSubmissionRequest true "제출본 생성 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.SubmissionResponse}
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "배정 소유자가 아님"
// @Failure      409 {object} response.ErrorResponse "슬롯에 이미 활성 제출본이 있음"
// @Security     BearerAuth
// @Router       /submissions [post]
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	submission, err := h.submissionService.CreateSubmission(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, submission)
}

// RequestUploadURL godoc
// @Summary      업로드 URL 발급
// @Description  영상 또는 썸네일을 S3에 직접 업로드하기 위한 Presigned URL을 발급합니다
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        request body dto.UploadURLRequest true "업로드 대상 파일"
// @Success      200 {object} response.SuccessResponse{data=dto.UploadURLResponse}
// @Failure      400 {object} response.ErrorResponse "지원하지 않는 파일 형식"
// @Security     BearerAuth
// @Router       /submissions/upload-url [post]
func (h *SubmissionHandler) RequestUploadURL(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}

	var req dto.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	upload, err := h.submissionService.RequestUploadURL(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, upload)
}

// GetSubmission godoc
// @Summary      제출본 조회
// @Tags         submissions
// @Produce      json
// @Param        submissionId path string true "Submission ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SubmissionResponse}
// @Failure      404 {object} response.ErrorResponse "제출본을 찾을 수 없음"
// @Security     BearerAuth
// @Router       /submissions/{submissionId} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	submissionID, ok := pathUUID(c, "submissionId", "submission ID")
	if !ok {
		return
	}

	submission, err := h.submissionService.GetSubmission(c.Request.Context(), submissionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, submission)
}

// Resubmit godoc
// @Summary      재제출
// @Description  반려된 활성 제출본을 REVISED로 보관하고 같은 슬롯에 다음 버전을 생성합니다
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        submissionId path string true "반려된 Submission ID (UUID)"
// @Param        request body dto.ResubmitRequest true "새 버전 정보"
// @Success      201 {object} response.SuccessResponse{data=dto.SubmissionResponse}
// @Failure      409 {object} response.ErrorResponse "반려 상태가 아니거나 동시 재제출"
// @Security     BearerAuth
// @Router       /submissions/{submissionId}/resubmit [post]
func (h *SubmissionHandler) Resubmit(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	submissionID, ok := pathUUID(c, "submissionId", "submission ID")
	if !ok {
		return
	}

	var req dto.ResubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	next, err := h.submissionService.Resubmit(c.Request.Context(), submissionID, userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, next)
}

// StartReview godoc
// @Summary      검토 시작
// @Tags         submissions
// @Produce      json
// @Param        submissionId path string true "Submission ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SubmissionResponse}
// @Failure      409 {object} response.ErrorResponse "허용되지 않는 상태 전이"
// @Security     BearerAuth
// @Router       /submissions/{submissionId}/start-review [post]
func (h *SubmissionHandler) StartReview(c *gin.Context) {
	submissionID, ok := pathUUID(c, "submissionId", "submission ID")
	if !ok {
		return
	}

	submission, err := h.submissionService.StartReview(c.Request.Context(), submissionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, submission)
}

// Review godoc
// @Summary      제출본 승인/반려
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        submissionId path string true "Submission ID (UUID)"
// @Param        request body dto.ReviewSubmissionRequest true "검토 결과"
// @Success      200 {object} response.SuccessResponse{data=dto.SubmissionResponse}
// @Failure      409 {object} response.ErrorResponse "허용되지 않는 상태 전이"
// @Security     BearerAuth
// @Router       /submissions/{submissionId}/review [post]
func (h *SubmissionHandler) Review(c *gin.Context) {
	reviewerID, ok := actingUserID(c)
	if !ok {
		return
	}
	submissionID, ok := pathUUID(c, "submissionId", "submission ID")
	if !ok {
		return
	}

	var req dto.ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	submission, err := h.submissionService.Review(c.Request.Context(), submissionID, reviewerID, domain.SubmissionStatus(req.Decision))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, submission)
}

// ListByAssignment godoc
// @Summary      배정별 제출본 목록
// @Tags         submissions
// @Produce      json
// @Param        assignmentId path string true "Assignment ID (UUID)"
// @Param        activeOnly query bool false "활성 버전만"
// @Success      200 {object} response.SuccessResponse{data=[]dto.SubmissionResponse}
// @Security     BearerAuth
// @Router       /assignments/{assignmentId}/submissions [get]
func (h *SubmissionHandler) ListByAssignment(c *gin.Context) {
	assignmentID, ok := pathUUID(c, "assignmentId", "assignment ID")
	if !ok {
		return
	}

	submissions, err := h.submissionService.ListSubmissionsByAssignment(c.Request.Context(), assignmentID, c.Query("activeOnly") == "true")
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, submissions)
}

// ListSlotHistory godoc
// @Summary      슬롯 버전 이력
// @Description  한 슬롯의 모든 버전을 최신순으로 반환합니다
// @Tags         submissions
// @Produce      json
// @Param        assignmentId path string true "Assignment ID (UUID)"
// @Param        slot path int true "Version slot"
// @Success      200 {object} response.SuccessResponse{data=[]dto.SubmissionResponse}
// @Security     BearerAuth
// @Router       /assignments/{assignmentId}/slots/{slot}/history [get]
func (h *SubmissionHandler) ListSlotHistory(c *gin.Context) {
	assignmentID, ok := pathUUID(c, "assignmentId", "assignment ID")
	if !ok {
		return
	}
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid slot")
		return
	}

	history, err := h.submissionService.ListSlotHistory(c.Request.Context(), assignmentID, slot)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, history)
}
