package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/response"
	"stars-workflow-api/internal/service"
)

type AssignmentHandler struct {
	matchingService service.MatchingService
}

func NewAssignmentHandler(matchingService service.MatchingService) *AssignmentHandler {
	return &AssignmentHandler{matchingService: matchingService}
}

// AcceptAssignment godoc
// @Summary      배정 수락
// @Description  인증된 프리랜서가 프로젝트 요청을 수락합니다. 정원이 찼으면 409를 반환합니다
// @Tags         assignments
// @Produce      json
// @Param        requestId path string true "Request ID (UUID)"
// @Success      201 {object} response.SuccessResponse{data=dto.AssignmentResponse}
// @Failure      404 {object} response.ErrorResponse "요청을 찾을 수 없음"
// @Failure      409 {object} response.ErrorResponse "정원 초과 또는 중복 배정"
// @Security     BearerAuth
// @Router       /project-requests/{requestId}/accept [post]
func (h *AssignmentHandler) AcceptAssignment(c *gin.Context) {
	freelancerID, ok := actingUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "requestId", "request ID")
	if !ok {
		return
	}

	assignment, err := h.matchingService.AcceptAssignment(c.Request.Context(), requestID, freelancerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, assignment)
}

// ListByRequest godoc
// @Summary      요청별 배정 목록
// @Tags         assignments
// @Produce      json
// @Param        requestId path string true "Request ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.AssignmentResponse}
// @Security     BearerAuth
// @Router       /project-requests/{requestId}/assignments [get]
func (h *AssignmentHandler) ListByRequest(c *gin.Context) {
	requestID, ok := pathUUID(c, "requestId", "request ID")
	if !ok {
		return
	}

	assignments, err := h.matchingService.ListAssignmentsByRequest(c.Request.Context(), requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, assignments)
}

// ListMine godoc
// @Summary      내 배정 목록
// @Description  각 배정의 요청 정보와 슬롯별 활성 제출본을 함께 반환합니다
// @Tags         assignments
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.MyAssignmentResponse}
// @Security     BearerAuth
// @Router       /assignments/me [get]
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	freelancerID, ok := actingUserID(c)
	if !ok {
		return
	}

	assignments, err := h.matchingService.ListAssignmentsByFreelancer(c.Request.Context(), freelancerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, assignments)
}

// GetAssignment godoc
// @Summary      배정 조회
// @Tags         assignments
// @Produce      json
// @Param        assignmentId path string true "Assignment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.AssignmentResponse}
// @Failure      404 {object} response.ErrorResponse "배정을 찾을 수 없음"
// @Security     BearerAuth
// @Router       /assignments/{assignmentId} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	assignmentID, ok := pathUUID(c, "assignmentId", "assignment ID")
	if !ok {
		return
	}

	assignment, err := h.matchingService.GetAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, assignment)
}

// CancelAssignment godoc
// @Summary      배정 취소
// @Description  좌석을 반환하고 FULL 요청은 다시 OPEN이 됩니다. 기존 제출본은 유지됩니다
// @Tags         assignments
// @Produce      json
// @Param        assignmentId path string true "Assignment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.AssignmentResponse}
// @Failure      409 {object} response.ErrorResponse "이미 완료되었거나 취소된 배정"
// @Security     BearerAuth
// @Router       /assignments/{assignmentId}/cancel [post]
func (h *AssignmentHandler) CancelAssignment(c *gin.Context) {
	assignmentID, ok := pathUUID(c, "assignmentId", "assignment ID")
	if !ok {
		return
	}

	assignment, err := h.matchingService.CancelAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, assignment)
}

// AdvanceAssignment godoc
// @Summary      배정 상태 변경
// @Description  ACCEPTED → IN_PROGRESS → SUBMITTED → COMPLETED 순서로만 진행합니다
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        assignmentId path string true "Assignment ID (UUID)"
// @Param        request body dto.AdvanceAssignmentRequest true "목표 상태"
// @Success      200 {object} response.SuccessResponse{data=dto.AssignmentResponse}
// @Failure      409 {object} response.ErrorResponse "허용되지 않는 상태 전이"
// @Security     BearerAuth
// @Router       /assignments/{assignmentId}/status [patch]
func (h *AssignmentHandler) AdvanceAssignment(c *gin.Context) {
	assignmentID, ok := pathUUID(c, "assignmentId", "assignment ID")
	if !ok {
		return
	}

	var req dto.AdvanceAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	assignment, err := h.matchingService.AdvanceAssignment(c.Request.Context(), assignmentID, domain.AssignmentStatus(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, assignment)
}
