package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/response"
	"stars-workflow-api/internal/service"
)

// CatalogHandler serves users, project requests and projects
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateUser godoc
// @Summary      사용자 등록
// @Description  플랫폼 사용자를 등록합니다. 이메일은 중복될 수 없습니다
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateUserRequest true "사용자 등록 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.UserResponse} "등록 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      409 {object} response.ErrorResponse "이미 등록된 이메일"
// @Router       /users [post]
func (h *CatalogHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	user, err := h.catalogService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, user)
}

// GetUser godoc
// @Summary      사용자 조회
// @Tags         users
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      404 {object} response.ErrorResponse "사용자를 찾을 수 없음"
// @Router       /users/{userId} [get]
func (h *CatalogHandler) GetUser(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", "user ID")
	if !ok {
		return
	}

	user, err := h.catalogService.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, user)
}

// DeactivateUser godoc
// @Summary      사용자 비활성화
// @Description  비활성 사용자는 새로운 배정을 수락할 수 없습니다
// @Tags         users
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse
// @Failure      404 {object} response.ErrorResponse "사용자를 찾을 수 없음"
// @Router       /users/{userId}/deactivate [post]
func (h *CatalogHandler) DeactivateUser(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", "user ID")
	if !ok {
		return
	}

	if err := h.catalogService.DeactivateUser(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// CreateProjectRequest godoc
// @Summary      프로젝트 요청 생성
// @Description  프리랜서 모집 요청을 생성합니다. SINGLE 유형은 항상 1명만 수락합니다
// @Tags         project-requests
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateProjectRequestBody true "프로젝트 요청 생성"
// @Success      201 {object} response.SuccessResponse{data=dto.ProjectRequestResponse}
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Security     BearerAuth
// @Router       /project-requests [post]
func (h *CatalogHandler) CreateProjectRequest(c *gin.Context) {
	creatorID, ok := actingUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	created, err := h.catalogService.CreateProjectRequest(c.Request.Context(), creatorID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, created)
}

// ListProjectRequests godoc
// @Summary      프로젝트 요청 목록
// @Tags         project-requests
// @Produce      json
// @Param        status query string false "OPEN, FULL, CLOSED, CANCELLED"
// @Param        mine query bool false "내가 생성한 요청만"
// @Success      200 {object} response.SuccessResponse{data=[]dto.ProjectRequestResponse}
// @Security     BearerAuth
// @Router       /project-requests [get]
func (h *CatalogHandler) ListProjectRequests(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}

	var createdBy = &userID
	if c.Query("mine") != "true" {
		createdBy = nil
	}

	requests, err := h.catalogService.ListProjectRequests(c.Request.Context(), queryString(c, "status"), createdBy)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, requests)
}

// GetProjectRequest godoc
// @Summary      프로젝트 요청 조회
// @Tags         project-requests
// @Produce      json
// @Param        requestId path string true "Request ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.ProjectRequestResponse}
// @Failure      404 {object} response.ErrorResponse "요청을 찾을 수 없음"
// @Security     BearerAuth
// @Router       /project-requests/{requestId} [get]
func (h *CatalogHandler) GetProjectRequest(c *gin.Context) {
	requestID, ok := pathUUID(c, "requestId", "request ID")
	if !ok {
		return
	}

	found, err := h.catalogService.GetProjectRequest(c.Request.Context(), requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, found)
}

// CloseProjectRequest godoc
// @Summary      프로젝트 요청 마감
// @Description  OPEN 또는 FULL 요청을 CLOSED로 변경합니다
// @Tags         project-requests
// @Produce      json
// @Param        requestId path string true "Request ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.ProjectRequestResponse}
// @Failure      409 {object} response.ErrorResponse "허용되지 않는 상태 전이"
// @Security     BearerAuth
// @Router       /project-requests/{requestId}/close [post]
func (h *CatalogHandler) CloseProjectRequest(c *gin.Context) {
	requestID, ok := pathUUID(c, "requestId", "request ID")
	if !ok {
		return
	}

	closed, err := h.catalogService.CloseProjectRequest(c.Request.Context(), requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, closed)
}

// CancelProjectRequest godoc
// @Summary      프로젝트 요청 취소
// @Description  요청과 진행 중인 모든 배정을 함께 취소합니다
// @Tags         project-requests
// @Produce      json
// @Param        requestId path string true "Request ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CancelProjectRequestResponse}
// @Failure      409 {object} response.ErrorResponse "허용되지 않는 상태 전이"
// @Security     BearerAuth
// @Router       /project-requests/{requestId}/cancel [post]
func (h *CatalogHandler) CancelProjectRequest(c *gin.Context) {
	requestID, ok := pathUUID(c, "requestId", "request ID")
	if !ok {
		return
	}

	cancelled, err := h.catalogService.CancelProjectRequest(c.Request.Context(), requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, cancelled)
}

// CreateProject godoc
// @Summary      프로젝트 생성
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateProjectBody true "프로젝트 생성"
// @Success      201 {object} response.SuccessResponse{data=dto.ProjectResponse}
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Security     BearerAuth
// @Router       /projects [post]
func (h *CatalogHandler) CreateProject(c *gin.Context) {
	ownerID, ok := actingUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	project, err := h.catalogService.CreateProject(c.Request.Context(), ownerID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, project)
}

// ListMyProjects godoc
// @Summary      내 프로젝트 목록
// @Tags         projects
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.ProjectResponse}
// @Security     BearerAuth
// @Router       /projects [get]
func (h *CatalogHandler) ListMyProjects(c *gin.Context) {
	ownerID, ok := actingUserID(c)
	if !ok {
		return
	}

	projects, err := h.catalogService.ListProjects(c.Request.Context(), ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, projects)
}

// GetProject godoc
// @Summary      프로젝트 조회
// @Tags         projects
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.ProjectResponse}
// @Failure      404 {object} response.ErrorResponse "프로젝트를 찾을 수 없음"
// @Security     BearerAuth
// @Router       /projects/{projectId} [get]
func (h *CatalogHandler) GetProject(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId", "project ID")
	if !ok {
		return
	}

	project, err := h.catalogService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, project)
}
