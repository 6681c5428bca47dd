package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/response"
	"stars-workflow-api/internal/service"
)

type SettlementHandler struct {
	settlementService service.SettlementService
}

func NewSettlementHandler(settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// RecordSettlement godoc
// @Summary      정산 항목 기록
// @Description  PAYOUT, BONUS는 0 이상, DEDUCTION은 0 이하 금액만 허용합니다
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body dto.RecordSettlementRequest true "정산 항목"
// @Success      201 {object} response.SuccessResponse{data=dto.SettlementResponse}
// @Failure      422 {object} response.ErrorResponse "금액 부호 불일치"
// @Security     BearerAuth
// @Router       /settlements [post]
func (h *SettlementHandler) RecordSettlement(c *gin.Context) {
	var req dto.RecordSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	settlement, err := h.settlementService.RecordSettlement(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, settlement)
}

// ListSettlements godoc
// @Summary      정산 항목 목록
// @Tags         settlements
// @Produce      json
// @Param        userId query string false "User ID (UUID)"
// @Param        quarterYear query int false "연도"
// @Param        quarterNumber query int false "분기 (1-4)"
// @Param        status query string false "PENDING, PROCESSING, COMPLETED, FAILED"
// @Success      200 {object} response.SuccessResponse{data=[]dto.SettlementResponse}
// @Security     BearerAuth
// @Router       /settlements [get]
func (h *SettlementHandler) ListSettlements(c *gin.Context) {
	var params service.SettlementListParams

	if raw := c.Query("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid user ID")
			return
		}
		params.UserID = &userID
	}

	var ok bool
	if params.QuarterYear, ok = queryInt(c, "quarterYear"); !ok {
		return
	}
	if params.QuarterNumber, ok = queryInt(c, "quarterNumber"); !ok {
		return
	}
	params.Status = queryString(c, "status")

	settlements, err := h.settlementService.ListSettlements(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, settlements)
}

// QuarterSummary godoc
// @Summary      분기 정산 요약
// @Description  유형별 합계와 상태별 건수를 반환합니다
// @Tags         settlements
// @Produce      json
// @Param        quarterYear query int true "연도"
// @Param        quarterNumber query int true "분기 (1-4)"
// @Success      200 {object} response.SuccessResponse{data=dto.QuarterSummaryResponse}
// @Failure      400 {object} response.ErrorResponse "잘못된 분기"
// @Security     BearerAuth
// @Router       /settlements/summary [get]
func (h *SettlementHandler) QuarterSummary(c *gin.Context) {
	year, ok := queryInt(c, "quarterYear")
	if !ok {
		return
	}
	quarter, ok := queryInt(c, "quarterNumber")
	if !ok {
		return
	}
	if year == nil || quarter == nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "quarterYear and quarterNumber are required")
		return
	}

	summary, err := h.settlementService.QuarterSummary(c.Request.Context(), *year, *quarter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, summary)
}

// ProcessRound godoc
// @Summary      정산 회차 실행
// @Description  분기와 회차에 해당하는 PENDING 항목을 처리합니다. 같은 회차가 이미 실행 중이면 409를 반환합니다
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body dto.ProcessRoundRequest true "처리할 분기와 회차"
// @Success      200 {object} response.SuccessResponse{data=dto.RoundReport}
// @Failure      409 {object} response.ErrorResponse "다른 실행이 회차를 처리 중"
// @Security     BearerAuth
// @Router       /settlements/rounds/process [post]
func (h *SettlementHandler) ProcessRound(c *gin.Context) {
	var req dto.ProcessRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	report, err := h.settlementService.ProcessRound(c.Request.Context(), req.QuarterYear, req.QuarterNumber, domain.SettlementRound(req.Round))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, report)
}

// GetSettlement godoc
// @Summary      정산 항목 조회
// @Tags         settlements
// @Produce      json
// @Param        settlementId path string true "Settlement ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SettlementResponse}
// @Failure      404 {object} response.ErrorResponse "정산 항목을 찾을 수 없음"
// @Security     BearerAuth
// @Router       /settlements/{settlementId} [get]
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	settlementID, ok := pathUUID(c, "settlementId", "settlement ID")
	if !ok {
		return
	}

	settlement, err := h.settlementService.GetSettlement(c.Request.Context(), settlementID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, settlement)
}

// AssignRound godoc
// @Summary      정산 회차 지정
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        settlementId path string true "Settlement ID (UUID)"
// @Param        request body dto.AssignRoundRequest true "회차"
// @Success      200 {object} response.SuccessResponse{data=dto.SettlementResponse}
// @Failure      409 {object} response.ErrorResponse "PENDING 상태가 아님"
// @Security     BearerAuth
// @Router       /settlements/{settlementId}/round [patch]
func (h *SettlementHandler) AssignRound(c *gin.Context) {
	settlementID, ok := pathUUID(c, "settlementId", "settlement ID")
	if !ok {
		return
	}

	var req dto.AssignRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	settlement, err := h.settlementService.AssignRound(c.Request.Context(), settlementID, domain.SettlementRound(req.Round))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, settlement)
}

// RetrySettlement godoc
// @Summary      실패한 정산 재시도
// @Description  FAILED 항목을 PENDING으로 되돌려 다음 회차에 다시 처리되게 합니다
// @Tags         settlements
// @Produce      json
// @Param        settlementId path string true "Settlement ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SettlementResponse}
// @Failure      409 {object} response.ErrorResponse "FAILED 상태가 아님"
// @Security     BearerAuth
// @Router       /settlements/{settlementId}/retry [post]
func (h *SettlementHandler) RetrySettlement(c *gin.Context) {
	settlementID, ok := pathUUID(c, "settlementId", "settlement ID")
	if !ok {
		return
	}

	settlement, err := h.settlementService.RetrySettlement(c.Request.Context(), settlementID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, settlement)
}
