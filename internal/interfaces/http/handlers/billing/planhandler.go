package billing

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentora-inc/mentora/internal/application/billing/usecases"
	"github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/logger"
	"github.com/mentora-inc/mentora/internal/shared/utils"
)

type PlanHandler struct {
	createPlanUC     *usecases.CreatePlanUseCase
	updatePlanUC     *usecases.UpdatePlanUseCase
	getPlanUC        *usecases.GetPlanUseCase
	listPlansUC      *usecases.ListPlansUseCase
	activatePlanUC   *usecases.ActivatePlanUseCase
	deactivatePlanUC *usecases.DeactivatePlanUseCase
	logger           logger.Interface
}

func NewPlanHandler(
	createPlanUC *usecases.CreatePlanUseCase,
	updatePlanUC *usecases.UpdatePlanUseCase,
	getPlanUC *usecases.GetPlanUseCase,
	listPlansUC *usecases.ListPlansUseCase,
	activatePlanUC *usecases.ActivatePlanUseCase,
	deactivatePlanUC *usecases.DeactivatePlanUseCase,
	logger logger.Interface,
) *PlanHandler {
	return &PlanHandler{
		createPlanUC:     createPlanUC,
		updatePlanUC:     updatePlanUC,
		getPlanUC:        getPlanUC,
		listPlansUC:      listPlansUC,
		activatePlanUC:   activatePlanUC,
		deactivatePlanUC: deactivatePlanUC,
		logger:           logger,
	}
}

type CreatePlanRequest struct {
	Code         string         `json:"code" binding:"required"`
	Name         string         `json:"name" binding:"required"`
	StudentLimit int            `json:"student_limit" binding:"required,min=1"`
	PriceMonthly string         `json:"price_monthly" binding:"required"`
	PriceYearly  string         `json:"price_yearly" binding:"required"`
	Currency     string         `json:"currency"`
	TrialDays    int            `json:"trial_days"`
	Features     map[string]any `json:"features"`
}

type UpdatePlanRequest struct {
	Name         string         `json:"name" binding:"required"`
	StudentLimit int            `json:"student_limit" binding:"required,min=1"`
	PriceMonthly string         `json:"price_monthly" binding:"required"`
	PriceYearly  string         `json:"price_yearly" binding:"required"`
	Currency     string         `json:"currency"`
	TrialDays    int            `json:"trial_days"`
	Features     map[string]any `json:"features"`
}

// UpdatePlanStatusRequest toggles sale availability for a plan.
type UpdatePlanStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CreatePlanCommand{
		Code:         req.Code,
		Name:         req.Name,
		StudentLimit: req.StudentLimit,
		PriceMonthly: req.PriceMonthly,
		PriceYearly:  req.PriceYearly,
		Currency:     req.Currency,
		TrialDays:    req.TrialDays,
		Features:     req.Features,
	}

	result, err := h.createPlanUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Plan created successfully")
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planSID, err := parsePlanSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update plan",
			"plan_sid", planSID,
			"error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.UpdatePlanCommand{
		PlanSID:      planSID,
		Name:         req.Name,
		StudentLimit: req.StudentLimit,
		PriceMonthly: req.PriceMonthly,
		PriceYearly:  req.PriceYearly,
		Currency:     req.Currency,
		TrialDays:    req.TrialDays,
		Features:     req.Features,
	}

	result, err := h.updatePlanUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan updated successfully", result)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	planSID, err := parsePlanSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getPlanUC.Execute(c.Request.Context(), usecases.GetPlanCommand{PlanSID: planSID})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	cmd := usecases.ListPlansCommand{}
	cmd.Page, cmd.PageSize = utils.ParsePagination(c)

	if isActiveStr := c.Query("is_active"); isActiveStr != "" {
		isActive, err := strconv.ParseBool(isActiveStr)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid is_active parameter"))
			return
		}
		cmd.IsActive = &isActive
	}

	plans, total, err := h.listPlansUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, plans, total, cmd.Page, cmd.PageSize)
}

// GetPublicPlans returns the active plan catalog for the pricing page.
func (h *PlanHandler) GetPublicPlans(c *gin.Context) {
	result, err := h.listPlansUC.ExecutePublic(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *PlanHandler) UpdatePlanStatus(c *gin.Context) {
	planSID, err := parsePlanSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdatePlanStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update plan status", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	switch req.Status {
	case "active":
		result, err := h.activatePlanUC.Execute(c.Request.Context(), usecases.ActivatePlanCommand{PlanSID: planSID})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Plan activated successfully", result)

	case "inactive":
		result, err := h.deactivatePlanUC.Execute(c.Request.Context(), usecases.DeactivatePlanCommand{PlanSID: planSID})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Plan deactivated successfully", result)

	default:
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid status value")
	}
}

func parsePlanSID(c *gin.Context) (string, error) {
	sid := c.Param("sid")
	if sid == "" {
		return "", errors.NewValidationError("Plan SID is required")
	}
	return sid, nil
}
