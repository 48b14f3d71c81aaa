package billing

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentora-inc/mentora/internal/application/billing/usecases"
	domain "github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/logger"
	"github.com/mentora-inc/mentora/internal/shared/utils"
)

type SubscriptionHandler struct {
	upsertUC               *usecases.UpsertSubscriptionUseCase
	changePlanUC           *usecases.ChangePlanUseCase
	cancelUC               *usecases.CancelSubscriptionUseCase
	reactivateUC           *usecases.ReactivateSubscriptionUseCase
	renewUC                *usecases.RenewSubscriptionUseCase
	setCancelAtPeriodEndUC *usecases.SetCancelAtPeriodEndUseCase
	getSubscriptionUC      *usecases.GetSubscriptionUseCase
	getTeacherSubUC        *usecases.GetTeacherSubscriptionUseCase
	listSubscriptionsUC    *usecases.ListSubscriptionsUseCase
	listEventsUC           *usecases.ListSubscriptionEventsUseCase
	logger                 logger.Interface
}

func NewSubscriptionHandler(
	upsertUC *usecases.UpsertSubscriptionUseCase,
	changePlanUC *usecases.ChangePlanUseCase,
	cancelUC *usecases.CancelSubscriptionUseCase,
	reactivateUC *usecases.ReactivateSubscriptionUseCase,
	renewUC *usecases.RenewSubscriptionUseCase,
	setCancelAtPeriodEndUC *usecases.SetCancelAtPeriodEndUseCase,
	getSubscriptionUC *usecases.GetSubscriptionUseCase,
	getTeacherSubUC *usecases.GetTeacherSubscriptionUseCase,
	listSubscriptionsUC *usecases.ListSubscriptionsUseCase,
	listEventsUC *usecases.ListSubscriptionEventsUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		upsertUC:               upsertUC,
		changePlanUC:           changePlanUC,
		cancelUC:               cancelUC,
		reactivateUC:           reactivateUC,
		renewUC:                renewUC,
		setCancelAtPeriodEndUC: setCancelAtPeriodEndUC,
		getSubscriptionUC:      getSubscriptionUC,
		getTeacherSubUC:        getTeacherSubUC,
		listSubscriptionsUC:    listSubscriptionsUC,
		listEventsUC:           listEventsUC,
		logger:                 logger,
	}
}

type AssignSubscriptionRequest struct {
	PlanSID       string `json:"plan_sid" binding:"required"`
	BillingPeriod string `json:"billing_period" binding:"required,oneof=MONTHLY YEARLY"`
	// StartNow defaults to true; omitting it must not produce an
	// already-expired period.
	StartNow  *bool `json:"start_now"`
	TrialDays *int  `json:"trial_days"`
}

type ChangePlanRequest struct {
	NewPlanSID       string `json:"new_plan_sid" binding:"required"`
	NewBillingPeriod string `json:"new_billing_period" binding:"omitempty,oneof=MONTHLY YEARLY"`
	// KeepPeriod defaults to true; omitting it must not restart the
	// running period.
	KeepPeriod *bool  `json:"keep_period"`
	Effective  string `json:"effective" binding:"omitempty,oneof=IMMEDIATE NEXT_PERIOD"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason"`
}

type ReactivateSubscriptionRequest struct {
	ExtendDays int `json:"extend_days"`
}

type SetCancelAtPeriodEndRequest struct {
	CancelAtPeriodEnd *bool `json:"cancel_at_period_end" binding:"required"`
}

// AssignSubscription assigns a plan to a teacher, creating or overwriting
// the teacher's subscription row.
func (h *SubscriptionHandler) AssignSubscription(c *gin.Context) {
	teacherID, err := utils.ParseUintParam(c, "teacher_id", "teacher")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req AssignSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for assign subscription",
			"teacher_id", teacherID,
			"error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.UpsertSubscriptionCommand{
		TeacherID:     teacherID,
		PlanSID:       req.PlanSID,
		BillingPeriod: req.BillingPeriod,
		StartNow:      boolOrDefault(req.StartNow, true),
		TrialDays:     req.TrialDays,
	}

	result, err := h.upsertUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondBillingError(c, err)
		return
	}

	if result.Created {
		utils.CreatedResponse(c, result.Subscription, "Subscription created successfully")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Subscription reassigned successfully", result.Subscription)
}

func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	sid, err := parseSubscriptionSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for change plan",
			"subscription_sid", sid,
			"error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.ChangePlanCommand{
		SubscriptionSID:  sid,
		NewPlanSID:       req.NewPlanSID,
		NewBillingPeriod: req.NewBillingPeriod,
		KeepPeriod:       boolOrDefault(req.KeepPeriod, true),
		Effective:        req.Effective,
	}

	result, err := h.changePlanUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondBillingError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan changed successfully", result)
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	sid, err := parseSubscriptionSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.logger.Warnw("invalid request body for cancel subscription", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.cancelUC.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		SubscriptionSID: sid,
		Reason:          req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription canceled successfully", result)
}

func (h *SubscriptionHandler) ReactivateSubscription(c *gin.Context) {
	sid, err := parseSubscriptionSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ReactivateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.logger.Warnw("invalid request body for reactivate subscription", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.reactivateUC.Execute(c.Request.Context(), usecases.ReactivateSubscriptionCommand{
		SubscriptionSID: sid,
		ExtendDays:      req.ExtendDays,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription reactivated successfully", result)
}

func (h *SubscriptionHandler) RenewSubscription(c *gin.Context) {
	sid, err := parseSubscriptionSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.renewUC.Execute(c.Request.Context(), usecases.RenewSubscriptionCommand{
		SubscriptionSID: sid,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription renewed successfully", result)
}

func (h *SubscriptionHandler) SetCancelAtPeriodEnd(c *gin.Context) {
	sid, err := parseSubscriptionSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SetCancelAtPeriodEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for set cancel at period end", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.setCancelAtPeriodEndUC.Execute(c.Request.Context(), usecases.SetCancelAtPeriodEndCommand{
		SubscriptionSID:   sid,
		CancelAtPeriodEnd: *req.CancelAtPeriodEnd,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	sid, err := parseSubscriptionSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getSubscriptionUC.Execute(c.Request.Context(), usecases.GetSubscriptionCommand{
		SubscriptionSID: sid,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetTeacherSubscription is the admin lookup by teacher rather than by
// subscription SID.
func (h *SubscriptionHandler) GetTeacherSubscription(c *gin.Context) {
	teacherID, err := utils.ParseUintParam(c, "teacher_id", "teacher")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getTeacherSubUC.Execute(c.Request.Context(), usecases.GetTeacherSubscriptionCommand{
		TeacherID: teacherID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	cmd := usecases.ListSubscriptionsCommand{
		Status:        c.Query("status"),
		PlanSID:       c.Query("plan_sid"),
		BillingPeriod: c.Query("billing_period"),
	}
	cmd.Page, cmd.PageSize = utils.ParsePagination(c)

	if teacherID := utils.QueryUint(c, "teacher_id"); teacherID != nil {
		cmd.TeacherID = *teacherID
	}
	if days := utils.QueryInt(c, "expiring_within_days"); days != nil {
		cmd.ExpiringWithinDays = *days
	}

	subs, total, err := h.listSubscriptionsUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, subs, total, cmd.Page, cmd.PageSize)
}

func (h *SubscriptionHandler) ListSubscriptionEvents(c *gin.Context) {
	sid, err := parseSubscriptionSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid limit parameter"))
			return
		}
	}

	events, err := h.listEventsUC.Execute(c.Request.Context(), usecases.ListSubscriptionEventsCommand{
		SubscriptionSID: sid,
		Limit:           limit,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", events)
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func parseSubscriptionSID(c *gin.Context) (string, error) {
	sid := c.Param("sid")
	if sid == "" {
		return "", errors.NewValidationError("Subscription SID is required")
	}
	return sid, nil
}

// respondBillingError maps quota violations to a structured 400 payload so
// the admin UI can show the counts; everything else falls through to the
// standard error mapping.
func respondBillingError(c *gin.Context, err error) {
	if violation, ok := domain.IsQuotaViolation(err); ok {
		c.JSON(http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Error: &utils.ErrorInfo{
				Type:    violation.Code,
				Message: violation.Error(),
			},
			Data: gin.H{
				"code":    violation.Code,
				"current": violation.Current,
				"limit":   violation.Limit,
			},
		})
		return
	}
	utils.ErrorResponseWithError(c, err)
}
