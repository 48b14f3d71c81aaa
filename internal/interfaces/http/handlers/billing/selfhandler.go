package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentora-inc/mentora/internal/application/billing/usecases"
	"github.com/mentora-inc/mentora/internal/interfaces/http/middleware"
	"github.com/mentora-inc/mentora/internal/shared/logger"
	"github.com/mentora-inc/mentora/internal/shared/utils"
)

// SelfHandler serves the teacher-facing view of their own subscription.
type SelfHandler struct {
	getTeacherSubUC *usecases.GetTeacherSubscriptionUseCase
	checkQuotaUC    *usecases.CheckQuotaUseCase
	logger          logger.Interface
}

func NewSelfHandler(
	getTeacherSubUC *usecases.GetTeacherSubscriptionUseCase,
	checkQuotaUC *usecases.CheckQuotaUseCase,
	logger logger.Interface,
) *SelfHandler {
	return &SelfHandler{
		getTeacherSubUC: getTeacherSubUC,
		checkQuotaUC:    checkQuotaUC,
		logger:          logger,
	}
}

func (h *SelfHandler) GetMySubscription(c *gin.Context) {
	teacherID, ok := middleware.TeacherIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing teacher identity")
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

func (h *SelfHandler) GetMyQuota(c *gin.Context) {
	teacherID, ok := middleware.TeacherIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "missing teacher identity")
		return
	}

	result, err := h.checkQuotaUC.Execute(c.Request.Context(), usecases.CheckQuotaCommand{
		TeacherID: teacherID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
