package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentora-inc/mentora/internal/application/billing/usecases"
	"github.com/mentora-inc/mentora/internal/shared/logger"
	"github.com/mentora-inc/mentora/internal/shared/utils"
)

// QuotaHandler serves the internal quota check endpoint called by the
// roster subsystem before each student assignment.
type QuotaHandler struct {
	checkQuotaUC *usecases.CheckQuotaUseCase
	logger       logger.Interface
}

func NewQuotaHandler(checkQuotaUC *usecases.CheckQuotaUseCase, logger logger.Interface) *QuotaHandler {
	return &QuotaHandler{
		checkQuotaUC: checkQuotaUC,
		logger:       logger,
	}
}

type CheckQuotaRequest struct {
	TeacherID uint `json:"teacher_id" validate:"required"`
	// Additional defaults to one when omitted.
	Additional int `json:"additional" validate:"omitempty,min=1"`
}

// CheckQuota always answers 200: a denied quota is a result, not an error.
func (h *QuotaHandler) CheckQuota(c *gin.Context) {
	var req CheckQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for quota check", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.checkQuotaUC.Execute(c.Request.Context(), usecases.CheckQuotaCommand{
		TeacherID:  req.TeacherID,
		Additional: req.Additional,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
