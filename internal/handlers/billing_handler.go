package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/practice-service/internal/services"
	"github.com/prepflow/practice-service/internal/utils"
)

type BillingHandler struct {
	BaseHandler
	billingService services.BillingService
}

func NewBillingHandler(billingService services.BillingService, logger utils.Logger) *BillingHandler {
	return &BillingHandler{
		BaseHandler:    NewBaseHandler(logger),
		billingService: billingService,
	}
}

// ListPlans returns the active pricing tiers.
func (h *BillingHandler) ListPlans(c *gin.Context) {
	plans, err := h.billingService.ListPlans(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// StartCheckout hands the caller off to the external payment provider's
// hosted page.
func (h *BillingHandler) StartCheckout(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	planID := parseIDParam(c, "plan_id")
	if planID == 0 {
		return
	}
	h.LogRequest(c, "Starting checkout", "plan_id", planID)

	sess, err := h.billingService.StartCheckout(c.Request.Context(), uid, planID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}
