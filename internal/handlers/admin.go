package handlers

import (
	"net/http"

	"github.com/EmilianoRojas/brigade-awards/internal/models"
	"github.com/EmilianoRojas/brigade-awards/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes phase transitions, activation toggles and the reset.
// Routes are registered behind AdminRequired.
type AdminHandler struct {
	phases *services.PhaseService
}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{phases: services.NewPhaseService()}
}

type toggleActiveRequest struct {
	ID     string `json:"id" binding:"required"`
	Active *bool  `json:"active" binding:"required"`
}

func (h *AdminHandler) ToggleAwardActive(c *gin.Context) {
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and active are required"})
		return
	}

	award, err := h.phases.ToggleActive(req.ID, *req.Active)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

type updatePhaseRequest struct {
	FromPhase models.Phase `json:"from_phase" binding:"required"`
	ToPhase   models.Phase `json:"to_phase" binding:"required"`
}

// UpdateAwardPhase is the bulk override: every award in from_phase moves to
// to_phase.
func (h *AdminHandler) UpdateAwardPhase(c *gin.Context) {
	var req updatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from_phase and to_phase are required"})
		return
	}

	updated, err := h.phases.BulkAdvance(req.FromPhase, req.ToPhase)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type awardIDRequest struct {
	AwardID string `json:"award_id" binding:"required"`
}

func (h *AdminHandler) EndNominationPhase(c *gin.Context) {
	var req awardIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "award_id is required"})
		return
	}

	award, err := h.phases.EndNomination(req.AwardID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

func (h *AdminHandler) EndVotingPhase(c *gin.Context) {
	var req awardIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "award_id is required"})
		return
	}

	award, err := h.phases.EndVoting(req.AwardID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

func (h *AdminHandler) CloseAward(c *gin.Context) {
	var req awardIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "award_id is required"})
		return
	}

	award, err := h.phases.Close(req.AwardID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

func (h *AdminHandler) BulkActivateAwards(c *gin.Context) {
	if _, err := h.phases.SetAllActive(true); err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All awards activated successfully."})
}

func (h *AdminHandler) BulkDeactivateAwards(c *gin.Context) {
	if _, err := h.phases.SetAllActive(false); err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All awards deactivated successfully."})
}

// ResetAwards wipes all nomination and vote records and returns every award
// to NOMINATION.
func (h *AdminHandler) ResetAwards(c *gin.Context) {
	if err := h.phases.Reset(); err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All awards reset to nomination phase."})
}
