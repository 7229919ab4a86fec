package handlers

import (
	"net/http"

	"github.com/EmilianoRojas/brigade-awards/internal/middleware"
	"github.com/EmilianoRojas/brigade-awards/internal/services"

	"github.com/gin-gonic/gin"
)

type AwardHandler struct {
	awards     *services.AwardService
	candidates *services.CandidateService
}

func NewAwardHandler() *AwardHandler {
	return &AwardHandler{
		awards:     services.NewAwardService(),
		candidates: services.NewCandidateService(),
	}
}

// GetAwards lists the awards visible to the caller, enriched with
// has_nominated / has_voted.
func (h *AwardHandler) GetAwards(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	awards, err := h.awards.Visible(identity)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, awards)
}

// GetAllAwards is the admin listing: every award, active flag ignored.
func (h *AwardHandler) GetAllAwards(c *gin.Context) {
	awards, err := h.awards.All()
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, awards)
}

// GetCandidates returns the phase-dependent candidate set for an award.
func (h *AwardHandler) GetCandidates(c *gin.Context) {
	awardID := c.Query("award_id")
	if awardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "award_id is required"})
		return
	}

	users, err := h.candidates.List(awardID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
