package handlers

import (
	"net/http"

	"github.com/EmilianoRojas/brigade-awards/internal/middleware"
	"github.com/EmilianoRojas/brigade-awards/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	store   *services.VoteStore
	results *services.ResultService
}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{
		store:   services.NewVoteStore(),
		results: services.NewResultService(),
	}
}

type submitFinalVoteRequest struct {
	AwardID           string `json:"award_id"`
	NomineeID         string `json:"nominee_user_id"`
	NominationGroupID string `json:"nomination_group_id"`
}

// SubmitFinalVote upserts the caller's single final vote for an award.
func (h *VoteHandler) SubmitFinalVote(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req submitFinalVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AwardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "award_id and either nominee_user_id or nomination_group_id are required"})
		return
	}

	if err := h.store.Submit(req.AwardID, identity, req.NomineeID, req.NominationGroupID); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUserFinalVotes returns the caller's final-vote records.
func (h *VoteHandler) GetUserFinalVotes(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	votes, err := h.store.ForUser(identity.UserID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, votes)
}

// GetResults returns the ranked tally for an award.
func (h *VoteHandler) GetResults(c *gin.Context) {
	awardID := c.Query("award_id")
	if awardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "award_id is required"})
		return
	}

	rows, err := h.results.Compute(awardID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
