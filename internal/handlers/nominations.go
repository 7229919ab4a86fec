package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/EmilianoRojas/brigade-awards/internal/middleware"
	"github.com/EmilianoRojas/brigade-awards/internal/services"

	"github.com/gin-gonic/gin"
)

type NominationHandler struct {
	store   *services.NominationStore
	results *services.ResultService
}

func NewNominationHandler() *NominationHandler {
	return &NominationHandler{
		store:   services.NewNominationStore(),
		results: services.NewResultService(),
	}
}

type submitNominationsRequest struct {
	AwardID    string          `json:"award_id"`
	NomineeIDs json.RawMessage `json:"nominee_ids"`
}

// parseSelection accepts either a flat id list or a list of pairs, matching
// the two award styles.
func parseSelection(raw json.RawMessage) (services.Selection, bool) {
	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return services.Selection{NomineeIDs: flat}, true
	}

	var nested [][]string
	if err := json.Unmarshal(raw, &nested); err == nil {
		pairs := make([][2]string, 0, len(nested))
		for _, p := range nested {
			if len(p) != 2 {
				return services.Selection{}, false
			}
			pairs = append(pairs, [2]string{p[0], p[1]})
		}
		return services.Selection{Pairs: pairs}, true
	}
	return services.Selection{}, false
}

// SubmitNominations replaces the caller's nomination set for an award.
func (h *NominationHandler) SubmitNominations(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req submitNominationsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AwardID == "" || len(req.NomineeIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "award_id and nominee_ids are required"})
		return
	}

	sel, ok := parseSelection(req.NomineeIDs)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nominee_ids must be a list of ids or a list of pairs"})
		return
	}

	if err := h.store.Submit(req.AwardID, identity, sel); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUserNominations returns the caller's committed nominations per award.
func (h *NominationHandler) GetUserNominations(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	nominations, err := h.store.ForUser(identity.UserID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, nominations)
}

// GetAwardNominations is the admin tally: nominees with counts and who
// nominated them.
func (h *NominationHandler) GetAwardNominations(c *gin.Context) {
	awardID := c.Query("award_id")
	if awardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "award_id is required"})
		return
	}

	tally, err := h.results.NominationTally(awardID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}
