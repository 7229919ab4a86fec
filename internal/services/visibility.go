package services

import (
	"fmt"

	"github.com/EmilianoRojas/brigade-awards/internal/db"
	"github.com/EmilianoRojas/brigade-awards/internal/models"
	"github.com/EmilianoRojas/brigade-awards/internal/utils"
)

// AwardView is an award enriched with the caller's progress and the rendered
// description.
type AwardView struct {
	models.Award
	DescriptionHTML string `json:"description_html"`
	HasNominated    bool   `json:"has_nominated"`
	HasVoted        bool   `json:"has_voted"`
}

// AwardService decides which awards a caller sees and serves the unfiltered
// admin listing.
type AwardService struct{}

func NewAwardService() *AwardService {
	return &AwardService{}
}

// Visible lists awards for a caller. Admins see everything. Non-admins see
// only active awards still in NOMINATION or FINAL_VOTING for which they can
// nominate or vote.
func (s *AwardService) Visible(caller models.Identity) ([]AwardView, error) {
	var awards []models.Award
	if err := db.DB.Order("created_at, id").Find(&awards).Error; err != nil {
		return nil, fmt.Errorf("loading awards: %w", err)
	}

	filtered := awards
	if !caller.IsAdmin() {
		filtered = filtered[:0]
		for _, a := range awards {
			if !a.Active {
				continue
			}
			if a.Phase == models.PhaseResults || a.Phase == models.PhaseClosed {
				continue
			}
			// Visible when the caller can either nominate or vote.
			if !IsEligible(a.NominationCriteria, caller) && !IsEligible(a.VotingCriteria, caller) {
				continue
			}
			filtered = append(filtered, a)
		}
	}

	return s.enrich(filtered, caller.UserID)
}

// All is the admin view: every award regardless of phase or active flag,
// in admin listing order.
func (s *AwardService) All() ([]models.Award, error) {
	var awards []models.Award
	if err := db.DB.Order("sort_order, created_at").Find(&awards).Error; err != nil {
		return nil, fmt.Errorf("loading awards: %w", err)
	}
	return awards, nil
}

// Get loads a single award.
func (s *AwardService) Get(awardID string) (*models.Award, error) {
	var award models.Award
	if err := db.DB.First(&award, "id = ?", awardID).Error; err != nil {
		return nil, fmt.Errorf("award %s: %w", awardID, ErrNotFound)
	}
	return &award, nil
}

// enrich attaches has_nominated / has_voted for the caller and the rendered
// description.
func (s *AwardService) enrich(awards []models.Award, userID string) ([]AwardView, error) {
	var nominated []string
	if err := db.DB.Model(&models.Nomination{}).Where("nominator_id = ?", userID).
		Distinct("award_id").Pluck("award_id", &nominated).Error; err != nil {
		return nil, fmt.Errorf("loading nomination state: %w", err)
	}
	var voted []string
	if err := db.DB.Model(&models.FinalVote{}).Where("voter_id = ?", userID).
		Distinct("award_id").Pluck("award_id", &voted).Error; err != nil {
		return nil, fmt.Errorf("loading vote state: %w", err)
	}

	nominatedSet := make(map[string]bool, len(nominated))
	for _, id := range nominated {
		nominatedSet[id] = true
	}
	votedSet := make(map[string]bool, len(voted))
	for _, id := range voted {
		votedSet[id] = true
	}

	out := make([]AwardView, 0, len(awards))
	for _, a := range awards {
		out = append(out, AwardView{
			Award:           a,
			DescriptionHTML: utils.RenderMarkdown(a.Description),
			HasNominated:    nominatedSet[a.ID],
			HasVoted:        votedSet[a.ID],
		})
	}
	return out, nil
}
