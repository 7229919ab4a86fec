package services

import (
	"fmt"

	"github.com/EmilianoRojas/brigade-awards/internal/db"
	"github.com/EmilianoRojas/brigade-awards/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteStore owns final-vote state: at most one row per (award, voter),
// maintained by an upsert so a resubmission overwrites rather than
// duplicates.
type VoteStore struct{}

func NewVoteStore() *VoteStore {
	return &VoteStore{}
}

// Submit records the caller's final vote. nomineeID and groupID are
// mutually exclusive: duo awards vote for a nomination group.
func (s *VoteStore) Submit(awardID string, caller models.Identity, nomineeID, groupID string) error {
	var award models.Award
	if err := db.DB.First(&award, "id = ?", awardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("award %s: %w", awardID, ErrNotFound)
		}
		return fmt.Errorf("loading award: %w", err)
	}

	if award.Phase != models.PhaseFinalVoting {
		return fmt.Errorf("final voting is not open for this award: %w", ErrForbidden)
	}
	if !IsEligible(award.VotingCriteria, caller) {
		return fmt.Errorf("you cannot vote in this award: %w", ErrForbidden)
	}

	if (nomineeID == "") == (groupID == "") {
		return validationf("select either a nominee or a pair")
	}
	if award.IsDuo() && groupID == "" {
		return validationf("this award is voted on by pair")
	}
	if !award.IsDuo() && nomineeID == "" {
		return validationf("this award is voted on by individual nominee")
	}

	vote := models.FinalVote{
		AwardID: awardID,
		VoterID: caller.UserID,
	}
	if nomineeID != "" {
		vote.NomineeID = &nomineeID
	} else {
		vote.NominationGroupID = &groupID
	}

	// Last writer wins on the (award_id, voter_id) unique index.
	err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "award_id"}, {Name: "voter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"nominee_id", "nomination_group_id", "updated_at"}),
	}).Create(&vote).Error
	if err != nil {
		return fmt.Errorf("saving final vote: %w", err)
	}
	return nil
}

// ForUser returns the caller's final-vote records.
func (s *VoteStore) ForUser(userID string) ([]models.FinalVote, error) {
	var votes []models.FinalVote
	if err := db.DB.Where("voter_id = ?", userID).Order("award_id").Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("loading final votes: %w", err)
	}
	return votes, nil
}
