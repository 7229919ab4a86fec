package services

import (
	"fmt"

	"github.com/EmilianoRojas/brigade-awards/internal/db"
	"github.com/EmilianoRojas/brigade-awards/internal/models"
	"github.com/EmilianoRojas/brigade-awards/internal/utils"

	"gorm.io/gorm"
)

// PhaseService owns award lifecycle transitions and activation. All
// operations here are admin-only; handlers enforce the role before calling.
type PhaseService struct{}

func NewPhaseService() *PhaseService {
	return &PhaseService{}
}

// EndNomination moves one award NOMINATION -> FINAL_VOTING. The phase
// predicate guards the update: an award already past NOMINATION is returned
// unchanged.
func (s *PhaseService) EndNomination(awardID string) (*models.Award, error) {
	return s.step(awardID, models.PhaseNomination, models.PhaseFinalVoting)
}

// EndVoting moves one award FINAL_VOTING -> RESULTS.
func (s *PhaseService) EndVoting(awardID string) (*models.Award, error) {
	return s.step(awardID, models.PhaseFinalVoting, models.PhaseResults)
}

// Close moves one award RESULTS -> CLOSED, the terminal state.
func (s *PhaseService) Close(awardID string) (*models.Award, error) {
	return s.step(awardID, models.PhaseResults, models.PhaseClosed)
}

func (s *PhaseService) step(awardID string, from, to models.Phase) (*models.Award, error) {
	res := db.DB.Model(&models.Award{}).
		Where("id = ? AND phase = ?", awardID, from).
		Update("phase", to)
	if res.Error != nil {
		return nil, fmt.Errorf("updating award phase: %w", res.Error)
	}

	var award models.Award
	if err := db.DB.First(&award, "id = ?", awardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("award %s: %w", awardID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading award: %w", err)
	}
	utils.GetCache().Delete(resultCacheKey(awardID))
	return &award, nil
}

// BulkAdvance moves every award currently in from to to. This is the admin
// escape hatch: it bypasses the one-step constraint on purpose. Matching
// zero awards is a success with an empty list.
func (s *PhaseService) BulkAdvance(from, to models.Phase) ([]models.Award, error) {
	if !models.ValidPhase(from) || !models.ValidPhase(to) {
		return nil, validationf("unknown phase")
	}

	// Pin the cohort before updating so awards that were already in the
	// target phase are not reported as updated.
	updated := []models.Award{}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Award{}).Where("phase = ?", from).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Model(&models.Award{}).Where("id IN ?", ids).
			Update("phase", to).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Order("sort_order, created_at").
			Find(&updated).Error
	})
	if err != nil {
		return nil, fmt.Errorf("updating award phases: %w", err)
	}
	utils.GetCache().Purge()
	return updated, nil
}

// ToggleActive flips whether the award appears to non-admins at all.
func (s *PhaseService) ToggleActive(awardID string, active bool) (*models.Award, error) {
	res := db.DB.Model(&models.Award{}).Where("id = ?", awardID).Update("active", active)
	if res.Error != nil {
		return nil, fmt.Errorf("updating award: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("award %s: %w", awardID, ErrNotFound)
	}

	var award models.Award
	if err := db.DB.First(&award, "id = ?", awardID).Error; err != nil {
		return nil, fmt.Errorf("loading award: %w", err)
	}
	return &award, nil
}

// SetAllActive activates or deactivates every award.
func (s *PhaseService) SetAllActive(active bool) (int64, error) {
	res := db.DB.Model(&models.Award{}).Where("active <> ?", active).Update("active", active)
	if res.Error != nil {
		return 0, fmt.Errorf("updating awards: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Reset clears every nomination and final vote and returns all awards to
// NOMINATION. The cache is purged so stale result lists cannot outlive the
// reset.
func (s *PhaseService) Reset() error {
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Nomination{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.FinalVote{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Award{}).Where("1 = 1").
			Update("phase", models.PhaseNomination).Error
	})
	if err != nil {
		return fmt.Errorf("resetting awards: %w", err)
	}
	utils.GetCache().Purge()
	return nil
}
