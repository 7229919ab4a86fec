package services

import (
	"fmt"

	"github.com/EmilianoRojas/brigade-awards/internal/db"
	"github.com/EmilianoRojas/brigade-awards/internal/models"

	"gorm.io/gorm"
)

// CandidateService resolves who can be nominated or voted for, per award and
// phase.
type CandidateService struct {
	results *ResultService
}

func NewCandidateService() *CandidateService {
	return &CandidateService{results: NewResultService()}
}

// List returns the candidate set for an award:
//
//   - NOMINATION: every directory user passing the nomination criteria, in
//     directory order.
//   - FINAL_VOTING: the finalists, i.e. the nomination tally truncated to
//     the award's finalist count.
//   - RESULTS / CLOSED: empty; no further candidate actions are permitted.
func (s *CandidateService) List(awardID string) ([]models.User, error) {
	var award models.Award
	if err := db.DB.First(&award, "id = ?", awardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("award %s: %w", awardID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading award: %w", err)
	}

	switch award.Phase {
	case models.PhaseNomination:
		return s.eligibleUsers(award.NominationCriteria)
	case models.PhaseFinalVoting:
		return s.finalists(&award)
	default:
		return []models.User{}, nil
	}
}

func (s *CandidateService) eligibleUsers(criteria *models.Criteria) ([]models.User, error) {
	var users []models.User
	if err := db.DB.Order("created_at, id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if !IsEligible(criteria, IdentityOf(&u)) {
			continue
		}
		u.AvatarURL = AvatarURL(u.ID, u.AvatarURL)
		out = append(out, u)
	}
	return out, nil
}

// finalists ranks the nomination tally and cuts it to the award's finalist
// count. The cut size is per-award data, not code.
func (s *CandidateService) finalists(award *models.Award) ([]models.User, error) {
	counts, err := s.results.nominationCounts(award.ID)
	if err != nil {
		return nil, err
	}
	ranked, err := s.results.rank(counts)
	if err != nil {
		return nil, err
	}
	if len(ranked) > award.Finalists() {
		ranked = ranked[:award.Finalists()]
	}

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.NomineeID)
	}
	users, err := usersByID(ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.User, 0, len(ranked))
	for _, r := range ranked {
		u, ok := users[r.NomineeID]
		if !ok {
			continue
		}
		u.AvatarURL = AvatarURL(u.ID, u.AvatarURL)
		out = append(out, u)
	}
	return out, nil
}
