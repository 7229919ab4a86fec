package services

import (
	"fmt"
	"sort"

	"github.com/EmilianoRojas/brigade-awards/internal/db"
	"github.com/EmilianoRojas/brigade-awards/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Selection is a submitted nomination set: flat ids for single awards,
// pairs for duo awards. Exactly one of the two is populated.
type Selection struct {
	NomineeIDs []string
	Pairs      [][2]string
}

// NominationStore owns the persisted nomination state. Submissions replace
// the caller's previous set atomically; readers never observe a partially
// written set.
type NominationStore struct{}

func NewNominationStore() *NominationStore {
	return &NominationStore{}
}

// Submit validates and persists a nomination set for (award, caller).
// Resubmitting an identical set is a confirmed no-op.
func (s *NominationStore) Submit(awardID string, caller models.Identity, sel Selection) error {
	var award models.Award
	if err := db.DB.First(&award, "id = ?", awardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("award %s: %w", awardID, ErrNotFound)
		}
		return fmt.Errorf("loading award: %w", err)
	}

	if award.Phase != models.PhaseNomination {
		return fmt.Errorf("nominations are closed for this award: %w", ErrForbidden)
	}
	if !IsEligible(award.NominationCriteria, caller) {
		return fmt.Errorf("you cannot nominate in this award: %w", ErrForbidden)
	}

	if award.IsDuo() {
		return s.submitDuo(&award, caller, sel)
	}
	return s.submitSingle(&award, caller, sel)
}

func (s *NominationStore) submitSingle(award *models.Award, caller models.Identity, sel Selection) error {
	if len(sel.Pairs) > 0 {
		return validationf("this award takes individual nominees, not pairs")
	}
	ids := sel.NomineeIDs
	if len(ids) == 0 {
		return validationf("you must select at least 1 nominee")
	}
	if len(ids) > award.MaxNominations {
		return validationf("you can select at most %d nominees", award.MaxNominations)
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return validationf("nominee id cannot be empty")
		}
		if seen[id] {
			return validationf("you selected the same person twice")
		}
		seen[id] = true
		if id == caller.UserID {
			return validationf("you cannot nominate yourself")
		}
		if caller.PartnerID != nil && id == *caller.PartnerID {
			return validationf("you cannot nominate your partner")
		}
	}

	existing, err := s.committed(award.ID, caller.UserID)
	if err != nil {
		return err
	}
	if sameFlatSet(existing, ids) {
		return nil
	}

	rows := make([]models.Nomination, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.Nomination{
			AwardID:     award.ID,
			NominatorID: caller.UserID,
			NomineeID:   id,
		})
	}
	return s.replace(award.ID, caller.UserID, rows)
}

func (s *NominationStore) submitDuo(award *models.Award, caller models.Identity, sel Selection) error {
	if len(sel.NomineeIDs) > 0 {
		return validationf("for this award, nominees must be in pairs")
	}
	pairs := sel.Pairs
	if len(pairs) == 0 {
		return validationf("you must select at least 1 pair")
	}
	if len(pairs) > award.MaxNominations {
		return validationf("you can select at most %d pairs", award.MaxNominations)
	}

	groups := make([]models.NominationGroup, 0, len(pairs))
	pairKeys := make(map[string]bool, len(pairs))
	memberUse := make(map[string]bool)
	for _, p := range pairs {
		g, err := models.NewNominationGroup("", p)
		if err != nil {
			return validationf("each pair must contain two different people")
		}
		if pairKeys[g.Key()] {
			return validationf("this pair has already been selected")
		}
		pairKeys[g.Key()] = true
		for _, m := range g.Members {
			if memberUse[m] {
				return validationf("a person can only appear in one pair")
			}
			memberUse[m] = true
		}
		groups = append(groups, g)
	}

	committed, err := s.committedGroups(award.ID, caller.UserID)
	if err != nil {
		return err
	}
	if samePairSet(committed, groups) {
		return nil
	}

	rows := make([]models.Nomination, 0, 2*len(groups))
	for _, g := range groups {
		groupID := uuid.NewString()
		for _, m := range g.Members {
			gid := groupID
			rows = append(rows, models.Nomination{
				AwardID:           award.ID,
				NominatorID:       caller.UserID,
				NomineeID:         m,
				NominationGroupID: &gid,
			})
		}
	}
	return s.replace(award.ID, caller.UserID, rows)
}

// replace swaps the caller's committed rows in a single transaction so
// concurrent readers never see the empty window between delete and insert.
func (s *NominationStore) replace(awardID, nominatorID string, rows []models.Nomination) error {
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("award_id = ? AND nominator_id = ?", awardID, nominatorID).
			Delete(&models.Nomination{}).Error; err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("replacing nominations: %w", err)
	}
	return nil
}

func (s *NominationStore) committed(awardID, nominatorID string) ([]models.Nomination, error) {
	var rows []models.Nomination
	if err := db.DB.Where("award_id = ? AND nominator_id = ?", awardID, nominatorID).
		Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading nominations: %w", err)
	}
	return rows, nil
}

// committedGroups reassembles the caller's committed duo rows into pairs.
func (s *NominationStore) committedGroups(awardID, nominatorID string) ([]models.NominationGroup, error) {
	rows, err := s.committed(awardID, nominatorID)
	if err != nil {
		return nil, err
	}
	return GroupRows(rows), nil
}

// GroupRows folds flat duo rows back into NominationGroup values. Rows
// without a group id are ignored.
func GroupRows(rows []models.Nomination) []models.NominationGroup {
	byGroup := make(map[string][]string)
	order := make([]string, 0)
	for _, r := range rows {
		if r.NominationGroupID == nil {
			continue
		}
		gid := *r.NominationGroupID
		if _, ok := byGroup[gid]; !ok {
			order = append(order, gid)
		}
		byGroup[gid] = append(byGroup[gid], r.NomineeID)
	}

	groups := make([]models.NominationGroup, 0, len(order))
	for _, gid := range order {
		members := byGroup[gid]
		if len(members) != 2 {
			continue
		}
		g, err := models.NewNominationGroup(gid, [2]string{members[0], members[1]})
		if err != nil {
			continue
		}
		groups = append(groups, g)
	}
	return groups
}

func sameFlatSet(existing []models.Nomination, submitted []string) bool {
	if len(existing) != len(submitted) {
		return false
	}
	have := make([]string, 0, len(existing))
	for _, r := range existing {
		if r.NominationGroupID != nil {
			return false
		}
		have = append(have, r.NomineeID)
	}
	want := append([]string(nil), submitted...)
	sort.Strings(have)
	sort.Strings(want)
	for i := range have {
		if have[i] != want[i] {
			return false
		}
	}
	return true
}

// samePairSet compares pair-sets ignoring pair order, member order and pair
// identity.
func samePairSet(existing, submitted []models.NominationGroup) bool {
	if len(existing) != len(submitted) {
		return false
	}
	keys := make(map[string]bool, len(existing))
	for _, g := range existing {
		keys[g.Key()] = true
	}
	for _, g := range submitted {
		if !keys[g.Key()] {
			return false
		}
	}
	return true
}

// UserAwardNominations is the caller's committed state for one award.
type UserAwardNominations struct {
	AwardID    string                   `json:"award_id"`
	NomineeIDs []string                 `json:"nominations"`
	Pairs      []models.NominationGroup `json:"pairs,omitempty"`
	FinalVote  *string                  `json:"final_vote"`
}

// ForUser returns the caller's nominations grouped per award, with the
// caller's final vote attached where one exists.
func (s *NominationStore) ForUser(userID string) ([]UserAwardNominations, error) {
	var rows []models.Nomination
	if err := db.DB.Where("nominator_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading nominations: %w", err)
	}
	var votes []models.FinalVote
	if err := db.DB.Where("voter_id = ?", userID).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("loading final votes: %w", err)
	}

	voteByAward := make(map[string]*string, len(votes))
	for _, v := range votes {
		if v.NomineeID != nil {
			voteByAward[v.AwardID] = v.NomineeID
		} else {
			voteByAward[v.AwardID] = v.NominationGroupID
		}
	}

	byAward := make(map[string][]models.Nomination)
	order := make([]string, 0)
	for _, r := range rows {
		if _, ok := byAward[r.AwardID]; !ok {
			order = append(order, r.AwardID)
		}
		byAward[r.AwardID] = append(byAward[r.AwardID], r)
	}

	out := make([]UserAwardNominations, 0, len(order))
	for _, awardID := range order {
		entry := UserAwardNominations{AwardID: awardID, FinalVote: voteByAward[awardID]}
		for _, r := range byAward[awardID] {
			if r.NominationGroupID == nil {
				entry.NomineeIDs = append(entry.NomineeIDs, r.NomineeID)
			}
		}
		entry.Pairs = GroupRows(byAward[awardID])
		out = append(out, entry)
	}
	return out, nil
}
