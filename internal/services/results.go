package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/EmilianoRojas/brigade-awards/internal/db"
	"github.com/EmilianoRojas/brigade-awards/internal/models"
	"github.com/EmilianoRojas/brigade-awards/internal/utils"

	"gorm.io/gorm"
)

// AwardResultRow is one ranked entry of an award tally. Derived, never
// persisted.
type AwardResultRow struct {
	NomineeID string `json:"nominee_id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	VoteCount int    `json:"vote_count"`
}

// NominationSummary is the admin tally view: per-nominee nomination count
// plus who nominated them.
type NominationSummary struct {
	NomineeID       string `json:"id"`
	FullName        string `json:"full_name"`
	AvatarURL       string `json:"avatar_url"`
	NominationCount int    `json:"nomination_count"`
	Nominators      string `json:"nominators"`
}

// ResultService aggregates nomination and final-vote counts. Pure reads;
// closed awards are served from the cache until a reset purges it.
type ResultService struct{}

func NewResultService() *ResultService {
	return &ResultService{}
}

const resultCacheTTL = 10 * time.Minute

func resultCacheKey(awardID string) string {
	return "results:" + awardID
}

// Compute tallies an award: nomination counts while the award is still in
// NOMINATION, final-vote counts afterwards. Duo group votes count toward
// both members. Sorted by vote count descending, ties by nominee id
// ascending.
func (s *ResultService) Compute(awardID string) ([]AwardResultRow, error) {
	var award models.Award
	if err := db.DB.First(&award, "id = ?", awardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("award %s: %w", awardID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading award: %w", err)
	}

	frozen := award.Phase == models.PhaseResults || award.Phase == models.PhaseClosed
	if frozen {
		if cached, ok := utils.GetCache().Get(resultCacheKey(awardID)).([]AwardResultRow); ok {
			return cached, nil
		}
	}

	var counts map[string]int
	var err error
	if award.Phase == models.PhaseNomination {
		counts, err = s.nominationCounts(awardID)
	} else {
		counts, err = s.finalVoteCounts(awardID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.rank(counts)
	if err != nil {
		return nil, err
	}
	if frozen {
		utils.GetCache().Set(resultCacheKey(awardID), rows, resultCacheTTL)
	}
	return rows, nil
}

func (s *ResultService) nominationCounts(awardID string) (map[string]int, error) {
	var rows []models.Nomination
	if err := db.DB.Where("award_id = ?", awardID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading nominations: %w", err)
	}
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.NomineeID]++
	}
	return counts, nil
}

func (s *ResultService) finalVoteCounts(awardID string) (map[string]int, error) {
	var votes []models.FinalVote
	if err := db.DB.Where("award_id = ?", awardID).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("loading final votes: %w", err)
	}

	counts := make(map[string]int)
	for _, v := range votes {
		switch {
		case v.NomineeID != nil:
			counts[*v.NomineeID]++
		case v.NominationGroupID != nil:
			// Expand the pair: a group vote counts for both members.
			var members []models.Nomination
			if err := db.DB.Where("nomination_group_id = ?", *v.NominationGroupID).
				Find(&members).Error; err != nil {
				return nil, fmt.Errorf("expanding nomination group: %w", err)
			}
			for _, m := range members {
				counts[m.NomineeID]++
			}
		}
	}
	return counts, nil
}

func (s *ResultService) rank(counts map[string]int) ([]AwardResultRow, error) {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	users, err := usersByID(ids)
	if err != nil {
		return nil, err
	}

	rows := make([]AwardResultRow, 0, len(counts))
	for id, n := range counts {
		row := AwardResultRow{NomineeID: id, VoteCount: n, AvatarURL: AvatarURL(id, "")}
		if u, ok := users[id]; ok {
			row.FullName = u.FullName
			row.AvatarURL = AvatarURL(u.ID, u.AvatarURL)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].VoteCount != rows[j].VoteCount {
			return rows[i].VoteCount > rows[j].VoteCount
		}
		return rows[i].NomineeID < rows[j].NomineeID
	})
	return rows, nil
}

// NominationTally is the admin view during the nomination phase: counts per
// nominee with a deduplicated nominator name list, sorted by count.
func (s *ResultService) NominationTally(awardID string) ([]NominationSummary, error) {
	var award models.Award
	if err := db.DB.First(&award, "id = ?", awardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("award %s: %w", awardID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading award: %w", err)
	}

	var rows []models.Nomination
	if err := db.DB.Where("award_id = ?", awardID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading nominations: %w", err)
	}

	ids := make([]string, 0, len(rows)*2)
	for _, r := range rows {
		ids = append(ids, r.NomineeID, r.NominatorID)
	}
	users, err := usersByID(ids)
	if err != nil {
		return nil, err
	}

	type entry struct {
		summary    NominationSummary
		nominators map[string]bool
		names      []string
	}
	byNominee := make(map[string]*entry)
	order := make([]string, 0)
	for _, r := range rows {
		e, ok := byNominee[r.NomineeID]
		if !ok {
			e = &entry{nominators: make(map[string]bool)}
			e.summary.NomineeID = r.NomineeID
			e.summary.AvatarURL = AvatarURL(r.NomineeID, "")
			if u, found := users[r.NomineeID]; found {
				e.summary.FullName = u.FullName
				e.summary.AvatarURL = AvatarURL(u.ID, u.AvatarURL)
			}
			byNominee[r.NomineeID] = e
			order = append(order, r.NomineeID)
		}
		e.summary.NominationCount++
		if u, found := users[r.NominatorID]; found && !e.nominators[u.FullName] {
			e.nominators[u.FullName] = true
			e.names = append(e.names, u.FullName)
		}
	}

	out := make([]NominationSummary, 0, len(order))
	for _, id := range order {
		e := byNominee[id]
		e.summary.Nominators = strings.Join(e.names, ", ")
		out = append(out, e.summary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NominationCount > out[j].NominationCount
	})
	return out, nil
}

func usersByID(ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// AvatarURL falls back to a deterministic placeholder keyed by user id.
func AvatarURL(userID, stored string) string {
	if stored != "" {
		return stored
	}
	return fmt.Sprintf("https://picsum.photos/seed/%s/200", userID)
}
