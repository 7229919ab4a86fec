package models

import (
	"time"
)

// Phase is an award's lifecycle state. Flow is strictly forward:
// NOMINATION -> FINAL_VOTING -> RESULTS -> CLOSED.
type Phase string

const (
	PhaseNomination  Phase = "NOMINATION"
	PhaseFinalVoting Phase = "FINAL_VOTING"
	PhaseResults     Phase = "RESULTS"
	PhaseClosed      Phase = "CLOSED"
)

// ValidPhase reports whether p is one of the four lifecycle states.
func ValidPhase(p Phase) bool {
	switch p {
	case PhaseNomination, PhaseFinalVoting, PhaseResults, PhaseClosed:
		return true
	}
	return false
}

// Next returns the phase that follows p, or p itself for the terminal state.
func (p Phase) Next() Phase {
	switch p {
	case PhaseNomination:
		return PhaseFinalVoting
	case PhaseFinalVoting:
		return PhaseResults
	case PhaseResults:
		return PhaseClosed
	}
	return p
}

// DefaultFinalistCount is how many top nominees advance to final voting
// unless the award overrides it.
const DefaultFinalistCount = 4

type Award struct {
	ID                 string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string    `gorm:"not null" json:"name"`
	Description        string    `json:"description"`
	Phase              Phase     `gorm:"size:20;default:'NOMINATION';not null" json:"phase"`
	MaxNominations     int       `gorm:"default:1;not null" json:"max_nominations"`
	FinalistCount      int       `gorm:"default:4;not null" json:"finalist_count"`
	NominationCriteria *Criteria `gorm:"type:jsonb" json:"nomination_criteria"`
	VotingCriteria     *Criteria `gorm:"type:jsonb" json:"voting_criteria"`
	Active             bool      `gorm:"default:true" json:"active"`
	SortOrder          int       `gorm:"default:0" json:"sort_order"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsDuo reports whether nominations for this award are submitted as pairs.
func (a *Award) IsDuo() bool {
	return a.NominationCriteria != nil && a.NominationCriteria.IsDuo
}

// Finalists returns the per-award finalist cut size.
func (a *Award) Finalists() int {
	if a.FinalistCount > 0 {
		return a.FinalistCount
	}
	return DefaultFinalistCount
}
