package models

import (
	"time"
)

// FinalVote is a user's single final-phase vote for an award. NomineeID and
// NominationGroupID are mutually exclusive: duo awards vote for a pair.
// The unique index on (award_id, voter_id) backs the upsert so two racing
// submissions collapse to one last-writer-wins row.
type FinalVote struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AwardID           string    `gorm:"type:uuid;not null;uniqueIndex:idx_final_vote_award_voter" json:"award_id"`
	VoterID           string    `gorm:"type:uuid;not null;uniqueIndex:idx_final_vote_award_voter" json:"voter_id"`
	NomineeID         *string   `gorm:"type:uuid;index" json:"nominee_id"`
	NominationGroupID *string   `gorm:"type:uuid;index" json:"nomination_group_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
