package models

import (
	"fmt"
	"time"
)

// Nomination is one (nominator, nominee) row for an award. Duo awards store
// two rows sharing a NominationGroupID; single awards leave it null.
type Nomination struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AwardID           string    `gorm:"type:uuid;not null;index:idx_nomination_award_nominator" json:"award_id"`
	NominatorID       string    `gorm:"type:uuid;not null;index:idx_nomination_award_nominator" json:"nominator_id"`
	NomineeID         string    `gorm:"type:uuid;not null;index" json:"nominee_id"`
	NominationGroupID *string   `gorm:"type:uuid;index" json:"nomination_group_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// NominationGroup is a duo pair: exactly two distinct members. It is the
// only shape duo rows are constructed from or reassembled into; callers
// never infer pairs from flat rows themselves.
type NominationGroup struct {
	ID      string    `json:"id"`
	Members [2]string `json:"members"`
}

// NewNominationGroup validates the pair invariant.
func NewNominationGroup(id string, members [2]string) (NominationGroup, error) {
	if members[0] == "" || members[1] == "" {
		return NominationGroup{}, fmt.Errorf("nomination group needs two members")
	}
	if members[0] == members[1] {
		return NominationGroup{}, fmt.Errorf("nomination group members must be distinct")
	}
	return NominationGroup{ID: id, Members: members}, nil
}

// Key returns an order-insensitive identity for the pair, used to compare
// submitted pair-sets against committed ones.
func (g NominationGroup) Key() string {
	a, b := g.Members[0], g.Members[1]
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
