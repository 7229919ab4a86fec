package services

import (
	"github.com/EmilianoRojas/brigade-awards/internal/models"
)

// IsEligible evaluates an award's criteria against the caller's verified
// attributes. Nil criteria admit everyone.
//
// When anyOf is present it is the sole top-level disjunction: the user is
// eligible iff at least one sub-criteria passes, and sibling simple fields
// are ignored.
func IsEligible(criteria *models.Criteria, id models.Identity) bool {
	if criteria == nil {
		return true
	}

	if len(criteria.AnyOf) > 0 {
		for i := range criteria.AnyOf {
			if matchesSimple(&criteria.AnyOf[i], id) {
				return true
			}
		}
		return false
	}

	return matchesSimple(criteria, id)
}

// matchesSimple checks every present field; absent fields impose no
// constraint. A user lacking a named attribute fails that constraint, except
// notGroups where a missing group vacuously satisfies the exclusion.
func matchesSimple(c *models.Criteria, id models.Identity) bool {
	if c.Groups != nil {
		if id.UserGroup == "" || !contains(c.Groups, id.UserGroup) {
			return false
		}
	}
	if c.Genders != nil {
		if id.Gender == "" || !contains(c.Genders, id.Gender) {
			return false
		}
	}
	if c.IsPartnered != nil {
		if id.IsPartnered != *c.IsPartnered {
			return false
		}
	}
	if c.NotGroups != nil {
		if id.UserGroup != "" && contains(c.NotGroups, id.UserGroup) {
			return false
		}
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// IdentityOf projects a directory user into the attribute set the evaluator
// consumes, used when filtering candidates rather than the caller.
func IdentityOf(u *models.User) models.Identity {
	return models.Identity{
		UserID:      u.ID,
		UserGroup:   u.UserGroup,
		Gender:      u.Gender,
		PartnerID:   u.PartnerID,
		IsPartnered: u.IsPartnered,
	}
}
