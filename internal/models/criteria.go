package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Criteria is an admin-editable eligibility expression stored as jsonb.
// A nil *Criteria means "everyone is eligible".
//
// When AnyOf is set it is the sole top-level rule: the sibling simple fields
// are ignored and the expression is the OR of its sub-criteria. Sub-criteria
// never nest another AnyOf.
type Criteria struct {
	Groups      []string   `json:"groups,omitempty"`
	Genders     []string   `json:"genders,omitempty"`
	IsPartnered *bool      `json:"is_partnered,omitempty"`
	NotGroups   []string   `json:"notGroups,omitempty"`
	AnyOf       []Criteria `json:"anyOf,omitempty"`
	// IsDuo marks nomination criteria whose selections are submitted as
	// pairs. It does not participate in eligibility evaluation.
	IsDuo bool `json:"is_duo,omitempty"`
}

func (c *Criteria) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *Criteria) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("criteria: cannot scan %T", value)
	}
}

// Validate rejects shapes the evaluator cannot handle.
func (c *Criteria) Validate() error {
	if c == nil {
		return nil
	}
	for i := range c.AnyOf {
		if len(c.AnyOf[i].AnyOf) > 0 {
			return errors.New("criteria: anyOf sub-criteria cannot nest anyOf")
		}
	}
	return nil
}
