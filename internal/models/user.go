package models

import (
	"time"
)

// AdminGroup is the group tag that grants administrative access.
const AdminGroup = "admin"

type User struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Password    string    `gorm:"not null" json:"-"` // bcrypt hash
	FullName    string    `gorm:"not null" json:"full_name"`
	AvatarURL   string    `json:"avatar_url"`
	UserGroup   string    `gorm:"size:50;index" json:"user_group"`
	Gender      string    `gorm:"size:20" json:"gender,omitempty"`
	PartnerID   *string   `gorm:"type:uuid" json:"partner_id"`
	IsPartnered bool      `gorm:"default:false" json:"is_partnered"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.UserGroup == AdminGroup
}

// Identity is the verified caller extracted from a bearer token. Core
// operations take it as an explicit parameter, never from ambient state.
type Identity struct {
	UserID      string
	UserGroup   string
	Gender      string
	PartnerID   *string
	IsPartnered bool
}

func (id Identity) IsAdmin() bool {
	return id.UserGroup == AdminGroup
}
