// Package testutil wires an in-memory database so store and handler tests
// run against the real gorm schema without a postgres instance.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/EmilianoRojas/brigade-awards/internal/db"
	"github.com/EmilianoRojas/brigade-awards/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory database, migrates the schema and
// installs it as the global connection for the duration of the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DB keeps gorm's pooled connections on the same
	// in-memory store; the name isolates tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	prev := db.DB
	db.DB = gdb
	t.Cleanup(func() {
		db.DB = prev
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// CreateUser inserts a directory user and returns it.
func CreateUser(t *testing.T, fullName, group string, opts ...func(*models.User)) *models.User {
	t.Helper()

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  strings.ToLower(strings.ReplaceAll(fullName, " ", ".")),
		Password:  "x",
		FullName:  fullName,
		UserGroup: group,
	}
	for _, opt := range opts {
		opt(user)
	}
	if err := db.DB.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", fullName, err)
	}
	return user
}

// WithGender sets the user's gender.
func WithGender(gender string) func(*models.User) {
	return func(u *models.User) { u.Gender = gender }
}

// WithPartner marks the user partnered with the given user id.
func WithPartner(partnerID string) func(*models.User) {
	return func(u *models.User) {
		u.PartnerID = &partnerID
		u.IsPartnered = true
	}
}

// CreateAward inserts an award and returns it.
func CreateAward(t *testing.T, name string, opts ...func(*models.Award)) *models.Award {
	t.Helper()

	award := &models.Award{
		ID:             uuid.NewString(),
		Name:           name,
		Phase:          models.PhaseNomination,
		MaxNominations: 1,
		FinalistCount:  models.DefaultFinalistCount,
		Active:         true,
	}
	for _, opt := range opts {
		opt(award)
	}
	// gorm substitutes the column's default:true for a zero-valued bool on
	// Create — in the INSERT and written back into the struct — so a
	// WithInactive fixture must flip the flag in a second write.
	inactive := !award.Active
	if err := db.DB.Create(award).Error; err != nil {
		t.Fatalf("Failed to create award %s: %v", name, err)
	}
	if inactive {
		award.Active = false
		if err := db.DB.Model(&models.Award{}).Where("id = ?", award.ID).
			UpdateColumn("active", false).Error; err != nil {
			t.Fatalf("Failed to deactivate award %s: %v", name, err)
		}
	}
	return award
}

// WithPhase sets the award's phase.
func WithPhase(phase models.Phase) func(*models.Award) {
	return func(a *models.Award) { a.Phase = phase }
}

// WithMaxNominations sets how many nominees (or pairs) a user may submit.
func WithMaxNominations(n int) func(*models.Award) {
	return func(a *models.Award) { a.MaxNominations = n }
}

// WithFinalistCount overrides the finalist cut.
func WithFinalistCount(n int) func(*models.Award) {
	return func(a *models.Award) { a.FinalistCount = n }
}

// WithNominationCriteria sets the nomination eligibility expression.
func WithNominationCriteria(c *models.Criteria) func(*models.Award) {
	return func(a *models.Award) { a.NominationCriteria = c }
}

// WithVotingCriteria sets the voting eligibility expression.
func WithVotingCriteria(c *models.Criteria) func(*models.Award) {
	return func(a *models.Award) { a.VotingCriteria = c }
}

// WithInactive hides the award from non-admins.
func WithInactive() func(*models.Award) {
	return func(a *models.Award) { a.Active = false }
}

// Identity projects a user into the caller identity used by core operations.
func Identity(u *models.User) models.Identity {
	return models.Identity{
		UserID:      u.ID,
		UserGroup:   u.UserGroup,
		Gender:      u.Gender,
		PartnerID:   u.PartnerID,
		IsPartnered: u.IsPartnered,
	}
}
