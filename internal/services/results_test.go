package services

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/EmilianoRojas/brigade-awards/internal/db"
	"github.com/EmilianoRojas/brigade-awards/internal/models"
	"github.com/EmilianoRojas/brigade-awards/internal/testutil"
)

func TestComputeNominationTally(t *testing.T) {
	testutil.SetupTestDB(t)
	results := NewResultService()
	store := NewNominationStore()

	award := testutil.CreateAward(t, "Best Firefighter")
	popular := testutil.CreateUser(t, "Paula Popular", "staff")
	runnerUp := testutil.CreateUser(t, "Ruben Runnerup", "staff")
	for _, name := range []string{"Nom One", "Nom Two", "Nom Three"} {
		n := testutil.CreateUser(t, name, "staff")
		sel := Selection{NomineeIDs: []string{popular.ID}}
		if name == "Nom Three" {
			sel.NomineeIDs = []string{runnerUp.ID}
		}
		if err := store.Submit(award.ID, testutil.Identity(n), sel); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	rows, err := results.Compute(award.ID)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 ranked rows, got %d", len(rows))
	}
	if rows[0].NomineeID != popular.ID || rows[0].VoteCount != 2 {
		t.Errorf("expected %s on top with 2, got %+v", popular.ID, rows[0])
	}
	if rows[0].FullName != "Paula Popular" {
		t.Errorf("result row missing user details: %+v", rows[0])
	}
	if rows[1].VoteCount != 1 {
		t.Errorf("runner-up count wrong: %+v", rows[1])
	}
}

func TestComputeIsIdempotentAndTieBreaksByID(t *testing.T) {
	testutil.SetupTestDB(t)
	results := NewResultService()

	award := testutil.CreateAward(t, "Tied Award")
	a := testutil.CreateUser(t, "Tie A", "staff")
	b := testutil.CreateUser(t, "Tie B", "staff")
	n1 := testutil.CreateUser(t, "Nom One", "staff")
	n2 := testutil.CreateUser(t, "Nom Two", "staff")

	for _, row := range []models.Nomination{
		{AwardID: award.ID, NominatorID: n1.ID, NomineeID: a.ID},
		{AwardID: award.ID, NominatorID: n2.ID, NomineeID: b.ID},
	} {
		if err := db.DB.Create(&row).Error; err != nil {
			t.Fatalf("seeding nominations: %v", err)
		}
	}

	first, err := results.Compute(award.ID)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := results.Compute(award.ID)
	if err != nil {
		t.Fatalf("Compute again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Compute is not idempotent across calls without writes")
	}

	lo, hi := a.ID, b.ID
	if lo > hi {
		lo, hi = hi, lo
	}
	if first[0].NomineeID != lo || first[1].NomineeID != hi {
		t.Errorf("ties must order by nominee id ascending, got %s then %s",
			first[0].NomineeID, first[1].NomineeID)
	}
}

func TestComputeFinalVotesExpandDuoGroups(t *testing.T) {
	testutil.SetupTestDB(t)
	results := NewResultService()
	store := NewNominationStore()
	votes := NewVoteStore()

	award := testutil.CreateAward(t, "Dynamic Duo",
		testutil.WithNominationCriteria(&models.Criteria{IsDuo: true}))
	nominator := testutil.CreateUser(t, "Nilda Nominator", "staff")
	p := testutil.CreateUser(t, "Pablo Pair", "staff")
	q := testutil.CreateUser(t, "Quina Pair", "staff")

	if err := store.Submit(award.ID, testutil.Identity(nominator), Selection{
		Pairs: [][2]string{{p.ID, q.ID}},
	}); err != nil {
		t.Fatalf("duo submit: %v", err)
	}

	var row models.Nomination
	if err := db.DB.Where("award_id = ?", award.ID).First(&row).Error; err != nil {
		t.Fatalf("loading group id: %v", err)
	}
	groupID := *row.NominationGroupID

	db.DB.Model(&models.Award{}).Where("id = ?", award.ID).
		Update("phase", models.PhaseFinalVoting)
	if err := votes.Submit(award.ID, testutil.Identity(nominator), "", groupID); err != nil {
		t.Fatalf("group vote: %v", err)
	}

	rows, err := results.Compute(award.ID)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("group vote must expand to both members, got %d rows", len(rows))
	}
	for _, r := range rows {
		if r.VoteCount != 1 {
			t.Errorf("each member should count once, got %+v", r)
		}
	}
}

func TestComputeUnknownAward(t *testing.T) {
	testutil.SetupTestDB(t)
	results := NewResultService()

	if _, err := results.Compute("00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNominationTallyMergesNominators(t *testing.T) {
	testutil.SetupTestDB(t)
	results := NewResultService()

	award := testutil.CreateAward(t, "Best Cook", testutil.WithMaxNominations(2))
	nominee := testutil.CreateUser(t, "Nina Nominee", "staff")
	other := testutil.CreateUser(t, "Olga Other", "staff")
	n1 := testutil.CreateUser(t, "Uno Nominator", "staff")
	n2 := testutil.CreateUser(t, "Dos Nominator", "staff")

	for _, row := range []models.Nomination{
		{AwardID: award.ID, NominatorID: n1.ID, NomineeID: nominee.ID},
		{AwardID: award.ID, NominatorID: n2.ID, NomineeID: nominee.ID},
		{AwardID: award.ID, NominatorID: n1.ID, NomineeID: other.ID},
	} {
		if err := db.DB.Create(&row).Error; err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	tally, err := results.NominationTally(award.ID)
	if err != nil {
		t.Fatalf("NominationTally: %v", err)
	}
	if len(tally) != 2 {
		t.Fatalf("expected 2 nominees, got %d", len(tally))
	}
	top := tally[0]
	if top.NomineeID != nominee.ID || top.NominationCount != 2 {
		t.Fatalf("expected %s on top with 2 nominations, got %+v", nominee.ID, top)
	}
	if !strings.Contains(top.Nominators, "Uno Nominator") ||
		!strings.Contains(top.Nominators, "Dos Nominator") {
		t.Errorf("nominator names missing: %q", top.Nominators)
	}
}
