package services

import (
	"errors"
	"testing"

	"github.com/EmilianoRojas/brigade-awards/internal/db"
	"github.com/EmilianoRojas/brigade-awards/internal/models"
	"github.com/EmilianoRojas/brigade-awards/internal/testutil"
)

func TestSubmitSingleNominations(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()

	award := testutil.CreateAward(t, "Best Firefighter",
		testutil.WithMaxNominations(2),
		testutil.WithNominationCriteria(&models.Criteria{Groups: []string{"staff"}}))
	nominator := testutil.CreateUser(t, "Uma Staff", "staff")
	x := testutil.CreateUser(t, "Xavier One", "staff")
	y := testutil.CreateUser(t, "Yara Two", "staff")

	if err := store.Submit(award.ID, testutil.Identity(nominator), Selection{
		NomineeIDs: []string{x.ID, y.ID},
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	var rows []models.Nomination
	if err := db.DB.Where("award_id = ? AND nominator_id = ?", award.ID, nominator.ID).
		Find(&rows).Error; err != nil {
		t.Fatalf("loading rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 nomination rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.NominationGroupID != nil {
			t.Errorf("single nomination row carries a group id")
		}
	}
}

func TestSubmitSingleValidation(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()

	partner := testutil.CreateUser(t, "Pat Partner", "staff")
	nominator := testutil.CreateUser(t, "Nadia Nominator", "staff",
		testutil.WithPartner(partner.ID))
	other := testutil.CreateUser(t, "Omar Other", "staff")
	award := testutil.CreateAward(t, "Best Driver", testutil.WithMaxNominations(2))

	tests := []struct {
		name string
		sel  Selection
	}{
		{"empty selection", Selection{}},
		{"over the limit", Selection{NomineeIDs: []string{other.ID, partner.ID, nominator.ID}}},
		{"duplicate nominee", Selection{NomineeIDs: []string{other.ID, other.ID}}},
		{"self nomination", Selection{NomineeIDs: []string{nominator.ID}}},
		{"partner nomination", Selection{NomineeIDs: []string{partner.ID}}},
		{"pairs for a single award", Selection{Pairs: [][2]string{{other.ID, partner.ID}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Submit(award.ID, testutil.Identity(nominator), tt.sel)
			if !IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	var count int64
	db.DB.Model(&models.Nomination{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected submissions must not persist rows, found %d", count)
	}
}

func TestSubmitGates(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()

	nominator := testutil.CreateUser(t, "Rita Recruit", "recruits")
	nominee := testutil.CreateUser(t, "Nina Nominee", "staff")

	closed := testutil.CreateAward(t, "Closed Award",
		testutil.WithPhase(models.PhaseFinalVoting))
	restricted := testutil.CreateAward(t, "Staff Only",
		testutil.WithNominationCriteria(&models.Criteria{Groups: []string{"staff"}}))

	err := store.Submit(closed.ID, testutil.Identity(nominator), Selection{NomineeIDs: []string{nominee.ID}})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("wrong phase: expected ErrForbidden, got %v", err)
	}

	err = store.Submit(restricted.ID, testutil.Identity(nominator), Selection{NomineeIDs: []string{nominee.ID}})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("ineligible nominator: expected ErrForbidden, got %v", err)
	}

	err = store.Submit("00000000-0000-0000-0000-000000000000", testutil.Identity(nominator), Selection{NomineeIDs: []string{nominee.ID}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown award: expected ErrNotFound, got %v", err)
	}
}

func TestSubmitReplacesPreviousSet(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()

	award := testutil.CreateAward(t, "Best Cook", testutil.WithMaxNominations(2))
	nominator := testutil.CreateUser(t, "Nora Cook", "staff")
	a := testutil.CreateUser(t, "Alba One", "staff")
	b := testutil.CreateUser(t, "Bruno Two", "staff")

	id := testutil.Identity(nominator)
	if err := store.Submit(award.ID, id, Selection{NomineeIDs: []string{a.ID}}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := store.Submit(award.ID, id, Selection{NomineeIDs: []string{b.ID}}); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	var rows []models.Nomination
	db.DB.Where("award_id = ? AND nominator_id = ?", award.ID, nominator.ID).Find(&rows)
	if len(rows) != 1 || rows[0].NomineeID != b.ID {
		t.Fatalf("expected exactly the replacement row for %s, got %+v", b.ID, rows)
	}
}

func TestReplaceFailureLeavesCommittedSetIntact(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()

	award := testutil.CreateAward(t, "Best Rookie", testutil.WithMaxNominations(2))
	other := testutil.CreateUser(t, "Olga Other", "staff")
	nominator := testutil.CreateUser(t, "Nadia Nominator", "staff")
	a := testutil.CreateUser(t, "Aldo One", "staff")
	b := testutil.CreateUser(t, "Bea Two", "staff")

	if err := store.Submit(award.ID, testutil.Identity(other), Selection{
		NomineeIDs: []string{a.ID},
	}); err != nil {
		t.Fatalf("other submit: %v", err)
	}
	if err := store.Submit(award.ID, testutil.Identity(nominator), Selection{
		NomineeIDs: []string{a.ID},
	}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	var foreign models.Nomination
	if err := db.DB.Where("nominator_id = ?", other.ID).First(&foreign).Error; err != nil {
		t.Fatalf("loading foreign row: %v", err)
	}

	// Colliding on another nominator's primary key makes the insert half of
	// the replace fail. Delete and insert share one transaction, so the
	// failure must roll back to the previous set: a reader can never observe
	// the window between them as committed state.
	err := store.replace(award.ID, nominator.ID, []models.Nomination{{
		ID:          foreign.ID,
		AwardID:     award.ID,
		NominatorID: nominator.ID,
		NomineeID:   b.ID,
	}})
	if err == nil {
		t.Fatal("expected the replacement insert to fail")
	}

	var rows []models.Nomination
	db.DB.Where("award_id = ? AND nominator_id = ?", award.ID, nominator.ID).Find(&rows)
	if len(rows) != 1 || rows[0].NomineeID != a.ID {
		t.Fatalf("failed replacement must leave the previous set, got %+v", rows)
	}
}

func TestSubmitIdenticalFlatSetIsNoop(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()

	award := testutil.CreateAward(t, "Best Medic", testutil.WithMaxNominations(2))
	nominator := testutil.CreateUser(t, "Nico Medic", "staff")
	a := testutil.CreateUser(t, "Ana One", "staff")
	b := testutil.CreateUser(t, "Beto Two", "staff")

	id := testutil.Identity(nominator)
	if err := store.Submit(award.ID, id, Selection{NomineeIDs: []string{a.ID, b.ID}}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	var before []models.Nomination
	db.DB.Order("id").Find(&before)

	// Same set, different order
	if err := store.Submit(award.ID, id, Selection{NomineeIDs: []string{b.ID, a.ID}}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	var after []models.Nomination
	db.DB.Order("id").Find(&after)

	if len(before) != len(after) {
		t.Fatalf("row count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Errorf("row %d was rewritten: id %d -> %d", i, before[i].ID, after[i].ID)
		}
	}
}

func duoAward(t *testing.T, maxPairs int) *models.Award {
	t.Helper()
	return testutil.CreateAward(t, "Dynamic Duo",
		testutil.WithMaxNominations(maxPairs),
		testutil.WithNominationCriteria(&models.Criteria{IsDuo: true}))
}

func TestSubmitDuoPairs(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()

	award := duoAward(t, 1)
	nominator := testutil.CreateUser(t, "Diana Duo", "staff")
	p := testutil.CreateUser(t, "Pablo Pair", "staff")
	q := testutil.CreateUser(t, "Quique Pair", "staff")

	id := testutil.Identity(nominator)
	if err := store.Submit(award.ID, id, Selection{Pairs: [][2]string{{p.ID, q.ID}}}); err != nil {
		t.Fatalf("duo submit: %v", err)
	}

	var rows []models.Nomination
	db.DB.Where("award_id = ?", award.ID).Find(&rows)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for one pair, got %d", len(rows))
	}
	if rows[0].NominationGroupID == nil || rows[1].NominationGroupID == nil {
		t.Fatal("duo rows must carry a group id")
	}
	if *rows[0].NominationGroupID != *rows[1].NominationGroupID {
		t.Error("pair members must share one group id")
	}
}

func TestSubmitDuoReversedPairIsNoop(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()

	award := duoAward(t, 1)
	nominator := testutil.CreateUser(t, "Dario Duo", "staff")
	p := testutil.CreateUser(t, "Pia Pair", "staff")
	q := testutil.CreateUser(t, "Queta Pair", "staff")

	id := testutil.Identity(nominator)
	if err := store.Submit(award.ID, id, Selection{Pairs: [][2]string{{p.ID, q.ID}}}); err != nil {
		t.Fatalf("duo submit: %v", err)
	}
	var before []models.Nomination
	db.DB.Order("id").Find(&before)

	if err := store.Submit(award.ID, id, Selection{Pairs: [][2]string{{q.ID, p.ID}}}); err != nil {
		t.Fatalf("reversed resubmit: %v", err)
	}
	var after []models.Nomination
	db.DB.Order("id").Find(&after)

	if len(before) != len(after) {
		t.Fatalf("row count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID ||
			*before[i].NominationGroupID != *after[i].NominationGroupID {
			t.Errorf("reversed pair resubmission generated new rows or group ids")
		}
	}
}

func TestSubmitDuoValidation(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()

	award := duoAward(t, 2)
	nominator := testutil.CreateUser(t, "Delia Duo", "staff")
	a := testutil.CreateUser(t, "Aitor Pair", "staff")
	b := testutil.CreateUser(t, "Belen Pair", "staff")
	c := testutil.CreateUser(t, "Celia Pair", "staff")

	tests := []struct {
		name  string
		pairs [][2]string
	}{
		{"same member twice in a pair", [][2]string{{a.ID, a.ID}}},
		{"duplicate unordered pair", [][2]string{{a.ID, b.ID}, {b.ID, a.ID}}},
		{"member reused across pairs", [][2]string{{a.ID, b.ID}, {a.ID, c.ID}}},
		{"no pairs", nil},
		{"flat ids for a duo award", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Selection{Pairs: tt.pairs}
			if tt.name == "flat ids for a duo award" {
				sel = Selection{NomineeIDs: []string{a.ID}}
			}
			err := store.Submit(award.ID, testutil.Identity(nominator), sel)
			if !IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestForUserGroupsByAward(t *testing.T) {
	testutil.SetupTestDB(t)
	store := NewNominationStore()
	votes := NewVoteStore()

	single := testutil.CreateAward(t, "Best Rookie", testutil.WithMaxNominations(2))
	duo := duoAward(t, 1)
	nominator := testutil.CreateUser(t, "Franca User", "staff")
	a := testutil.CreateUser(t, "Aldo One", "staff")
	b := testutil.CreateUser(t, "Bea Two", "staff")

	id := testutil.Identity(nominator)
	if err := store.Submit(single.ID, id, Selection{NomineeIDs: []string{a.ID, b.ID}}); err != nil {
		t.Fatalf("single submit: %v", err)
	}
	if err := store.Submit(duo.ID, id, Selection{Pairs: [][2]string{{a.ID, b.ID}}}); err != nil {
		t.Fatalf("duo submit: %v", err)
	}

	// Move the single award to FINAL_VOTING and vote so the projection
	// carries the final vote too.
	db.DB.Model(&models.Award{}).Where("id = ?", single.ID).
		Update("phase", models.PhaseFinalVoting)
	if err := votes.Submit(single.ID, id, a.ID, ""); err != nil {
		t.Fatalf("vote submit: %v", err)
	}

	got, err := store.ForUser(nominator.ID)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected entries for 2 awards, got %d", len(got))
	}

	byAward := make(map[string]UserAwardNominations)
	for _, entry := range got {
		byAward[entry.AwardID] = entry
	}

	s := byAward[single.ID]
	if len(s.NomineeIDs) != 2 || len(s.Pairs) != 0 {
		t.Errorf("single award projection wrong: %+v", s)
	}
	if s.FinalVote == nil || *s.FinalVote != a.ID {
		t.Errorf("expected final vote for %s, got %v", a.ID, s.FinalVote)
	}

	d := byAward[duo.ID]
	if len(d.NomineeIDs) != 0 || len(d.Pairs) != 1 {
		t.Errorf("duo award projection wrong: %+v", d)
	}
}
