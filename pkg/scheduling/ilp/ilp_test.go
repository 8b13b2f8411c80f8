package ilp

import (
	"testing"
	"time"

	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

// These tests exercise build()'s own variable bookkeeping directly: which
// x[s,o] pairs get created, which work[s,d]/restWindow/sharedRest auxiliary
// variables get created, and for whom. They never call mip.NewSolver or
// solver.Solve, so they hold even when the HiGHS backend isn't available.

func weekday(offset int) time.Time {
	sunday := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	return sunday.AddDate(0, 0, offset)
}

func TestBuild_SkipsBlockedStaffPair(t *testing.T) {
	occ := model.ShiftOccurrence{
		ID:           "mon",
		Start:        weekday(1),
		End:          weekday(1).Add(8 * time.Hour),
		Requirements: model.ShiftRequirements{StaffCount: 1},
	}
	staff := []model.StaffMember{
		{ID: "a", BlockedTimes: []model.BlockedTime{{Start: weekday(1), End: weekday(1).Add(8 * time.Hour), IsFullDay: true}}},
		{ID: "b"},
	}

	br := build(Input{Staff: staff, Occurrences: []model.ShiftOccurrence{occ}, EvaluationDate: weekday(0)}, true)

	if _, ok := br.v.x[pairKey{"a", "mon"}]; ok {
		t.Error("x[a,mon] should not exist: a is blocked during mon")
	}
	if _, ok := br.v.x[pairKey{"b", "mon"}]; !ok {
		t.Error("x[b,mon] should exist: b is free")
	}
}

func TestBuild_SkipsExcludedTraitPair(t *testing.T) {
	occ := model.ShiftOccurrence{
		ID:    "mon",
		Start: weekday(1),
		End:   weekday(1).Add(8 * time.Hour),
		Requirements: model.ShiftRequirements{
			StaffCount:     1,
			ExcludedTraits: map[model.TraitID]bool{"trainee": true},
		},
	}
	staff := []model.StaffMember{
		{ID: "a", TraitIDs: map[model.TraitID]bool{"trainee": true}},
		{ID: "b"},
	}

	br := build(Input{Staff: staff, Occurrences: []model.ShiftOccurrence{occ}, EvaluationDate: weekday(0)}, true)

	if _, ok := br.v.x[pairKey{"a", "mon"}]; ok {
		t.Error("x[a,mon] should not exist: a carries the excluded trait")
	}
	if _, ok := br.v.x[pairKey{"b", "mon"}]; !ok {
		t.Error("x[b,mon] should exist: b carries no excluded trait")
	}
}

func TestBuild_WorkVariableCreatedOnlyForEligiblePairs(t *testing.T) {
	occ := model.ShiftOccurrence{
		ID:           "mon",
		Start:        weekday(1),
		End:          weekday(1).Add(8 * time.Hour),
		Requirements: model.ShiftRequirements{StaffCount: 1},
	}
	staff := []model.StaffMember{
		{ID: "a", BlockedTimes: []model.BlockedTime{{Start: weekday(1), End: weekday(1).Add(8 * time.Hour), IsFullDay: true}}},
		{ID: "b"},
	}

	br := build(Input{Staff: staff, Occurrences: []model.ShiftOccurrence{occ}, EvaluationDate: weekday(0)}, true)

	dayStr := weekday(1).Format(dayKeyLayout)
	if _, ok := br.v.work[dayKey{"a", dayStr}]; ok {
		t.Error("work[a,mon] should not exist: a has no eligible x variable that day")
	}
	if _, ok := br.v.work[dayKey{"b", dayStr}]; !ok {
		t.Error("work[b,mon] should exist: b has an eligible x variable that day")
	}
}

func TestBuild_ConsecutiveRestWindowsCreatedForConstrainedStaffOnly(t *testing.T) {
	two := 2
	var occs []model.ShiftOccurrence
	for i := 1; i <= 7; i++ {
		occs = append(occs, model.ShiftOccurrence{
			ID:           model.OccurrenceID(weekday(i).Format(dayKeyLayout)),
			Start:        weekday(i),
			End:          weekday(i).Add(8 * time.Hour),
			Requirements: model.ShiftRequirements{StaffCount: 1},
		})
	}
	staff := []model.StaffMember{
		{ID: "alice", Constraints: model.StaffConstraints{
			ConsecutiveRestDays: []model.ConsecutiveRestDays{{MinConsecutiveDays: two, Period: model.PeriodWeek}},
		}},
		{ID: "bob"},
	}

	br := build(Input{Staff: staff, Occurrences: occs, EvaluationDate: weekday(0)}, true)

	foundAlice := false
	for key := range br.v.restWindow {
		if len(key) >= 5 && key[:5] == "alice" {
			foundAlice = true
		}
	}
	if !foundAlice {
		t.Error("expected at least one restWindow variable keyed by alice")
	}
	for key := range br.v.restWindow {
		if len(key) >= 3 && key[:3] == "bob" {
			t.Errorf("bob has no consecutiveRestDays constraint, should have no restWindow variable, got key %q", key)
		}
	}
}

func TestBuild_SharedRestVariablesCreatedForConstrainedPairOnly(t *testing.T) {
	var occs []model.ShiftOccurrence
	for i := 0; i < 7; i++ {
		occs = append(occs, model.ShiftOccurrence{
			ID:           model.OccurrenceID(weekday(i).Format(dayKeyLayout)),
			Start:        weekday(i),
			End:          weekday(i).Add(8 * time.Hour),
			Requirements: model.ShiftRequirements{StaffCount: 1},
		})
	}
	staff := []model.StaffMember{
		{ID: "alice", Constraints: model.StaffConstraints{
			RestDaysWithStaff: []model.RestDaysWithStaff{{Peer: "bob", MinRestDays: 2, Period: model.PeriodWeek}},
		}},
		{ID: "bob"},
		{ID: "charlie"},
	}

	br := build(Input{Staff: staff, Occurrences: occs, EvaluationDate: weekday(0)}, true)

	if len(br.v.sharedRest) != 7 {
		t.Fatalf("expected one sharedRest variable per day of the week (7), got %d", len(br.v.sharedRest))
	}
	for key := range br.v.sharedRest {
		if len(key) < len("alice|bob|") || key[:len("alice|bob|")] != "alice|bob|" {
			t.Errorf("sharedRest key %q should be scoped to alice|bob, not charlie", key)
		}
	}
}

func TestBuild_RelaxedStaffingKeepsSameVariableSet(t *testing.T) {
	occ := model.ShiftOccurrence{
		ID:           "mon",
		Start:        weekday(1),
		End:          weekday(1).Add(8 * time.Hour),
		Requirements: model.ShiftRequirements{StaffCount: 2},
	}
	staff := []model.StaffMember{{ID: "a"}}

	exact := build(Input{Staff: staff, Occurrences: []model.ShiftOccurrence{occ}, EvaluationDate: weekday(0)}, true)
	relaxed := build(Input{Staff: staff, Occurrences: []model.ShiftOccurrence{occ}, EvaluationDate: weekday(0)}, false)

	if len(exact.v.x) != len(relaxed.v.x) {
		t.Errorf("relaxing the staffing equality should not change which x variables exist: exact=%d relaxed=%d", len(exact.v.x), len(relaxed.v.x))
	}
}

func TestBuild_NoVariableWhenStaffHasNoEligibleOccurrence(t *testing.T) {
	occ := model.ShiftOccurrence{
		ID:           "mon",
		Start:        weekday(1),
		End:          weekday(1).Add(8 * time.Hour),
		Requirements: model.ShiftRequirements{StaffCount: 1},
	}
	staff := []model.StaffMember{
		{ID: "a", BlockedTimes: []model.BlockedTime{{Start: weekday(1), End: weekday(1).Add(8 * time.Hour), IsFullDay: true}}},
	}

	br := build(Input{Staff: staff, Occurrences: []model.ShiftOccurrence{occ}, EvaluationDate: weekday(0)}, true)

	if len(br.v.x) != 0 {
		t.Errorf("expected no x variables at all, got %d", len(br.v.x))
	}
	if len(br.occs) != 1 {
		t.Errorf("buildResult.occs should still list the occurrence for assignment-map seeding, got %d", len(br.occs))
	}
}
