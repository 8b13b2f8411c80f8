package scheduling

import (
	"testing"
	"time"

	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

// weekStart is a fixed Sunday so every scenario anchors on the same week
// (spec.md §4.1: weeks start Sunday).
func weekStart() time.Time {
	return time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
}

func dayOf(weekday int, hour int) time.Time {
	return weekStart().AddDate(0, 0, weekday).Add(time.Duration(hour) * time.Hour)
}

func contains(ids []model.StaffID, id model.StaffID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// TestSchedule_SeedScenarios exercises the six seed scenarios of spec.md §8
// at the Schedule() entry point, checking both the resulting assignments
// and the reported algorithm.
func TestSchedule_SeedScenarios(t *testing.T) {
	t.Run("trivial", func(t *testing.T) {
		alice := model.StaffMember{ID: "alice", Name: "Alice"}
		bob := model.StaffMember{ID: "bob", Name: "Bob"}
		shift1 := model.ShiftOccurrence{ID: "shift1", Start: dayOf(1, 9), End: dayOf(1, 17), Requirements: model.ShiftRequirements{StaffCount: 1}}
		shift2 := model.ShiftOccurrence{ID: "shift2", Start: dayOf(1, 18), End: dayOf(1, 22), Requirements: model.ShiftRequirements{StaffCount: 1}}

		res := Schedule(weekStart(), []model.ShiftOccurrence{shift1, shift2}, []model.StaffMember{alice, bob}, nil)

		if !res.Success {
			t.Fatalf("expected success, got errors: %v", res.Errors)
		}
		if res.Algorithm != AlgorithmILPExact {
			t.Fatalf("algorithm = %v, want %v", res.Algorithm, AlgorithmILPExact)
		}
		if len(res.Assignments["shift1"]) != 1 || len(res.Assignments["shift2"]) != 1 {
			t.Fatalf("assignments = %v, want exactly one staff per shift", res.Assignments)
		}
		if res.Assignments["shift1"][0] == res.Assignments["shift2"][0] {
			t.Fatalf("both shifts assigned to the same staff member %v, want two distinct staff (daily cap is 1)", res.Assignments["shift1"][0])
		}
	})

	t.Run("trait", func(t *testing.T) {
		alice := model.StaffMember{ID: "alice", Name: "Alice", TraitIDs: map[model.TraitID]bool{"manager": true}}
		bob := model.StaffMember{ID: "bob", Name: "Bob", TraitIDs: map[model.TraitID]bool{"cook": true}}
		shift := model.ShiftOccurrence{
			ID:    "shift1",
			Start: dayOf(1, 9), End: dayOf(1, 17),
			Requirements: model.ShiftRequirements{
				StaffCount:     1,
				RequiredTraits: []model.RequiredTrait{{TraitID: "manager", MinCount: 1}},
			},
		}

		res := Schedule(weekStart(), []model.ShiftOccurrence{shift}, []model.StaffMember{alice, bob}, nil)

		if !res.Success {
			t.Fatalf("expected success, got errors: %v", res.Errors)
		}
		if got := res.Assignments["shift1"]; len(got) != 1 || got[0] != "alice" {
			t.Fatalf("assignments = %v, want [alice] (the only manager-trait carrier)", got)
		}
	})

	t.Run("incompatibility", func(t *testing.T) {
		alice := model.StaffMember{ID: "alice", Name: "Alice", Constraints: model.StaffConstraints{IncompatibleWith: []model.StaffID{"bob"}}}
		bob := model.StaffMember{ID: "bob", Name: "Bob", Constraints: model.StaffConstraints{IncompatibleWith: []model.StaffID{"alice"}}}
		charlie := model.StaffMember{ID: "charlie", Name: "Charlie"}
		shift := model.ShiftOccurrence{ID: "shift1", Start: dayOf(1, 9), End: dayOf(1, 17), Requirements: model.ShiftRequirements{StaffCount: 2}}

		res := Schedule(weekStart(), []model.ShiftOccurrence{shift}, []model.StaffMember{alice, bob, charlie}, nil)

		if !res.Success {
			t.Fatalf("expected success, got errors: %v", res.Errors)
		}
		got := res.Assignments["shift1"]
		if len(got) != 2 || !contains(got, "charlie") {
			t.Fatalf("assignments = %v, want charlie plus exactly one of alice/bob", got)
		}
		if contains(got, "alice") && contains(got, "bob") {
			t.Fatalf("assignments = %v, alice and bob are incompatible and must never both be assigned", got)
		}
	})

	t.Run("consecutive rest", func(t *testing.T) {
		two := 2
		alice := model.StaffMember{ID: "alice", Name: "Alice", Constraints: model.StaffConstraints{
			ConsecutiveRestDays: []model.ConsecutiveRestDays{{MinConsecutiveDays: two, Period: model.PeriodWeek}},
		}}
		bob := model.StaffMember{ID: "bob", Name: "Bob"}

		var shifts []model.ShiftOccurrence
		for i := 0; i < 7; i++ {
			shifts = append(shifts, model.ShiftOccurrence{
				ID:           model.OccurrenceID(dayOf(i, 9).Format("2006-01-02")),
				Start:        dayOf(i, 9),
				End:          dayOf(i, 17),
				Requirements: model.ShiftRequirements{StaffCount: 1},
			})
		}

		res := Schedule(weekStart(), shifts, []model.StaffMember{alice, bob}, nil)

		if !res.Success {
			t.Fatalf("expected success, got errors: %v", res.Errors)
		}

		aliceDays := 0
		restDay := make([]bool, 7)
		for i, s := range shifts {
			if contains(res.Assignments[s.ID], "alice") {
				aliceDays++
			} else {
				restDay[i] = true
			}
		}
		if aliceDays > 5 {
			t.Fatalf("alice worked %d days, want <= 5 (default weekly cap)", aliceDays)
		}
		foundAdjacentRest := false
		for i := 0; i < 6; i++ {
			if restDay[i] && restDay[i+1] {
				foundAdjacentRest = true
			}
		}
		if !foundAdjacentRest {
			t.Fatalf("no adjacent pair of rest days found for alice across the week: %v", restDay)
		}
	})

	t.Run("shared rest", func(t *testing.T) {
		alice := model.StaffMember{ID: "alice", Name: "Alice", Constraints: model.StaffConstraints{
			RestDaysWithStaff: []model.RestDaysWithStaff{{Peer: "bob", MinRestDays: 2, Period: model.PeriodWeek}},
		}}
		bob := model.StaffMember{ID: "bob", Name: "Bob"}
		charlie := model.StaffMember{ID: "charlie", Name: "Charlie"}

		var shifts []model.ShiftOccurrence
		for i := 0; i < 7; i++ {
			shifts = append(shifts, model.ShiftOccurrence{
				ID:           model.OccurrenceID(dayOf(i, 9).Format("2006-01-02")),
				Start:        dayOf(i, 9),
				End:          dayOf(i, 17),
				Requirements: model.ShiftRequirements{StaffCount: 1},
			})
		}

		res := Schedule(weekStart(), shifts, []model.StaffMember{alice, bob, charlie}, nil)

		if !res.Success {
			t.Fatalf("expected success, got errors: %v", res.Errors)
		}

		sharedRestDays := 0
		for _, s := range shifts {
			assigned := res.Assignments[s.ID]
			if !contains(assigned, "alice") && !contains(assigned, "bob") {
				sharedRestDays++
			}
		}
		if sharedRestDays < 2 {
			t.Fatalf("found %d shared-rest days for alice/bob, want >= 2", sharedRestDays)
		}
	})

	t.Run("impossible", func(t *testing.T) {
		alice := model.StaffMember{ID: "alice", Name: "Alice"}
		shift := model.ShiftOccurrence{ID: "shift1", Start: dayOf(1, 9), End: dayOf(1, 17), Requirements: model.ShiftRequirements{StaffCount: 2}}

		res := Schedule(weekStart(), []model.ShiftOccurrence{shift}, []model.StaffMember{alice}, nil)

		if !res.Success {
			t.Fatalf("expected success=true even when understaffed, got errors: %v", res.Errors)
		}
		if res.Algorithm != AlgorithmILPRelaxed && res.Algorithm != AlgorithmGreedy {
			t.Fatalf("algorithm = %v, want ilp-relaxed or greedy", res.Algorithm)
		}
		if got := len(res.Assignments["shift1"]); got > 1 {
			t.Fatalf("assigned %d staff, want <= 1 (only one staff member exists)", got)
		}
		if len(res.Warnings) == 0 {
			t.Error("expected a warning describing the unfilled/understaffed shift")
		}
	})
}

// TestSchedule_RejectsMalformedInput covers spec.md §7's Input error kind:
// the scheduler rejects the call outright, with no partial assignment.
func TestSchedule_RejectsMalformedInput(t *testing.T) {
	t.Run("negative staff count", func(t *testing.T) {
		shift := model.ShiftOccurrence{ID: "shift1", Start: dayOf(1, 9), End: dayOf(1, 17), Requirements: model.ShiftRequirements{StaffCount: -1}}
		res := Schedule(weekStart(), []model.ShiftOccurrence{shift}, nil, nil)

		if res.Success {
			t.Fatal("expected success=false for a negative staffCount")
		}
		if len(res.Errors) == 0 {
			t.Error("expected a descriptive error")
		}
		if res.Assignments != nil {
			t.Errorf("expected no partial assignment, got %v", res.Assignments)
		}
	})

	t.Run("unknown assigned staff id", func(t *testing.T) {
		shift := model.ShiftOccurrence{
			ID: "shift1", Start: dayOf(1, 9), End: dayOf(1, 17),
			Requirements:  model.ShiftRequirements{StaffCount: 1},
			AssignedStaff: []model.StaffID{"ghost"},
		}
		alice := model.StaffMember{ID: "alice", Name: "Alice"}

		res := Schedule(weekStart(), []model.ShiftOccurrence{shift}, []model.StaffMember{alice}, nil)

		if res.Success {
			t.Fatal("expected success=false: shift1 references a staff id that does not exist")
		}
	})

	t.Run("negative cap", func(t *testing.T) {
		negative := -1
		alice := model.StaffMember{ID: "alice", Name: "Alice", Constraints: model.StaffConstraints{MaxShiftsPerWeek: &negative}}
		shift := model.ShiftOccurrence{ID: "shift1", Start: dayOf(1, 9), End: dayOf(1, 17), Requirements: model.ShiftRequirements{StaffCount: 1}}

		res := Schedule(weekStart(), []model.ShiftOccurrence{shift}, []model.StaffMember{alice}, nil)

		if res.Success {
			t.Fatal("expected success=false for a negative weekly cap")
		}
	})
}

// TestSchedule_GreedyDelegation covers the case where no trait-eligible
// staff exists at all: both the exact and relaxed ILP attempts are
// infeasible (the required-trait lower-bound constraint can never be
// satisfied, relaxed or not), forcing delegation to the greedy fallback.
func TestSchedule_GreedyDelegation(t *testing.T) {
	alice := model.StaffMember{ID: "alice", Name: "Alice"}
	shift := model.ShiftOccurrence{
		ID:    "shift1",
		Start: dayOf(1, 9), End: dayOf(1, 17),
		Requirements: model.ShiftRequirements{
			StaffCount:     1,
			RequiredTraits: []model.RequiredTrait{{TraitID: "rn", MinCount: 1}},
		},
	}

	res := Schedule(weekStart(), []model.ShiftOccurrence{shift}, []model.StaffMember{alice}, nil)

	if !res.Success {
		t.Fatalf("expected success=true (best-effort never fails), got errors: %v", res.Errors)
	}
	if res.Algorithm != AlgorithmGreedy {
		t.Fatalf("algorithm = %v, want greedy: no staff carries the required trait, so even the relaxed ILP is infeasible", res.Algorithm)
	}
	if got := len(res.Assignments["shift1"]); got != 1 {
		t.Fatalf("assigned %d staff, want 1: greedy's fill pass places alice from the no-trait tier even though no staff carries the rn trait", got)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected the greedy fallback's summary warning")
	}
}
