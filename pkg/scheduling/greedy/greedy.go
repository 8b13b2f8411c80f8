// Package greedy implements the deterministic, constraint-respecting
// best-effort scheduler used when the ILP has no feasible or relaxed
// solution (spec.md §4.6). It is grounded on the teacher's
// GreedySolver: sort occurrences, tier candidates, sort each tier by
// ascending workload, and run a constraint-checked assignment loop with
// running per-staff counters.
package greedy

import (
	"sort"
	"time"

	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/temporal"
	"github.com/paiban/shiftplan/pkg/scheduling/validate"
)

// Input is the slice of the schedule the greedy sweep runs over.
type Input struct {
	WeekStart      time.Time
	Staff          []model.StaffMember
	AllOccurrences []model.ShiftOccurrence
}

// Result is the outcome of one greedy sweep.
type Result struct {
	Assignments model.AssignmentMap
	Warnings    []string
}

// Solve runs the deterministic greedy sweep over the week containing
// in.WeekStart, seeding running caps from every occurrence outside that
// week and clearing assignments inside it — the scheduler is
// authoritative for the week being (re)built.
func Solve(in Input, formatter catalog.Formatter) Result {
	if formatter == nil {
		formatter = catalog.Default
	}

	weekStart, weekEnd := temporal.PeriodBounds(model.PeriodWeek, in.WeekStart)

	var weekOccs []model.ShiftOccurrence
	state := make([]model.ShiftOccurrence, 0, len(in.AllOccurrences))
	stateIndex := make(map[model.OccurrenceID]int, len(in.AllOccurrences))

	for _, o := range in.AllOccurrences {
		snap := o
		if !o.Start.Before(weekStart) && o.Start.Before(weekEnd) {
			snap.AssignedStaff = nil
		}
		stateIndex[o.ID] = len(state)
		state = append(state, snap)
		if !o.Start.Before(weekStart) && o.Start.Before(weekEnd) {
			weekOccs = append(weekOccs, snap)
		}
	}

	sort.SliceStable(weekOccs, func(i, j int) bool {
		return weekOccs[i].Start.Before(weekOccs[j].Start)
	})

	staffByID := make(map[model.StaffID]model.StaffMember, len(in.Staff))
	for _, s := range in.Staff {
		staffByID[s.ID] = s
	}

	weeklyCount := make(map[model.StaffID]int)

	unfilled, understaffed := 0, 0

	for _, occ := range weekOccs {
		idx := stateIndex[occ.ID]

		eligible := eligibleStaff(in.Staff, occ, in.WeekStart)
		tiers := partitionTiers(eligible, occ, weeklyCount)

		traitCoveragePass(&state, idx, occ.ID, tiers, staffByID, in.WeekStart, formatter, weeklyCount)
		fillPass(&state, idx, occ.ID, tiers, staffByID, in.WeekStart, formatter, weeklyCount)

		final := state[idx]
		if len(final.AssignedStaff) == 0 && final.Requirements.StaffCount > 0 {
			unfilled++
		} else if len(final.AssignedStaff) < final.Requirements.StaffCount {
			understaffed++
		}
	}

	assignments := make(model.AssignmentMap, len(weekOccs))
	for _, occ := range weekOccs {
		assignments[occ.ID] = append([]model.StaffID(nil), state[stateIndex[occ.ID]].AssignedStaff...)
	}

	var warnings []string
	if unfilled > 0 {
		warnings = append(warnings, formatter(catalog.KeyWarningUnfilledShifts, map[string]any{"count": unfilled}))
	}
	if understaffed > 0 {
		warnings = append(warnings, formatter(catalog.KeyWarningUnderstaffedShifts, map[string]any{"count": understaffed}))
	}
	warnings = append(warnings, formatter(catalog.KeyWarningAllConstraintsMet, nil))

	return Result{Assignments: assignments, Warnings: warnings}
}

// eligibleStaff returns staff who are not blocked during occ and who
// carry none of occ's excluded traits.
func eligibleStaff(staff []model.StaffMember, occ model.ShiftOccurrence, evaluationDate time.Time) []model.StaffMember {
	var out []model.StaffMember
	for _, s := range staff {
		if hasAnyExcludedTrait(s, occ.Requirements.ExcludedTraits) {
			continue
		}
		if blockedDuring(s, occ, evaluationDate) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func hasAnyExcludedTrait(s model.StaffMember, excluded map[model.TraitID]bool) bool {
	for t := range excluded {
		if s.HasTrait(t) {
			return true
		}
	}
	return false
}

func blockedDuring(s model.StaffMember, occ model.ShiftOccurrence, evaluationDate time.Time) bool {
	horizonStart := evaluationDate.AddDate(-1, 0, 0)
	horizonEnd := evaluationDate.AddDate(1, 0, 0)
	occInterval := temporal.Interval{Start: occ.Start, End: occ.End}
	for _, bt := range s.BlockedTimes {
		for _, iv := range temporal.ExpandBlockedTime(bt, horizonStart, horizonEnd) {
			if iv.Overlaps(occInterval) {
				return true
			}
		}
	}
	return false
}

// tiers holds the four priority partitions, each sorted ascending by
// current week assignment count.
type tiers struct {
	all4Preferred []model.StaffMember // required + preferred
	all4Only      []model.StaffMember // required only
	preferredOnly []model.StaffMember // preferred only, missing a required trait
	neither       []model.StaffMember
}

func partitionTiers(staff []model.StaffMember, occ model.ShiftOccurrence, weeklyCount map[model.StaffID]int) tiers {
	var t tiers
	for _, s := range staff {
		hasAllRequired := true
		for _, rt := range occ.Requirements.RequiredTraits {
			if !s.HasTrait(rt.TraitID) {
				hasAllRequired = false
				break
			}
		}
		hasPreferred := false
		for trait := range occ.Requirements.PreferredTraits {
			if s.HasTrait(trait) {
				hasPreferred = true
				break
			}
		}

		switch {
		case hasAllRequired && hasPreferred:
			t.all4Preferred = append(t.all4Preferred, s)
		case hasAllRequired:
			t.all4Only = append(t.all4Only, s)
		case hasPreferred:
			t.preferredOnly = append(t.preferredOnly, s)
		default:
			t.neither = append(t.neither, s)
		}
	}

	byWorkload := func(list []model.StaffMember) {
		sort.SliceStable(list, func(i, j int) bool {
			return weeklyCount[list[i].ID] < weeklyCount[list[j].ID]
		})
	}
	byWorkload(t.all4Preferred)
	byWorkload(t.all4Only)
	byWorkload(t.preferredOnly)
	byWorkload(t.neither)

	return t
}

// traitCoveragePass walks tiers 1->2 for each required trait until its
// minimum count is placed or the candidate set is exhausted.
func traitCoveragePass(
	state *[]model.ShiftOccurrence,
	idx int,
	occID model.OccurrenceID,
	t tiers,
	staffByID map[model.StaffID]model.StaffMember,
	evaluationDate time.Time,
	formatter catalog.Formatter,
	weeklyCount map[model.StaffID]int,
) {
	occ := (*state)[idx]
	for _, rt := range occ.Requirements.RequiredTraits {
		placed := 0
		for _, o := range (*state)[idx].AssignedStaff {
			if s, ok := staffByID[o]; ok && s.HasTrait(rt.TraitID) {
				placed++
			}
		}
		if placed >= rt.MinCount {
			continue
		}

		candidates := append(append([]model.StaffMember{}, t.all4Preferred...), t.all4Only...)
		for _, cand := range candidates {
			if placed >= rt.MinCount {
				break
			}
			if !cand.HasTrait(rt.TraitID) {
				continue
			}
			if tryAssign(state, idx, cand, staffByID, evaluationDate, formatter) {
				placed++
				weeklyCount[cand.ID]++
			}
		}
	}
}

// fillPass walks tiers 1->2->3->4 until occ.staffCount is met.
func fillPass(
	state *[]model.ShiftOccurrence,
	idx int,
	occID model.OccurrenceID,
	t tiers,
	staffByID map[model.StaffID]model.StaffMember,
	evaluationDate time.Time,
	formatter catalog.Formatter,
	weeklyCount map[model.StaffID]int,
) {
	required := (*state)[idx].Requirements.StaffCount

	candidates := append(append(append(append([]model.StaffMember{}, t.all4Preferred...), t.all4Only...), t.preferredOnly...), t.neither...)
	for _, cand := range candidates {
		if len((*state)[idx].AssignedStaff) >= required {
			break
		}
		if tryAssign(state, idx, cand, staffByID, evaluationDate, formatter) {
			weeklyCount[cand.ID]++
		}
	}
}

// tryAssign applies the rejection tests shared by both passes and, if the
// candidate survives, appends them to the occurrence's assigned list.
func tryAssign(
	state *[]model.ShiftOccurrence,
	idx int,
	cand model.StaffMember,
	staffByID map[model.StaffID]model.StaffMember,
	evaluationDate time.Time,
	formatter catalog.Formatter,
) bool {
	occ := (*state)[idx]
	if occ.HasStaff(cand.ID) {
		return false
	}

	allStaff := make([]model.StaffMember, 0, len(staffByID))
	for _, s := range staffByID {
		allStaff = append(allStaff, s)
	}

	ctx := validate.NewContext(cand, occ, allStaff, *state, evaluationDate, validate.ModeCheckAssignment, formatter)
	for _, v := range validate.Validate(ctx) {
		if v.Severity != model.SeverityError {
			continue
		}
		switch v.Type {
		case model.ConstraintDailyShiftLimit, model.ConstraintWeeklyShiftLimit,
			model.ConstraintMonthlyShiftLimit, model.ConstraintYearlyShiftLimit,
			model.ConstraintIncompatibleStaff, model.ConstraintRestDaysWithStaff:
			return false
		}
		// consecutive-rest-days and blocked-time are intentionally not
		// part of the greedy rejection tests (spec.md §4.6b): blocked
		// staff were already excluded from the candidate pool, and
		// consecutive-rest windows are a softer signal left to the
		// validator surfaced later to the caller.
	}

	(*state)[idx].AssignedStaff = append(append([]model.StaffID{}, occ.AssignedStaff...), cand.ID)
	return true
}
