// Package scheduling is the root of the auto-scheduler core: it wires the
// constraint validator, staffing-status evaluator, ILP model/driver, and
// greedy fallback into the three operations external callers use.
package scheduling

import (
	"fmt"
	"time"

	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/greedy"
	"github.com/paiban/shiftplan/pkg/scheduling/ilp"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/temporal"
)

// Algorithm names which path produced a ScheduleResult's assignments.
type Algorithm string

const (
	AlgorithmILPExact    Algorithm = "ilp-exact"
	AlgorithmILPRelaxed  Algorithm = "ilp-relaxed"
	AlgorithmGreedy      Algorithm = "greedy"
)

// ScheduleResult is the outcome of one Schedule call.
type ScheduleResult struct {
	Success     bool
	Assignments model.AssignmentMap
	Warnings    []string
	Errors      []string
	Objective   *float64
	Algorithm   Algorithm
}

// Schedule assigns staff to every shift occurrence falling in the week
// containing weekStart. shifts must include every occurrence the caller
// knows about, not just the target week, so per-period caps are honored
// across month/year boundaries (spec.md §6). The contract is
// best-effort-never-throws: infeasibility is recovered locally and
// surfaced as warnings, never as an error.
func Schedule(weekStart time.Time, shifts []model.ShiftOccurrence, staff []model.StaffMember, formatter catalog.Formatter) ScheduleResult {
	if formatter == nil {
		formatter = catalog.Default
	}

	if errs := validateInput(shifts, staff); len(errs) > 0 {
		return ScheduleResult{Success: false, Errors: []string{errs[0]}}
	}

	anchor := weekStart
	wStart, wEnd := temporal.PeriodBounds(model.PeriodWeek, anchor)

	var weekOccs []model.ShiftOccurrence
	for _, o := range shifts {
		if !o.Start.Before(wStart) && o.Start.Before(wEnd) {
			weekOccs = append(weekOccs, o)
		}
	}

	ilpIn := ilp.Input{
		Staff:          staff,
		Occurrences:    weekOccs,
		AllOccurrences: shifts,
		EvaluationDate: anchor,
	}

	res, ok, err := ilp.Solve(ilpIn, ilp.Options{Timeout: ilp.DefaultTimeout})
	if err != nil {
		return ScheduleResult{Success: false, Errors: []string{fmt.Sprintf("solver error: %v", err)}}
	}

	if ok {
		algorithm := AlgorithmILPExact
		var warnings []string
		if res.Relaxed {
			algorithm = AlgorithmILPRelaxed
			warnings = relaxedWarnings(weekOccs, res.Assignments, staff, formatter)
		}
		objective := float64(countAssignments(res.Assignments))
		return ScheduleResult{
			Success:     true,
			Assignments: res.Assignments,
			Warnings:    warnings,
			Algorithm:   algorithm,
			Objective:   &objective,
		}
	}

	// Both the exact and relaxed ILP attempts proved infeasible: delegate
	// to the deterministic greedy best-effort scheduler (spec.md §4.5.3).
	greedyRes := greedy.Solve(greedy.Input{
		WeekStart:      anchor,
		Staff:          staff,
		AllOccurrences: shifts,
	}, formatter)

	objective := float64(countAssignments(greedyRes.Assignments))
	return ScheduleResult{
		Success:     true,
		Assignments: greedyRes.Assignments,
		Warnings:    greedyRes.Warnings,
		Algorithm:   AlgorithmGreedy,
		Objective:   &objective,
	}
}

func countAssignments(a model.AssignmentMap) int {
	n := 0
	for _, staffIDs := range a {
		n += len(staffIDs)
	}
	return n
}

// validateInput rejects malformed snapshots: assignment references to
// unknown staff and negative caps/counts (spec.md §7 Input error).
func validateInput(shifts []model.ShiftOccurrence, staff []model.StaffMember) []string {
	var errs []string

	staffByID := make(map[model.StaffID]bool, len(staff))
	for _, s := range staff {
		staffByID[s.ID] = true
	}

	for _, o := range shifts {
		if o.Requirements.StaffCount < 0 {
			errs = append(errs, fmt.Sprintf("occurrence %s: negative staffCount", o.ID))
		}
		for _, rt := range o.Requirements.RequiredTraits {
			if rt.MinCount < 0 {
				errs = append(errs, fmt.Sprintf("occurrence %s: negative requiredTrait minCount", o.ID))
			}
		}
		for _, sid := range o.AssignedStaff {
			if !staffByID[sid] {
				errs = append(errs, fmt.Sprintf("occurrence %s: assigned staff id %s does not exist", o.ID, sid))
			}
		}
	}

	for _, s := range staff {
		c := s.Constraints
		for _, capPtr := range []*int{c.MaxShiftsPerDay, c.MaxShiftsPerWeek, c.MaxShiftsPerMonth, c.MaxShiftsPerYear} {
			if capPtr != nil && *capPtr < 0 {
				errs = append(errs, fmt.Sprintf("staff %s: negative shift cap", s.ID))
			}
		}
		for _, otherID := range c.IncompatibleWith {
			if !staffByID[otherID] {
				errs = append(errs, fmt.Sprintf("staff %s: incompatibleWith references unknown staff id %s", s.ID, otherID))
			}
		}
		for _, rc := range c.RestDaysWithStaff {
			if !staffByID[rc.Peer] {
				errs = append(errs, fmt.Sprintf("staff %s: restDaysWithStaff references unknown staff id %s", s.ID, rc.Peer))
			}
			if rc.MinRestDays < 0 {
				errs = append(errs, fmt.Sprintf("staff %s: negative minRestDays", s.ID))
			}
		}
		for _, rc := range c.ConsecutiveRestDays {
			if rc.MinConsecutiveDays < 0 {
				errs = append(errs, fmt.Sprintf("staff %s: negative minConsecutiveDays", s.ID))
			}
		}
	}

	return errs
}

// relaxedWarnings enumerates unfilled/understaffed shift counts and up to
// three contributing reasons, per spec.md §4.5 step 2.
func relaxedWarnings(weekOccs []model.ShiftOccurrence, assignments model.AssignmentMap, staff []model.StaffMember, formatter catalog.Formatter) []string {
	unfilled, understaffed := 0, 0
	reasons := map[string]bool{}

	for _, o := range weekOccs {
		assigned := assignments[o.ID]
		if o.Requirements.StaffCount == 0 {
			continue
		}
		if len(assigned) == 0 {
			unfilled++
		} else if len(assigned) < o.Requirements.StaffCount {
			understaffed++
		} else {
			continue
		}

		if len(staff) < o.Requirements.StaffCount {
			reasons["insufficient total staff"] = true
		}
		if traitsUnmet(o, assigned, staff) {
			reasons["unmet trait requirements"] = true
		}
		if anyStaffBlocked(o, staff) {
			reasons["staff blocked during required times"] = true
		}
	}

	var warnings []string
	if unfilled > 0 {
		warnings = append(warnings, formatter(catalog.KeyWarningUnfilledShifts, map[string]any{"count": unfilled}))
	}
	if understaffed > 0 {
		warnings = append(warnings, formatter(catalog.KeyWarningUnderstaffedShifts, map[string]any{"count": understaffed}))
	}

	for i, reason := range orderedReasons(reasons) {
		if i >= 3 {
			break
		}
		warnings = append(warnings, reason)
	}

	return warnings
}

// orderedReasons yields reasons in a fixed, deterministic priority order
// rather than Go's randomized map iteration order.
func orderedReasons(reasons map[string]bool) []string {
	priority := []string{
		"insufficient total staff",
		"unmet trait requirements",
		"staff blocked during required times",
	}
	var out []string
	for _, r := range priority {
		if reasons[r] {
			out = append(out, r)
		}
	}
	return out
}

func traitsUnmet(o model.ShiftOccurrence, assigned []model.StaffID, staff []model.StaffMember) bool {
	staffByID := make(map[model.StaffID]model.StaffMember, len(staff))
	for _, s := range staff {
		staffByID[s.ID] = s
	}
	for _, rt := range o.Requirements.RequiredTraits {
		count := 0
		for _, id := range assigned {
			if s, ok := staffByID[id]; ok && s.HasTrait(rt.TraitID) {
				count++
			}
		}
		if count < rt.MinCount {
			return true
		}
	}
	return false
}

func anyStaffBlocked(o model.ShiftOccurrence, staff []model.StaffMember) bool {
	for _, s := range staff {
		for _, bt := range s.BlockedTimes {
			for _, iv := range temporal.ExpandBlockedTime(bt, o.Start.AddDate(-1, 0, 0), o.Start.AddDate(1, 0, 0)) {
				if iv.Overlaps(temporal.Interval{Start: o.Start, End: o.End}) {
					return true
				}
			}
		}
	}
	return false
}
