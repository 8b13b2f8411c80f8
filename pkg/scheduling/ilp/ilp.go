// Package ilp builds and solves the 0/1 integer-linear-programming model
// for weekly shift assignment, grounded on the nextmv-io/sdk mip package
// the way the shift-scheduling community template wires it up: a Model
// built from plain Go loops, solved with the HiGHS backend.
package ilp

import (
	"time"

	"github.com/nextmv-io/sdk/mip"

	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/temporal"
)

const dayKeyLayout = "2006-01-02"

// Input is the slice of the schedule the model is built over. Occurrences
// is the decision scope — one x[s,o] is created per eligible pair in it —
// while AllOccurrences is the full superset the caller knows about
// (spec.md §6: "shifts includes every occurrence ... enabling month/year
// cap accounting"): assignments already fixed there are not re-decided,
// but they lower the remaining daily/weekly/monthly/yearly headroom the
// model has available for Occurrences.
type Input struct {
	Staff          []model.StaffMember
	Occurrences    []model.ShiftOccurrence
	AllOccurrences []model.ShiftOccurrence
	EvaluationDate time.Time
}

// pairKey indexes a staff/occurrence decision variable.
type pairKey struct {
	staff model.StaffID
	occ   model.OccurrenceID
}

// dayKey indexes a per-staff, per-day auxiliary variable.
type dayKey struct {
	staff model.StaffID
	day   string
}

type vars struct {
	x          map[pairKey]mip.Bool
	work       map[dayKey]mip.Bool
	restWindow map[string]mip.Bool // keyed by staffID|periodIdx|windowStart
	sharedRest map[string]mip.Bool // keyed by staffID|peerID|day
}

// buildResult is returned by build: the mip.Model plus the variable
// indices required to translate a solution back into an AssignmentMap.
type buildResult struct {
	m    mip.Model
	v    vars
	occs []model.ShiftOccurrence
}

// build constructs the model. When exactStaffing is false, the
// staff-count-per-occurrence equality constraints are relaxed to
// upper-bound (<=) constraints, matching spec.md §4.5's relaxation
// fallback: every other constraint kind is unchanged.
func build(in Input, exactStaffing bool) buildResult {
	m := mip.NewModel()
	m.Objective().SetMaximize()

	staffByID := make(map[model.StaffID]model.StaffMember, len(in.Staff))
	for _, s := range in.Staff {
		staffByID[s.ID] = s
	}

	v := vars{
		x:          make(map[pairKey]mip.Bool),
		work:       make(map[dayKey]mip.Bool),
		restWindow: make(map[string]mip.Bool),
		sharedRest: make(map[string]mip.Bool),
	}

	// x[s,o]: one binary per (staff, occurrence) pair, to keep the model
	// small we only create a variable when the staff member has no
	// blocked-time overlap with the occurrence and carries none of its
	// excluded traits (spec.md §4.4 conditions a, b).
	for _, o := range in.Occurrences {
		for _, s := range in.Staff {
			if staffBlocked(s, o, in.EvaluationDate) {
				continue
			}
			if hasExcludedTrait(s, o.Requirements.ExcludedTraits) {
				continue
			}
			v.x[pairKey{s.ID, o.ID}] = m.NewBool()
			m.Objective().NewTerm(1.0, v.x[pairKey{s.ID, o.ID}])
		}
	}

	addStaffingConstraints(m, in, v, exactStaffing)
	addTraitConstraints(m, in, v)
	addIncompatibilityConstraints(m, in, v)
	addDayWorkLinks(m, in, v)
	addShiftLimitConstraints(m, in, v)
	addConsecutiveRestConstraints(m, in, v)
	addSharedRestConstraints(m, in, v, staffByID)

	return buildResult{m: m, v: v, occs: in.Occurrences}
}

func hasExcludedTrait(s model.StaffMember, excluded map[model.TraitID]bool) bool {
	for t := range excluded {
		if s.HasTrait(t) {
			return true
		}
	}
	return false
}

func staffBlocked(s model.StaffMember, o model.ShiftOccurrence, evaluationDate time.Time) bool {
	horizonStart := evaluationDate.AddDate(-1, 0, 0)
	horizonEnd := evaluationDate.AddDate(1, 0, 0)
	occInterval := temporal.Interval{Start: o.Start, End: o.End}
	for _, bt := range s.BlockedTimes {
		for _, iv := range temporal.ExpandBlockedTime(bt, horizonStart, horizonEnd) {
			if iv.Overlaps(occInterval) {
				return true
			}
		}
	}
	return false
}

// addStaffingConstraints enforces, for every occurrence, that the number
// of assigned staff equals (or, when relaxed, does not exceed) the
// required staff count.
func addStaffingConstraints(m mip.Model, in Input, v vars, exactStaffing bool) {
	for _, o := range in.Occurrences {
		sense := mip.Equal
		if !exactStaffing {
			sense = mip.LessThanOrEqual
		}
		c := m.NewConstraint(sense, float64(o.Requirements.StaffCount))
		for _, s := range in.Staff {
			if xv, ok := v.x[pairKey{s.ID, o.ID}]; ok {
				c.NewTerm(1.0, xv)
			}
		}
	}
}

// addTraitConstraints enforces each occurrence's per-trait minimum
// headcount as a lower-bound constraint over the staff who hold that
// trait.
func addTraitConstraints(m mip.Model, in Input, v vars) {
	for _, o := range in.Occurrences {
		for _, rt := range o.Requirements.RequiredTraits {
			if rt.MinCount <= 0 {
				continue
			}
			c := m.NewConstraint(mip.GreaterThanOrEqual, float64(rt.MinCount))
			for _, s := range in.Staff {
				if !s.HasTrait(rt.TraitID) {
					continue
				}
				if xv, ok := v.x[pairKey{s.ID, o.ID}]; ok {
					c.NewTerm(1.0, xv)
				}
			}
		}
	}
}

// addIncompatibilityConstraints forbids two incompatible staff members
// from both being assigned to the same occurrence.
func addIncompatibilityConstraints(m mip.Model, in Input, v vars) {
	seen := map[[2]model.StaffID]bool{}
	for _, s := range in.Staff {
		for _, otherID := range s.Constraints.IncompatibleWith {
			pair := [2]model.StaffID{s.ID, otherID}
			if pair[0] > pair[1] {
				pair[0], pair[1] = pair[1], pair[0]
			}
			if seen[pair] {
				continue
			}
			seen[pair] = true

			for _, o := range in.Occurrences {
				x1, ok1 := v.x[pairKey{pair[0], o.ID}]
				x2, ok2 := v.x[pairKey{pair[1], o.ID}]
				if !ok1 || !ok2 {
					continue
				}
				c := m.NewConstraint(mip.LessThanOrEqual, 1.0)
				c.NewTerm(1.0, x1)
				c.NewTerm(1.0, x2)
			}
		}
	}
}

// addDayWorkLinks creates work[s,d] and links it to every x[s,o] whose
// occurrence falls on day d: work[s,d] >= x[s,o] for each such o, so a
// solver that sets work[s,d]=0 has certified s is fully free that day.
func addDayWorkLinks(m mip.Model, in Input, v vars) {
	for _, s := range in.Staff {
		for _, o := range in.Occurrences {
			xv, ok := v.x[pairKey{s.ID, o.ID}]
			if !ok {
				continue
			}
			dk := dayKey{s.ID, temporal.StartOfDay(o.Start).Format(dayKeyLayout)}
			wv, ok := v.work[dk]
			if !ok {
				wv = m.NewBool()
				v.work[dk] = wv
			}
			c := m.NewConstraint(mip.GreaterThanOrEqual, 0.0)
			c.NewTerm(1.0, wv)
			c.NewTerm(-1.0, xv)
		}
	}
}

// addShiftLimitConstraints enforces each staff member's daily, weekly,
// monthly, and yearly shift caps as sum(x) <= limit - baseline over the
// relevant period, where baseline is however much of the cap is already
// consumed by fixed assignments outside the decision scope.
func addShiftLimitConstraints(m mip.Model, in Input, v vars) {
	periods := []struct {
		period model.Period
		limit  func(model.StaffConstraints) (int, bool)
	}{
		{model.PeriodDay, func(c model.StaffConstraints) (int, bool) { return c.EffectiveMaxShiftsPerDay(), true }},
		{model.PeriodWeek, func(c model.StaffConstraints) (int, bool) { return c.EffectiveMaxShiftsPerWeek(), true }},
		{model.PeriodMonth, func(c model.StaffConstraints) (int, bool) { return c.EffectiveMaxShiftsPerMonth(), true }},
		{model.PeriodYear, model.StaffConstraints.EffectiveMaxShiftsPerYear},
	}

	decisionScope := make(map[model.OccurrenceID]bool, len(in.Occurrences))
	for _, o := range in.Occurrences {
		decisionScope[o.ID] = true
	}

	for _, s := range in.Staff {
		for _, p := range periods {
			limit, bounded := p.limit(s.Constraints)
			if !bounded {
				continue
			}
			for _, bucket := range bucketOccurrencesByPeriod(in.Occurrences, p.period) {
				start, end := temporal.PeriodBounds(p.period, bucket[0].Start)
				baseline := existingAssignmentCount(in.AllOccurrences, s.ID, start, end, decisionScope)

				c := m.NewConstraint(mip.LessThanOrEqual, float64(limit-baseline))
				for _, o := range bucket {
					if xv, ok := v.x[pairKey{s.ID, o.ID}]; ok {
						c.NewTerm(1.0, xv)
					}
				}
			}
		}
	}
}

// existingAssignmentCount counts how many occurrences outside the
// decision scope, within [start,end], already have staffID assigned.
func existingAssignmentCount(
	occs []model.ShiftOccurrence,
	staffID model.StaffID,
	start, end time.Time,
	decisionScope map[model.OccurrenceID]bool,
) int {
	count := 0
	for _, o := range occs {
		if decisionScope[o.ID] {
			continue
		}
		if o.Start.Before(start) || o.Start.After(end) {
			continue
		}
		if o.HasStaff(staffID) {
			count++
		}
	}
	return count
}

// bucketOccurrencesByPeriod groups occurrences by the [start,end) bounds
// of the period they fall in, anchored on each occurrence's own start.
func bucketOccurrencesByPeriod(occs []model.ShiftOccurrence, period model.Period) [][]model.ShiftOccurrence {
	type bucketKey struct{ start, end int64 }
	index := map[bucketKey]int{}
	var buckets [][]model.ShiftOccurrence
	for _, o := range occs {
		start, end := temporal.PeriodBounds(period, o.Start)
		key := bucketKey{start.Unix(), end.Unix()}
		idx, ok := index[key]
		if !ok {
			idx = len(buckets)
			index[key] = idx
			buckets = append(buckets, nil)
		}
		buckets[idx] = append(buckets[idx], o)
	}
	return buckets
}

// addConsecutiveRestConstraints implements the minConsecutiveDays window
// constraint: restWindow[s,w] may be 1 only if every day in the window w
// has work[s,d] = 0, and at least one such window must be set per period.
// Windows are built only from in.Occurrences (the decision scope); a
// window that straddles a fixed occurrence outside that scope is left to
// the validator to catch post-hoc, same as the greedy path.
func addConsecutiveRestConstraints(m mip.Model, in Input, v vars) {
	for _, s := range in.Staff {
		for _, rc := range s.Constraints.ConsecutiveRestDays {
			for _, bucket := range bucketOccurrencesByPeriod(in.Occurrences, rc.Period) {
				if len(bucket) == 0 {
					continue
				}
				start, end := temporal.PeriodBounds(rc.Period, bucket[0].Start)
				days := temporal.Days(start, end)
				if rc.MinConsecutiveDays <= 0 || rc.MinConsecutiveDays > len(days) {
					continue
				}

				atLeastOne := m.NewConstraint(mip.GreaterThanOrEqual, 1.0)
				for i := 0; i+rc.MinConsecutiveDays <= len(days); i++ {
					window := days[i : i+rc.MinConsecutiveDays]
					key := string(s.ID) + "|" + string(rc.Period) + "|" + window[0].Format(dayKeyLayout)
					rv, ok := v.restWindow[key]
					if !ok {
						rv = m.NewBool()
						v.restWindow[key] = rv
					}
					atLeastOne.NewTerm(1.0, rv)

					for _, d := range window {
						dk := dayKey{s.ID, d.Format(dayKeyLayout)}
						wv, ok := v.work[dk]
						if !ok {
							continue // staff has no possible assignment that day at all, so rest is free
						}
						// rv <= 1 - work  =>  rv + work <= 1
						c := m.NewConstraint(mip.LessThanOrEqual, 1.0)
						c.NewTerm(1.0, rv)
						c.NewTerm(1.0, wv)
					}
				}
			}
		}
	}
}

// addSharedRestConstraints implements the shared-rest-day-with-peer
// constraint: sharedRest[s,peer,d] may be 1 only if both rest that day,
// and the period total must meet minRestDays.
func addSharedRestConstraints(m mip.Model, in Input, v vars, staffByID map[model.StaffID]model.StaffMember) {
	for _, s := range in.Staff {
		for _, rc := range s.Constraints.RestDaysWithStaff {
			peer, ok := staffByID[rc.Peer]
			if !ok {
				continue
			}
			for _, bucket := range bucketOccurrencesByPeriod(in.Occurrences, rc.Period) {
				if len(bucket) == 0 {
					continue
				}
				start, end := temporal.PeriodBounds(rc.Period, bucket[0].Start)
				days := temporal.Days(start, end)

				total := m.NewConstraint(mip.GreaterThanOrEqual, float64(rc.MinRestDays))
				for _, d := range days {
					dayStr := d.Format(dayKeyLayout)
					key := string(s.ID) + "|" + string(peer.ID) + "|" + dayStr
					sv, ok := v.sharedRest[key]
					if !ok {
						sv = m.NewBool()
						v.sharedRest[key] = sv
					}
					total.NewTerm(1.0, sv)

					if wv, ok := v.work[dayKey{s.ID, dayStr}]; ok {
						c := m.NewConstraint(mip.LessThanOrEqual, 1.0)
						c.NewTerm(1.0, sv)
						c.NewTerm(1.0, wv)
					}
					if wv, ok := v.work[dayKey{peer.ID, dayStr}]; ok {
						c := m.NewConstraint(mip.LessThanOrEqual, 1.0)
						c.NewTerm(1.0, sv)
						c.NewTerm(1.0, wv)
					}
				}
			}
		}
	}
}
