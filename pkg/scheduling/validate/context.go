// Package validate implements the constraint validator: eight independent
// rule checks over a (staff, occurrence, world) context, each returning
// structured violations. It operates in two modes — check-assignment
// ("would adding this violate a rule?") and validate-existing ("does the
// current state already violate one?") — so the scheduler and any caller
// preview UI share identical semantics.
package validate

import (
	"time"

	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/temporal"
)

// Mode selects which of the two validation semantics a Context uses.
type Mode string

const (
	ModeCheckAssignment  Mode = "check-assignment"
	ModeValidateExisting Mode = "validate-existing"
)

const dayKeyLayout = "2006-01-02"

// Context carries everything a validator needs to evaluate one
// (staff, occurrence) pair against the rest of the known world.
type Context struct {
	TargetStaff      model.StaffMember
	TargetOccurrence model.ShiftOccurrence
	AllStaff         []model.StaffMember
	AllOccurrences   []model.ShiftOccurrence
	EvaluationDate   time.Time
	Mode             Mode
	Formatter        catalog.Formatter

	staffByID map[model.StaffID]model.StaffMember
}

// NewContext builds a validation Context and its lookup indexes. A nil
// formatter falls back to catalog.Default.
func NewContext(
	target model.StaffMember,
	occurrence model.ShiftOccurrence,
	allStaff []model.StaffMember,
	allOccurrences []model.ShiftOccurrence,
	evaluationDate time.Time,
	mode Mode,
	formatter catalog.Formatter,
) *Context {
	if formatter == nil {
		formatter = catalog.Default
	}
	c := &Context{
		TargetStaff:      target,
		TargetOccurrence: occurrence,
		AllStaff:         allStaff,
		AllOccurrences:   allOccurrences,
		EvaluationDate:   evaluationDate,
		Mode:             mode,
		Formatter:        formatter,
	}
	c.staffByID = make(map[model.StaffID]model.StaffMember, len(allStaff))
	for _, s := range allStaff {
		c.staffByID[s.ID] = s
	}
	return c
}

// Staff looks up a staff member by id among AllStaff.
func (c *Context) Staff(id model.StaffID) (model.StaffMember, bool) {
	s, ok := c.staffByID[id]
	return s, ok
}

// occurrencesInPeriod returns every occurrence in AllOccurrences whose
// start falls within the named period anchored on TargetOccurrence.Start.
func (c *Context) occurrencesInPeriod(period model.Period) []model.ShiftOccurrence {
	start, end := temporal.PeriodBounds(period, c.TargetOccurrence.Start)
	var out []model.ShiftOccurrence
	for _, o := range c.AllOccurrences {
		if !o.Start.Before(start) && !o.Start.After(end) {
			out = append(out, o)
		}
	}
	return out
}

// staffWorksOnDay reports whether id has any assignment on day d, among
// AllOccurrences only (no hypothetical assignment is considered here —
// callers that need the check-assignment adjustment apply it themselves).
func (c *Context) staffWorksOnDay(id model.StaffID, d time.Time) bool {
	for _, o := range c.AllOccurrences {
		if temporal.SameDay(o.Start, d) && o.HasStaff(id) {
			return true
		}
	}
	return false
}

func floatPtr(v float64) *float64 { return &v }

func toStaffSet(ids []model.StaffID) map[model.StaffID]bool {
	set := make(map[model.StaffID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
