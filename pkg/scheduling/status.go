package scheduling

import (
	"time"

	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/status"
)

// StaffingStatus is external operation #3 (spec.md §6): it classifies an
// occurrence's current assignment into one of five staffing states.
func StaffingStatus(
	occurrence model.ShiftOccurrence,
	assigned []model.StaffID,
	allTraits []model.Trait,
	allShifts []model.ShiftOccurrence,
	allStaff []model.StaffMember,
	evaluationDate time.Time,
	formatter catalog.Formatter,
) status.Result {
	return status.Evaluate(occurrence, assigned, allTraits, allShifts, allStaff, evaluationDate, formatter)
}
