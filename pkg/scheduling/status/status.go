// Package status implements the staffing-status evaluator: it classifies
// an occurrence's current assignment into one of five states by combining
// required counts, trait coverage, and the validate package.
package status

import (
	"time"

	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/validate"
)

// State is one of the five staffing classifications.
type State string

const (
	StateNotStaffed           State = "not-staffed"
	StateUnderstaffedByTrait  State = "understaffed-by-trait"
	StateConstraintViolation  State = "constraint-violation"
	StateUnderstaffed         State = "understaffed"
	StateOverstaffed          State = "overstaffed"
	StateProperlyStaffed      State = "properly-staffed"
)

// Color is the UI color an occurrence's state maps to.
type Color string

const (
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
)

func (s State) Color() Color {
	switch s {
	case StateProperlyStaffed:
		return ColorGreen
	case StateUnderstaffed, StateOverstaffed:
		return ColorOrange
	default: // not-staffed, understaffed-by-trait, constraint-violation
		return ColorRed
	}
}

// Result is the outcome of evaluating one occurrence's staffing status.
type Result struct {
	Status               State
	Color                Color
	Message              string
	MissingTraits        []model.TraitID
	ConstraintViolations []model.ConstraintViolation
}

// Evaluate classifies occurrence given its currently assigned staff.
// Precedence: not-staffed > understaffed-by-trait > constraint-violation >
// understaffed > overstaffed > properly-staffed.
func Evaluate(
	occurrence model.ShiftOccurrence,
	assigned []model.StaffID,
	allTraits []model.Trait,
	allOccurrences []model.ShiftOccurrence,
	allStaff []model.StaffMember,
	evaluationDate time.Time,
	formatter catalog.Formatter,
) Result {
	if formatter == nil {
		formatter = catalog.Default
	}
	traitNames := make(map[model.TraitID]string, len(allTraits))
	for _, t := range allTraits {
		traitNames[t.ID] = t.Name
	}

	if len(assigned) == 0 {
		return Result{
			Status:  StateNotStaffed,
			Color:   StateNotStaffed.Color(),
			Message: formatter(catalog.KeyStatusNotStaffed, nil),
		}
	}

	staffByID := make(map[model.StaffID]model.StaffMember, len(allStaff))
	for _, s := range allStaff {
		staffByID[s.ID] = s
	}

	if missing, traitID, current, required := traitShortfall(occurrence, assigned, staffByID); len(missing) > 0 {
		name, ok := traitNames[traitID]
		if !ok {
			name = string(traitID)
		}
		return Result{
			Status: StateUnderstaffedByTrait,
			Color:  StateUnderstaffedByTrait.Color(),
			Message: formatter(catalog.KeyStatusUnderstaffedByTrait, map[string]any{
				"traitName": name,
				"current":   current,
				"required":  required,
			}),
			MissingTraits: missing,
		}
	}

	if violations := constraintViolations(occurrence, assigned, allStaff, allOccurrences, evaluationDate, formatter); len(violations) > 0 {
		return Result{
			Status:               StateConstraintViolation,
			Color:                StateConstraintViolation.Color(),
			Message:              formatter(catalog.KeyStatusConstraintViolation, nil),
			ConstraintViolations: violations,
		}
	}

	required := occurrence.Requirements.StaffCount
	current := len(assigned)

	if current < required {
		return Result{
			Status: StateUnderstaffed,
			Color:  StateUnderstaffed.Color(),
			Message: formatter(catalog.KeyStatusUnderstaffed, map[string]any{
				"current": current, "required": required,
			}),
		}
	}
	if current > required {
		return Result{
			Status: StateOverstaffed,
			Color:  StateOverstaffed.Color(),
			Message: formatter(catalog.KeyStatusOverstaffed, map[string]any{
				"current": current, "required": required,
			}),
		}
	}

	return Result{
		Status:  StateProperlyStaffed,
		Color:   StateProperlyStaffed.Color(),
		Message: formatter(catalog.KeyStatusProperlyStaffed, nil),
	}
}

// traitShortfall reports the first requiredTrait entry whose assigned
// coverage falls short of its minimum, if any.
func traitShortfall(
	occurrence model.ShiftOccurrence,
	assigned []model.StaffID,
	staffByID map[model.StaffID]model.StaffMember,
) (missing []model.TraitID, shortTrait model.TraitID, current, required int) {
	for _, rt := range occurrence.Requirements.RequiredTraits {
		count := 0
		for _, id := range assigned {
			if s, ok := staffByID[id]; ok && s.HasTrait(rt.TraitID) {
				count++
			}
		}
		if count < rt.MinCount {
			missing = append(missing, rt.TraitID)
			if shortTrait == "" {
				shortTrait, current, required = rt.TraitID, count, rt.MinCount
			}
		}
	}
	return missing, shortTrait, current, required
}

// constraintViolations runs the validate package in validate-existing mode
// for every currently assigned staff member and returns every error- or
// warning-severity violation found.
func constraintViolations(
	occurrence model.ShiftOccurrence,
	assigned []model.StaffID,
	allStaff []model.StaffMember,
	allOccurrences []model.ShiftOccurrence,
	evaluationDate time.Time,
	formatter catalog.Formatter,
) []model.ConstraintViolation {
	staffByID := make(map[model.StaffID]model.StaffMember, len(allStaff))
	for _, s := range allStaff {
		staffByID[s.ID] = s
	}

	var all []model.ConstraintViolation
	for _, id := range assigned {
		staff, ok := staffByID[id]
		if !ok {
			continue
		}
		ctx := validate.NewContext(staff, occurrence, allStaff, allOccurrences, evaluationDate, validate.ModeValidateExisting, formatter)
		violations := validate.Validate(ctx)
		for _, v := range violations {
			if v.Severity == model.SeverityError || v.Severity == model.SeverityWarning {
				all = append(all, v)
			}
		}
	}
	return all
}
