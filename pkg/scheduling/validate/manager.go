package validate

import (
	"sort"

	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

// Validator is the shared shape of the eight constraint kinds: a type tag
// plus a pure evaluation over a Context.
type Validator interface {
	Kind() model.ConstraintType
	Validate(ctx *Context) []model.ConstraintViolation
}

// Manager holds the registered validator list. It is built once at
// construction and never mutated afterward, so — unlike the teacher's
// constraint.Manager — it needs no mutex: there is no concurrent
// registration to guard against.
type Manager struct {
	validators []Validator
}

// NewManager registers all eight built-in validator kinds.
func NewManager() *Manager {
	return &Manager{
		validators: []Validator{
			blockedTimeValidator{},
			incompatibleStaffValidator{},
			newDailyShiftLimitValidator(),
			newWeeklyShiftLimitValidator(),
			newMonthlyShiftLimitValidator(),
			newYearlyShiftLimitValidator(),
			restDaysWithStaffValidator{},
			consecutiveRestDaysValidator{},
		},
	}
}

// Validate runs every registered validator and returns the combined
// violation list, sorted by severity (error < warning < info). A failure
// in one validator never suppresses the others.
func (m *Manager) Validate(ctx *Context) []model.ConstraintViolation {
	var all []model.ConstraintViolation
	for _, v := range m.validators {
		all = append(all, v.Validate(ctx)...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return model.SeverityLess(all[i].Severity, all[j].Severity)
	})
	return all
}

// HasErrorSeverity reports whether violations contains any error-severity
// entry.
func HasErrorSeverity(violations []model.ConstraintViolation) bool {
	for _, v := range violations {
		if v.Severity == model.SeverityError {
			return true
		}
	}
	return false
}

var defaultManager = NewManager()

// Validate runs the default, package-level manager. This is the `validate`
// operation from the external interface.
func Validate(ctx *Context) []model.ConstraintViolation {
	return defaultManager.Validate(ctx)
}
