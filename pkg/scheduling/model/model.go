// Package model defines the value types the scheduling core operates on.
//
// Every type here is a plain snapshot: the core holds no persistent state
// and mutates none of these structures in place. Callers own storage.
package model

import (
	"time"

	"github.com/google/uuid"
)

// TraitID identifies a skill label attachable to staff and referenced by
// shift requirements.
type TraitID string

// StaffID identifies a StaffMember.
type StaffID string

// OccurrenceID identifies a ShiftOccurrence.
type OccurrenceID string

// Trait is reference data: a skill label.
type Trait struct {
	ID   TraitID
	Name string
}

// Period is one of day/week/month/year anchored on a reference date.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// RestDaysWithStaff requires at least MinRestDays shared rest days with Peer
// within Period.
type RestDaysWithStaff struct {
	Peer        StaffID
	MinRestDays int
	Period      Period
}

// ConsecutiveRestDays requires at least one run of MinConsecutiveDays
// adjacent rest days within Period.
type ConsecutiveRestDays struct {
	MinConsecutiveDays int
	Period             Period
}

// StaffConstraints holds a staff member's workload caps and social rules.
// All fields are optional; the zero value of each int field means "not set"
// and callers must use the Effective* accessors to apply defaults — never
// rely on the bare zero value, since 0 is also a legal explicit cap.
type StaffConstraints struct {
	MaxShiftsPerDay      *int
	MaxShiftsPerWeek     *int
	MaxShiftsPerMonth    *int
	MaxShiftsPerYear     *int // nil => unbounded, see SPEC_FULL.md open-question decision
	IncompatibleWith     []StaffID
	RestDaysWithStaff    []RestDaysWithStaff
	ConsecutiveRestDays  []ConsecutiveRestDays
}

const (
	DefaultMaxShiftsPerDay   = 1
	DefaultMaxShiftsPerWeek  = 5
	DefaultMaxShiftsPerMonth = 21
)

// EffectiveMaxShiftsPerDay returns the configured cap or the default.
func (c StaffConstraints) EffectiveMaxShiftsPerDay() int {
	if c.MaxShiftsPerDay != nil {
		return *c.MaxShiftsPerDay
	}
	return DefaultMaxShiftsPerDay
}

// EffectiveMaxShiftsPerWeek returns the configured cap or the default.
func (c StaffConstraints) EffectiveMaxShiftsPerWeek() int {
	if c.MaxShiftsPerWeek != nil {
		return *c.MaxShiftsPerWeek
	}
	return DefaultMaxShiftsPerWeek
}

// EffectiveMaxShiftsPerMonth returns the configured cap or the default.
func (c StaffConstraints) EffectiveMaxShiftsPerMonth() int {
	if c.MaxShiftsPerMonth != nil {
		return *c.MaxShiftsPerMonth
	}
	return DefaultMaxShiftsPerMonth
}

// EffectiveMaxShiftsPerYear returns the configured cap, or false if the
// staff member has no yearly cap (unbounded).
func (c StaffConstraints) EffectiveMaxShiftsPerYear() (limit int, bounded bool) {
	if c.MaxShiftsPerYear != nil {
		return *c.MaxShiftsPerYear, true
	}
	return 0, false
}

// RecurrenceType is one of daily/weekly/monthly.
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// Recurrence describes how a BlockedTime repeats.
type Recurrence struct {
	Type     RecurrenceType
	Interval int // >= 1
	Weekdays map[time.Weekday]bool // only meaningful for RecurrenceWeekly
	EndDate  *time.Time
}

// BlockedTime is an interval, possibly recurring, during which a staff
// member is unavailable.
type BlockedTime struct {
	ID         string
	Start      time.Time
	End        time.Time
	IsFullDay  bool
	Recurrence *Recurrence
}

// StaffMember is a read-only snapshot of one staff member.
type StaffMember struct {
	ID           StaffID
	Name         string
	TraitIDs     map[TraitID]bool
	Constraints  StaffConstraints
	BlockedTimes []BlockedTime
}

// HasTrait reports whether the staff member carries the given trait.
func (s StaffMember) HasTrait(t TraitID) bool {
	return s.TraitIDs[t]
}

// RequiredTrait is (trait, min): at least min assignees must carry trait.
type RequiredTrait struct {
	TraitID  TraitID
	MinCount int
}

// ShiftRequirements describes the staffing needs of one occurrence.
type ShiftRequirements struct {
	StaffCount      int
	RequiredTraits  []RequiredTrait
	ExcludedTraits  map[TraitID]bool
	PreferredTraits map[TraitID]bool
}

// ShiftOccurrence is a single scheduled instance of a shift with a fixed
// start/end. AssignedStaff is mutated only via scheduler output
// application by the caller — the core itself treats it as read-only input
// describing assignments that already exist outside the scheduled week.
type ShiftOccurrence struct {
	ID            OccurrenceID
	Name          string
	Start         time.Time
	End           time.Time
	Requirements  ShiftRequirements
	AssignedStaff []StaffID
}

// HasStaff reports whether id is already assigned to this occurrence.
func (o ShiftOccurrence) HasStaff(id StaffID) bool {
	for _, s := range o.AssignedStaff {
		if s == id {
			return true
		}
	}
	return false
}

// Severity orders ConstraintViolation records: error < warning < info.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// severityRank gives the sort order for Severity (lower sorts first).
func severityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// SeverityLess reports whether a sorts before b by severity.
func SeverityLess(a, b Severity) bool {
	return severityRank(a) < severityRank(b)
}

// ConstraintType enumerates the eight validator kinds.
type ConstraintType string

const (
	ConstraintBlockedTime         ConstraintType = "blocked_time"
	ConstraintIncompatibleStaff   ConstraintType = "incompatible_staff"
	ConstraintDailyShiftLimit     ConstraintType = "daily_shift_limit"
	ConstraintWeeklyShiftLimit    ConstraintType = "weekly_shift_limit"
	ConstraintMonthlyShiftLimit   ConstraintType = "monthly_shift_limit"
	ConstraintYearlyShiftLimit    ConstraintType = "yearly_shift_limit"
	ConstraintRestDaysWithStaff   ConstraintType = "rest_days_with_staff"
	ConstraintConsecutiveRestDays ConstraintType = "consecutive_rest_days"
)

// ViolationDetails carries the structured parameters a formatter hook needs
// to render a localized message, so the core stays language-agnostic.
type ViolationDetails struct {
	ConstraintName  string
	CurrentValue    *float64
	LimitValue      *float64
	Period          string
	RelatedStaffID  StaffID
	RelatedStaffName string
}

// ConstraintViolation is a single reported rule breach.
type ConstraintViolation struct {
	ID        string
	StaffID   StaffID
	StaffName string
	Type      ConstraintType
	Severity  Severity
	Message   string
	Details   ViolationDetails
}

// AssignmentMap maps an occurrence id to its ordered, assigned staff ids.
type AssignmentMap map[OccurrenceID][]StaffID

// NewID returns a fresh random identifier string, used for violation ids
// and anywhere else the core needs an opaque unique token.
func NewID() string {
	return uuid.NewString()
}
